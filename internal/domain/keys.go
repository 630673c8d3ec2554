package domain

// DefaultKeyPrefix namespaces every Redis key owned by the service.
const DefaultKeyPrefix = "mediasearch:"
