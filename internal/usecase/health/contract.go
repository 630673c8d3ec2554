package health

import "context"

// Pinger checks one dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}
