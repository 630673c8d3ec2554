package mediasearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs     []string
	password  string
	keyPrefix string
	autoIndex bool

	fallbackDriver string // "sqlite" or "postgres"
	fallbackDSN    string
	fuzzyThreshold float64

	expansionKey   string
	expansionURL   string
	expansionModel string

	batchSize    int
	batchDelay   time.Duration
	maxParallel  int
	maxBatchSize int

	logger     *slog.Logger
	zapLogger  *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis enables the primary index on a Redis instance with the search module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces every Redis key. Default: "mediasearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithAutoIndex lets searches create a tenant's primary store on first use.
func WithAutoIndex() Option {
	return optionFunc(func(c *clientConfig) {
		c.autoIndex = true
	})
}

// WithFallback enables the SQL fallback store. driver is "sqlite" or "postgres".
func WithFallback(driver, dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.fallbackDriver = driver
		c.fallbackDSN = dsn
	})
}

// WithFuzzyThreshold sets the fallback match threshold in (0, 1]. Default: 0.9.
func WithFuzzyThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.fuzzyThreshold = t
	})
}

// WithExpansion enables LLM query expansion against an OpenAI-compatible API.
// Empty baseURL and model select the provider defaults.
func WithExpansion(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.expansionKey = apiKey
		c.expansionURL = baseURL
		c.expansionModel = model
	})
}

// WithIndexBatching sets the indexing sub-batch size and the pause between
// sub-batches. Defaults: 10 items, 100ms.
func WithIndexBatching(size int, delay time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = size
		c.batchDelay = delay
	})
}

// WithMaxParallel bounds concurrent backend calls per multi-query search. Default: 5.
func WithMaxParallel(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxParallel = n
	})
}

// WithMaxBatchSize sets the maximum number of items per UpsertBatch call.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithZapLogger routes the service's internal logs to l.
func WithZapLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.zapLogger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
