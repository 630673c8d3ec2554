package mediasearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	dbRedis "github.com/kailas-cloud/mediasearch/internal/db/redis"
	"github.com/kailas-cloud/mediasearch/internal/domain/match"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/query"
	domset "github.com/kailas-cloud/mediasearch/internal/domain/settings"
	datastorerepo "github.com/kailas-cloud/mediasearch/internal/repository/datastore"
	documentrepo "github.com/kailas-cloud/mediasearch/internal/repository/document"
	"github.com/kailas-cloud/mediasearch/internal/repository/fallback"
	"github.com/kailas-cloud/mediasearch/internal/repository/keyspace"
	searchrepo "github.com/kailas-cloud/mediasearch/internal/repository/search"
	settingsrepo "github.com/kailas-cloud/mediasearch/internal/repository/settings"
	openaiExp "github.com/kailas-cloud/mediasearch/internal/transport/openai"
	datastoreuc "github.com/kailas-cloud/mediasearch/internal/usecase/datastore"
	healthuc "github.com/kailas-cloud/mediasearch/internal/usecase/health"
	"github.com/kailas-cloud/mediasearch/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/mediasearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultMaxBatchSize     = 100
)

// Internal interfaces, replaced in tests.
type searchUseCase interface {
	Search(ctx context.Context, tenant string, q query.Query) searchuc.Response
}

type indexUseCase interface {
	UpsertBatch(ctx context.Context, tenant string, items []indexer.MediaItem) (int, []indexer.ItemError)
	Delete(ctx context.Context, tenant, docID string) bool
}

type storeUseCase interface {
	Delete(ctx context.Context, tenant string) bool
}

// Client is the mediasearch SDK entry point.
type Client struct {
	redis        *dbRedis.Store
	fallbackDB   *gorm.DB
	searchSvc    searchUseCase
	indexSvc     indexUseCase
	storeSvc     storeUseCase
	healthSvc    healthUseCase
	maxBatchSize int
	obs          *observer
}

// New creates a Client and connects to the configured backends.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		fuzzyThreshold: match.DefaultThreshold,
		batchSize:      indexer.DefaultBatchSize,
		batchDelay:     indexer.DefaultBatchDelay,
		maxBatchSize:   defaultMaxBatchSize,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 && cfg.fallbackDSN == "" {
		return nil, errors.New("mediasearch: no backend configured (use WithRedis or WithFallback)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{maxBatchSize: cfg.maxBatchSize, obs: obs}
	if len(cfg.addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("mediasearch: create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("mediasearch: redis not ready: %w", err)
		}
		c.redis = store
	}
	if cfg.fallbackDSN != "" {
		gdb, err := fallback.Open(fallback.Config{
			Driver:       cfg.fallbackDriver,
			DSN:          cfg.fallbackDSN,
			AutoMigrate:  true,
			MaxOpenConns: fallbackMaxConns(cfg.fallbackDriver),
			Logger:       cfg.zapLogger,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("mediasearch: open fallback store: %w", err)
		}
		c.fallbackDB = gdb
	}

	if err := c.wire(cfg); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// sqlite serializes writers; one connection also keeps an in-memory database shared.
func fallbackMaxConns(driver string) int {
	if driver == "postgres" {
		return 0
	}
	return 1
}

func (c *Client) wire(cfg *clientConfig) error {
	l := cfg.zapLogger
	if l == nil {
		l = zap.NewNop()
	}

	var stores indexer.StoreResolver = datastoreuc.Unavailable{}
	var deleter storeUseCase = datastoreuc.Unavailable{}
	var settings searchuc.SettingsReader = settingsrepo.Static{
		Preference: domset.Preference{Backend: domset.BackendFallback},
	}
	var docs indexer.DocumentStore
	var primary, fb searchuc.Backend
	health := healthuc.New()

	if c.redis != nil {
		keys := keyspace.New(cfg.keyPrefix)
		mgr := datastoreuc.NewManager(datastorerepo.New(c.redis, keys), l)
		stores, deleter = mgr, mgr
		docs = documentrepo.New(c.redis, keys)
		primary = searchuc.NewPrimaryBackend(mgr, searchrepo.New(c.redis, keys), l)
		settings = settingsrepo.New(c.redis, keys, domset.Preference{
			Backend:   domset.BackendPrimary,
			AutoIndex: cfg.autoIndex,
		})
		health.WithBackend("primary", c.redis)
	}

	idx := indexer.New(stores, docs, l).WithBatchSize(cfg.batchSize).WithBatchDelay(cfg.batchDelay)
	if c.fallbackDB != nil {
		repo := fallback.New(c.fallbackDB)
		fb = searchuc.NewFallbackBackend(repo, match.New(cfg.fuzzyThreshold), l)
		idx = idx.WithMirror(repo)
		health.WithBackend("fallback", repo)
	}

	exec := searchuc.NewMultiQueryExecutor(l)
	if cfg.maxParallel > 0 {
		exec = exec.WithMaxParallel(cfg.maxParallel)
	}
	orch := searchuc.NewOrchestrator(settings, primary, fb, exec, l)
	if cfg.expansionKey != "" {
		exp, err := openaiExp.NewExpander(&openaiExp.Config{
			APIKey:  cfg.expansionKey,
			BaseURL: cfg.expansionURL,
			Model:   cfg.expansionModel,
			Logger:  l,
		})
		if err != nil {
			return fmt.Errorf("mediasearch: create expander: %w", err)
		}
		orch = orch.WithExpander(exp)
		health.WithDependency("expansion", exp)
	}

	c.searchSvc = orch
	c.indexSvc = idx
	c.storeSvc = deleter
	c.healthSvc = health
	return nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.redis != nil {
		c.redis.Close()
	}
	if c.fallbackDB != nil {
		if sqlDB, err := c.fallbackDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
