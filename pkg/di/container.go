package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"influencer-platform/backend/internal/database"
	"influencer-platform/backend/internal/repository"
	"influencer-platform/backend/internal/service"
	"influencer-platform/backend/internal/storage"
	"influencer-platform/backend/pkg/cache"
	"influencer-platform/backend/pkg/config"
	"influencer-platform/backend/pkg/health"
	"influencer-platform/backend/pkg/logger"
	"influencer-platform/backend/pkg/observability"
	"influencer-platform/backend/pkg/resilience"
	"influencer-platform/backend/pkg/secrets"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB            *gorm.DB
	Logger        *logger.Logger
	Store         storage.BlobStore
	Cache         cache.Store
	Observability *observability.Provider
	Health        *health.Checker

	InfluencerService *service.InfluencerService
	AssetService      *service.AssetService
	AffiliateService  *service.AffiliateService
	ChatService       *service.ChatService

	closers []func(context.Context) error
}

// Config holds the configuration for the container
type Config struct {
	Bucket        string
	CacheTTL      time.Duration
	HealthPeriod  time.Duration
	HealthTimeout time.Duration
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Bucket:        service.DefaultAssetBucket,
		CacheTTL:      5 * time.Minute,
		HealthPeriod:  30 * time.Second,
		HealthTimeout: 5 * time.Second,
	}
}

// Deps are the backends a container is assembled from. Nil Cache and
// Observability fall back to no-op implementations.
type Deps struct {
	DB            *gorm.DB
	Store         storage.BlobStore
	Cache         cache.Store
	Observability *observability.Provider
	Logger        *logger.Logger
}

// New creates a new dependency injection container. It fails with
// SCHEMA_MISSING when a required table is absent, before any service exists.
func New(ctx context.Context, deps Deps, config *Config) (*Container, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if deps.DB == nil {
		return nil, errors.New("database is required")
	}
	if deps.Store == nil {
		return nil, errors.New("blob store is required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.GetGlobal()
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Observability == nil {
		deps.Observability = observability.Nop()
	}

	if err := database.EnsureSchema(ctx, deps.DB); err != nil {
		deps.Logger.LogError(err, "database schema check failed")
		return nil, err
	}

	log := deps.Logger
	obs := deps.Observability

	influencers := repository.NewGormInfluencerRepository(deps.DB)
	links := repository.NewGormAffiliateLinkRepository(deps.DB)
	chats := repository.NewGormChatInteractionRepository(deps.DB)
	influencerCache := service.NewInfluencerCache(deps.Cache, config.CacheTTL, log)

	checker := health.NewChecker(log, config.HealthPeriod, config.HealthTimeout)
	checker.RegisterDatabaseCheck(func(ctx context.Context) error { return database.Ping(ctx, deps.DB) })
	checker.RegisterSchemaCheck(func(ctx context.Context) error { return database.EnsureSchema(ctx, deps.DB) })
	checker.RegisterStorageCheck(deps.Store.Ping)
	if _, noop := deps.Cache.(cache.Noop); !noop {
		checker.RegisterCacheCheck(deps.Cache.Ping)
	}

	return &Container{
		DB:                deps.DB,
		Logger:            log,
		Store:             deps.Store,
		Cache:             deps.Cache,
		Observability:     obs,
		Health:            checker,
		InfluencerService: service.NewInfluencerService(influencers, influencerCache, log, obs.Recorder("influencer")),
		AssetService:      service.NewAssetService(influencers, deps.Store, config.Bucket, influencerCache, log, obs.Recorder("asset")),
		AffiliateService:  service.NewAffiliateService(influencers, links, influencerCache, log, obs.Recorder("affiliate")),
		ChatService:       service.NewChatService(chats, log, obs.Recorder("chat")),
	}, nil
}

// Build wires the container from application configuration: secrets, the
// Postgres pool, object storage, the cache and telemetry. Close releases
// everything Build opened.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	if log == nil {
		log = logger.GetGlobal()
	}

	var closers []func(context.Context) error
	fail := func(err error) (*Container, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i](ctx)
		}
		return nil, err
	}

	if _, err := secrets.Init(secrets.VaultConfig{
		Enabled: cfg.Vault.Enabled,
		Address: cfg.Vault.Address,
		Token:   cfg.Vault.Token,
		Mount:   cfg.Vault.Mount,
		Path:    cfg.Vault.Path,
	}, log); err != nil {
		return nil, fmt.Errorf("failed to initialize secrets: %w", err)
	}
	resolved := *cfg
	resolved.Database.Password = secrets.GetSecretWithDefault(ctx, "db-password", cfg.Database.Password)
	resolved.Storage.ServiceRoleKey = secrets.GetSecretWithDefault(ctx, "supabase-service-role-key", cfg.Storage.ServiceRoleKey)

	obs, err := observability.Setup(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		Version:        cfg.Server.Version,
		TracingEnabled: cfg.Observability.TracingEnabled,
		MetricsEnabled: cfg.Observability.MetricsEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up observability: %w", err)
	}
	closers = append(closers, obs.Shutdown)

	db, err := config.NewDB(ctx, &resolved, log)
	if err != nil {
		return fail(fmt.Errorf("failed to connect to database: %w", err))
	}
	closers = append(closers, func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	store, err := newBlobStore(&resolved, log)
	if err != nil {
		return fail(err)
	}

	cacheStore, closeCache, err := newCache(cfg, log)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeCache)

	c, err := New(ctx, Deps{
		DB:            db,
		Store:         store,
		Cache:         cacheStore,
		Observability: obs,
		Logger:        log,
	}, &Config{
		Bucket:        cfg.Storage.Bucket,
		CacheTTL:      cfg.Cache.TTL,
		HealthPeriod:  30 * time.Second,
		HealthTimeout: cfg.Database.Timeout,
	})
	if err != nil {
		return fail(err)
	}
	c.closers = closers
	return c, nil
}

func newBlobStore(cfg *config.Config, log *logger.Logger) (storage.BlobStore, error) {
	if cfg.Storage.URL == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("SUPABASE_URL is required outside development")
		}
		log.Warn("SUPABASE_URL not set, keeping assets in memory")
		return storage.NewMemoryStore(), nil
	}

	store, err := storage.NewSupabaseStore(storageConfig(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return store, nil
}

func storageConfig(cfg *config.Config) storage.SupabaseConfig {
	return storage.SupabaseConfig{
		BaseURL:    cfg.Storage.URL,
		APIKey:     cfg.StorageKey(),
		Timeout:    cfg.Storage.Timeout,
		MaxRetries: cfg.Storage.MaxRetries,
		RateLimit:  cfg.Storage.RateLimit,
		RateBurst:  cfg.Storage.RateBurst,
		Breaker: resilience.Config{
			Name: "storage",
			// negative values from the environment must not wrap around
			FailureThreshold: uint(max(cfg.Storage.BreakerErrors, 0)),
			SuccessThreshold: 1,
			OpenTimeout:      cfg.Storage.BreakerTimeout,
		},
	}
}

// newCache picks the lookup cache. The process-local cache is used only in
// development; shared deployments cache through Redis or not at all.
func newCache(cfg *config.Config, log *logger.Logger) (cache.Store, func(context.Context) error, error) {
	switch {
	case !cfg.Cache.Enabled:
		return cache.Noop{}, func(context.Context) error { return nil }, nil
	case cfg.Cache.RedisURL != "":
		r, err := cache.NewRedis(cfg.Cache.RedisURL, "influencer")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		log.Info("using redis cache")
		return r, func(context.Context) error { return r.Close() }, nil
	case !cfg.IsDevelopment():
		log.Warn("REDIS_URL not set, influencer lookups are not cached")
		return cache.Noop{}, func(context.Context) error { return nil }, nil
	default:
		m := cache.NewMemory(10000, cfg.Cache.PurgeWindow)
		return m, func(context.Context) error { m.Close(); return nil }, nil
	}
}

// Close releases the resources Build opened, in reverse order.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i](ctx))
	}
	c.closers = nil
	return errors.Join(errs...)
}
