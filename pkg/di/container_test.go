package di

import (
	"context"
	"testing"

	"influencer-platform/backend/internal/storage"
	"influencer-platform/backend/internal/testutil"
	"influencer-platform/backend/pkg/cache"
	"influencer-platform/backend/pkg/config"
	apperrors "influencer-platform/backend/pkg/errors"
	"influencer-platform/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFailsFastOnMissingSchema(t *testing.T) {
	db := testutil.NewEmptyDB(t)

	c, err := New(context.Background(), Deps{DB: db, Store: storage.NewMemoryStore(), Logger: logger.Nop()}, nil)

	assert.Nil(t, c)
	require.ErrorIs(t, err, apperrors.ErrSchemaMissing)
	assert.Equal(t, map[string]any{"tables": []string{"influencers", "affiliate_links", "chat_interactions"}},
		apperrors.FromError(err).Details)
}

func TestNewRequiresBackends(t *testing.T) {
	_, err := New(context.Background(), Deps{}, nil)
	assert.Error(t, err)

	_, err = New(context.Background(), Deps{DB: testutil.NewDB(t)}, nil)
	assert.Error(t, err)
}

func TestNewWiresServices(t *testing.T) {
	db := testutil.NewDB(t)
	mem := cache.NewMemory(0, 0)
	t.Cleanup(mem.Close)

	c, err := New(context.Background(), Deps{
		DB:     db,
		Store:  storage.NewMemoryStore(),
		Cache:  mem,
		Logger: logger.Nop(),
	}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	report := c.Health.RunChecks(ctx)
	assert.True(t, report.Healthy)
	assert.Equal(t, []string{"cache", "database", "schema", "storage"}, c.Health.Names())

	_, err = c.AffiliateService.AddLink(ctx, "missing", "amazon", "amz-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, c.Close(ctx))
}

func TestNoopCacheSkipsCacheCheck(t *testing.T) {
	c, err := New(context.Background(), Deps{DB: testutil.NewDB(t), Store: storage.NewMemoryStore(), Logger: logger.Nop()}, nil)
	require.NoError(t, err)

	assert.NotContains(t, c.Health.Names(), "cache")
}

func TestStorageConfigBreakerThreshold(t *testing.T) {
	cfg := config.Load()
	cfg.Storage.URL = "http://storage.local"

	cfg.Storage.BreakerErrors = 7
	assert.Equal(t, uint(7), storageConfig(cfg).Breaker.FailureThreshold)

	cfg.Storage.BreakerErrors = -3
	assert.Equal(t, uint(0), storageConfig(cfg).Breaker.FailureThreshold)
}

func TestNewCacheSelection(t *testing.T) {
	cfg := config.Load()
	cfg.Cache.Enabled = true
	cfg.Cache.RedisURL = ""

	cfg.Server.Env = "production"
	store, closeFn, err := newCache(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, cache.Noop{}, store)
	assert.NoError(t, closeFn(context.Background()))

	cfg.Server.Env = "development"
	store, closeFn, err = newCache(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, store)
	assert.NoError(t, closeFn(context.Background()))

	cfg.Cache.Enabled = false
	store, _, err = newCache(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, cache.Noop{}, store)
}
