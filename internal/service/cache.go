package service

import (
	"context"
	"errors"
	"time"

	"influencer-platform/backend/internal/models"
	"influencer-platform/backend/pkg/cache"
	"influencer-platform/backend/pkg/logger"
)

// InfluencerCache is a read-through cache of influencer rows keyed by id,
// with a username index pointing at ids. Cache failures never fail a call.
type InfluencerCache struct {
	store cache.Store
	ttl   time.Duration
	log   *logger.Logger
}

func NewInfluencerCache(store cache.Store, ttl time.Duration, log *logger.Logger) *InfluencerCache {
	if store == nil {
		store = cache.Noop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &InfluencerCache{store: store, ttl: ttl, log: log.With("component", "influencer_cache")}
}

func idKey(id string) string             { return "influencer:id:" + id }
func usernameKey(username string) string { return "influencer:username:" + username }

func (c *InfluencerCache) ByID(ctx context.Context, id string) (*models.Influencer, bool) {
	var inf models.Influencer
	found, err := cache.GetJSON(ctx, c.store, idKey(id), &inf)
	if err != nil {
		c.log.Warn("cache read failed", "key", idKey(id), "error", err.Error())
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &inf, true
}

func (c *InfluencerCache) ByUsername(ctx context.Context, username string) (*models.Influencer, bool) {
	raw, err := c.store.Get(ctx, usernameKey(username))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.log.Warn("cache read failed", "key", usernameKey(username), "error", err.Error())
		}
		return nil, false
	}

	inf, ok := c.ByID(ctx, string(raw))
	if !ok || inf.Username != username {
		// the index points at a row that changed username or is gone
		c.delete(ctx, usernameKey(username))
		return nil, false
	}
	return inf, true
}

func (c *InfluencerCache) Put(ctx context.Context, inf *models.Influencer) {
	if inf == nil {
		return
	}
	if err := cache.SetJSON(ctx, c.store, idKey(inf.ID), inf, c.ttl); err != nil {
		c.log.Warn("cache write failed", "key", idKey(inf.ID), "error", err.Error())
		return
	}
	if err := c.store.Set(ctx, usernameKey(inf.Username), []byte(inf.ID), c.ttl); err != nil {
		c.log.Warn("cache write failed", "key", usernameKey(inf.Username), "error", err.Error())
	}
}

// Invalidate drops the cached row for id. Username index entries are left
// to be rejected on read.
func (c *InfluencerCache) Invalidate(ctx context.Context, id string) {
	c.delete(ctx, idKey(id))
}

func (c *InfluencerCache) delete(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.log.Warn("cache delete failed", "keys", keys, "error", err.Error())
	}
}
