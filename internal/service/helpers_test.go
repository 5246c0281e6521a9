package service

import (
	"context"
	"testing"
	"time"

	"influencer-platform/backend/internal/models"
	"influencer-platform/backend/internal/repository"
	"influencer-platform/backend/internal/storage"
	"influencer-platform/backend/internal/testutil"
	"influencer-platform/backend/pkg/cache"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	store       *storage.MemoryStore
	cacheStore  *cache.Memory
	influencers *InfluencerService
	assets      *AssetService
	affiliates  *AffiliateService
	chats       *ChatService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	store := storage.NewMemoryStore()
	mem := cache.NewMemory(0, 0)
	t.Cleanup(mem.Close)

	infRepo := repository.NewGormInfluencerRepository(db)
	infCache := NewInfluencerCache(mem, time.Minute, nil)

	return &fixture{
		db:          db,
		store:       store,
		cacheStore:  mem,
		influencers: NewInfluencerService(infRepo, infCache, nil, nil),
		assets:      NewAssetService(infRepo, store, "", infCache, nil, nil),
		affiliates:  NewAffiliateService(infRepo, repository.NewGormAffiliateLinkRepository(db), infCache, nil, nil),
		chats:       NewChatService(repository.NewGormChatInteractionRepository(db), nil, nil),
	}
}

func createRequest(id, username string) *models.CreateInfluencerRequest {
	return &models.CreateInfluencerRequest{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$hash",
	}
}

func (f *fixture) mustCreate(t *testing.T, id, username string) *models.Influencer {
	t.Helper()
	inf, err := f.influencers.Create(context.Background(), createRequest(id, username))
	require.NoError(t, err)
	return inf
}
