package service

import (
	"context"

	"influencer-platform/backend/internal/models"
	"influencer-platform/backend/internal/repository"
	"influencer-platform/backend/pkg/logger"
	"influencer-platform/backend/pkg/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AffiliateService manages affiliate links and the default affiliate id.
type AffiliateService struct {
	influencers repository.InfluencerRepository
	links       repository.AffiliateLinkRepository
	cache       *InfluencerCache
	instrumentation
	newID func() string
}

func NewAffiliateService(influencers repository.InfluencerRepository, links repository.AffiliateLinkRepository, cache *InfluencerCache, log *logger.Logger, rec *observability.Recorder) *AffiliateService {
	if cache == nil {
		cache = NewInfluencerCache(nil, 0, log)
	}
	return &AffiliateService{
		influencers:     influencers,
		links:           links,
		cache:           cache,
		instrumentation: newInstrumentation("affiliate", log, rec),
		newID:           uuid.NewString,
	}
}

// AddLink stores a link and, in the same transaction, makes its affiliate id
// the influencer's default when none is set yet. The first link to commit
// wins; later links never replace the default.
func (s *AffiliateService) AddLink(ctx context.Context, influencerID, platform, affiliateID string) (_ *models.AffiliateLinkResult, err error) {
	ctx, finish := s.start(ctx, "add_link", "influencer_id", influencerID, "platform", platform)
	defer finish(&err)

	req := models.AddAffiliateLinkRequest{InfluencerID: influencerID, Platform: platform, AffiliateID: affiliateID}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	link := &models.AffiliateLink{
		ID:           s.newID(),
		InfluencerID: influencerID,
		Platform:     platform,
		AffiliateID:  affiliateID,
	}

	var promoted bool
	err = s.influencers.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.links.WithTx(tx).Create(ctx, link); err != nil {
			return err
		}
		var err error
		promoted, err = s.influencers.WithTx(tx).SetDefaultAffiliateIfUnset(ctx, influencerID, affiliateID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if promoted {
		s.cache.Invalidate(ctx, influencerID)
		s.log.Info("default affiliate set", "influencer_id", influencerID, "affiliate_id", affiliateID)
	}
	return &models.AffiliateLinkResult{Link: link, Promoted: promoted}, nil
}

// ListLinks returns the influencer's links, oldest first. An unknown
// influencer has no links.
func (s *AffiliateService) ListLinks(ctx context.Context, influencerID string) (_ []models.AffiliateLink, err error) {
	ctx, finish := s.start(ctx, "list_links", "influencer_id", influencerID)
	defer finish(&err)

	return s.links.ListByInfluencer(ctx, influencerID)
}
