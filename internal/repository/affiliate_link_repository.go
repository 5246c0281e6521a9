package repository

import (
	"context"

	"influencer-platform/backend/internal/models"

	"gorm.io/gorm"
)

const affiliateLinkEntity = "AFFILIATE_LINK"

type AffiliateLinkRepository interface {
	Create(ctx context.Context, link *models.AffiliateLink) error
	ListByInfluencer(ctx context.Context, influencerID string) ([]models.AffiliateLink, error)
	WithTx(tx *gorm.DB) AffiliateLinkRepository
}

var _ AffiliateLinkRepository = (*GormAffiliateLinkRepository)(nil)

type GormAffiliateLinkRepository struct {
	db *gorm.DB
}

func NewGormAffiliateLinkRepository(db *gorm.DB) *GormAffiliateLinkRepository {
	return &GormAffiliateLinkRepository{db: db}
}

func (r *GormAffiliateLinkRepository) WithTx(tx *gorm.DB) AffiliateLinkRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliateLinkRepository{db: tx}
}

func (r *GormAffiliateLinkRepository) Create(ctx context.Context, link *models.AffiliateLink) error {
	return translateError(r.db.WithContext(ctx).Create(link).Error, affiliateLinkEntity)
}

func (r *GormAffiliateLinkRepository) ListByInfluencer(ctx context.Context, influencerID string) ([]models.AffiliateLink, error) {
	var links []models.AffiliateLink
	err := r.db.WithContext(ctx).
		Where("influencer_id = ?", influencerID).
		Order("created_at ASC").Order("id ASC").
		Find(&links).Error
	if err != nil {
		return []models.AffiliateLink{}, translateError(err, affiliateLinkEntity)
	}
	if links == nil {
		links = []models.AffiliateLink{}
	}
	return links, nil
}
