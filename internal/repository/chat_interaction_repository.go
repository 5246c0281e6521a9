package repository

import (
	"context"

	"influencer-platform/backend/internal/models"

	"gorm.io/gorm"
)

const chatInteractionEntity = "CHAT_INTERACTION"

// ChatInteractionRepository has no update or delete: the log is append-only.
type ChatInteractionRepository interface {
	Create(ctx context.Context, interaction *models.ChatInteraction) error
	ListByInfluencer(ctx context.Context, influencerID string, limit, offset int) ([]models.ChatInteraction, error)
	CountByInfluencer(ctx context.Context, influencerID string) (int64, error)
	WithTx(tx *gorm.DB) ChatInteractionRepository
}

var _ ChatInteractionRepository = (*GormChatInteractionRepository)(nil)

type GormChatInteractionRepository struct {
	db *gorm.DB
}

func NewGormChatInteractionRepository(db *gorm.DB) *GormChatInteractionRepository {
	return &GormChatInteractionRepository{db: db}
}

func (r *GormChatInteractionRepository) WithTx(tx *gorm.DB) ChatInteractionRepository {
	if tx == nil {
		return r
	}
	return &GormChatInteractionRepository{db: tx}
}

func (r *GormChatInteractionRepository) Create(ctx context.Context, interaction *models.ChatInteraction) error {
	return translateError(r.db.WithContext(ctx).Create(interaction).Error, chatInteractionEntity)
}

// ListByInfluencer returns interactions newest first.
func (r *GormChatInteractionRepository) ListByInfluencer(ctx context.Context, influencerID string, limit, offset int) ([]models.ChatInteraction, error) {
	var interactions []models.ChatInteraction
	err := r.db.WithContext(ctx).
		Where("influencer_id = ?", influencerID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&interactions).Error
	if err != nil {
		return []models.ChatInteraction{}, translateError(err, chatInteractionEntity)
	}
	if interactions == nil {
		interactions = []models.ChatInteraction{}
	}
	return interactions, nil
}

func (r *GormChatInteractionRepository) CountByInfluencer(ctx context.Context, influencerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChatInteraction{}).Where("influencer_id = ?", influencerID).Count(&count).Error
	if err != nil {
		return 0, translateError(err, chatInteractionEntity)
	}
	return count, nil
}
