package repository

import (
	"context"
	"time"

	"influencer-platform/backend/internal/models"
	apperrors "influencer-platform/backend/pkg/errors"

	"gorm.io/gorm"
)

const influencerEntity = "INFLUENCER"

type InfluencerRepository interface {
	Create(ctx context.Context, influencer *models.Influencer) error
	GetByID(ctx context.Context, id string) (*models.Influencer, error)
	GetByUsername(ctx context.Context, username string) (*models.Influencer, error)
	GetByEmail(ctx context.Context, email string) (*models.Influencer, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	List(ctx context.Context) ([]models.Influencer, error)
	SetDefaultAffiliateIfUnset(ctx context.Context, id, affiliateID string) (bool, error)
	WithTx(tx *gorm.DB) InfluencerRepository
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

var _ InfluencerRepository = (*GormInfluencerRepository)(nil)

type GormInfluencerRepository struct {
	db *gorm.DB
}

func NewGormInfluencerRepository(db *gorm.DB) *GormInfluencerRepository {
	return &GormInfluencerRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *GormInfluencerRepository) WithTx(tx *gorm.DB) InfluencerRepository {
	if tx == nil {
		return r
	}
	return &GormInfluencerRepository{db: tx}
}

// Transaction runs fn inside a database transaction
func (r *GormInfluencerRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(fn)
	return translateError(err, influencerEntity)
}

func (r *GormInfluencerRepository) Create(ctx context.Context, influencer *models.Influencer) error {
	err := r.db.WithContext(ctx).Create(influencer).Error
	if err == nil {
		return nil
	}
	translated := translateError(err, influencerEntity)
	if apperrors.Is(translated, apperrors.ErrConflict) && apperrors.FromError(translated).Details == nil {
		if field := r.conflictingField(ctx, influencer); field != "" {
			return conflictError(influencerEntity, field)
		}
	}
	return translated
}

// conflictingField finds which unique column an insert collided on when the
// driver error did not say.
func (r *GormInfluencerRepository) conflictingField(ctx context.Context, influencer *models.Influencer) string {
	probes := []struct {
		column string
		value  string
	}{
		{"id", influencer.ID},
		{"username", influencer.Username},
		{"email", influencer.Email},
	}
	for _, p := range probes {
		var count int64
		err := r.db.WithContext(ctx).Model(&models.Influencer{}).Where(p.column+" = ?", p.value).Count(&count).Error
		if err == nil && count > 0 {
			return p.column
		}
	}
	return ""
}

func (r *GormInfluencerRepository) GetByID(ctx context.Context, id string) (*models.Influencer, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormInfluencerRepository) GetByUsername(ctx context.Context, username string) (*models.Influencer, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GormInfluencerRepository) GetByEmail(ctx context.Context, email string) (*models.Influencer, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GormInfluencerRepository) first(ctx context.Context, query string, arg string) (*models.Influencer, error) {
	var influencer models.Influencer
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&influencer).Error; err != nil {
		return nil, translateError(err, influencerEntity)
	}
	return &influencer, nil
}

func (r *GormInfluencerRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Influencer{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, translateError(err, influencerEntity)
	}
	return count > 0, nil
}

// Update applies a partial column update and reports the number of rows
// matched. Zero rows is not an error.
func (r *GormInfluencerRepository) Update(ctx context.Context, id string, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Influencer{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return 0, translateError(result.Error, influencerEntity)
	}
	return result.RowsAffected, nil
}

// Delete removes the influencer; affiliate links and chat interactions go
// with it through the ON DELETE CASCADE foreign keys.
func (r *GormInfluencerRepository) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Influencer{})
	if result.Error != nil {
		return 0, translateError(result.Error, influencerEntity)
	}
	return result.RowsAffected, nil
}

func (r *GormInfluencerRepository) List(ctx context.Context) ([]models.Influencer, error) {
	var influencers []models.Influencer
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&influencers).Error
	if influencers == nil {
		influencers = []models.Influencer{}
	}
	if err != nil {
		return []models.Influencer{}, translateError(err, influencerEntity)
	}
	return influencers, nil
}

// SetDefaultAffiliateIfUnset sets affiliate_id only when it is still empty,
// in a single conditional UPDATE, and reports whether this call set it.
func (r *GormInfluencerRepository) SetDefaultAffiliateIfUnset(ctx context.Context, id, affiliateID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Influencer{}).
		Where("id = ? AND (affiliate_id IS NULL OR affiliate_id = '')", id).
		Updates(map[string]any{
			"affiliate_id": affiliateID,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return false, translateError(result.Error, influencerEntity)
	}
	return result.RowsAffected == 1, nil
}
