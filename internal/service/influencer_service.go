package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"influencer-platform/backend/internal/models"
	"influencer-platform/backend/internal/repository"
	apperrors "influencer-platform/backend/pkg/errors"
	"influencer-platform/backend/pkg/logger"
	"influencer-platform/backend/pkg/observability"
)

// InfluencerService manages influencer profiles.
type InfluencerService struct {
	repo  repository.InfluencerRepository
	cache *InfluencerCache
	instrumentation
	now func() time.Time
}

func NewInfluencerService(repo repository.InfluencerRepository, cache *InfluencerCache, log *logger.Logger, rec *observability.Recorder) *InfluencerService {
	if cache == nil {
		cache = NewInfluencerCache(nil, 0, log)
	}
	return &InfluencerService{
		repo:            repo,
		cache:           cache,
		instrumentation: newInstrumentation("influencer", log, rec),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Create registers an influencer. The chat page URL is derived from the
// username and the voice defaults to DefaultVoiceID.
func (s *InfluencerService) Create(ctx context.Context, req *models.CreateInfluencerRequest) (_ *models.Influencer, err error) {
	if req == nil {
		return nil, apperrors.NewValidationError("request is required", nil)
	}
	ctx, finish := s.start(ctx, "create", "influencer_id", req.ID, "username", req.Username)
	defer finish(&err)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = models.DefaultVoiceID
	}
	inf := &models.Influencer{
		ID:             req.ID,
		Username:       req.Username,
		Email:          req.Email,
		PasswordHash:   req.PasswordHash,
		HeyGenAvatarID: req.HeyGenAvatarID,
		VoiceID:        voiceID,
		ChatPageURL:    models.ChatPagePath(req.Username),
	}
	if err := s.repo.Create(ctx, inf); err != nil {
		return nil, err
	}

	s.log.Info("influencer created", "influencer_id", inf.ID, "username", inf.Username)
	return inf, nil
}

func (s *InfluencerService) GetByID(ctx context.Context, id string) (_ *models.Influencer, err error) {
	ctx, finish := s.start(ctx, "get_by_id", "influencer_id", id)
	defer finish(&err)

	if inf, ok := s.cache.ByID(ctx, id); ok {
		return inf, nil
	}
	inf, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ctx, inf)
	return inf, nil
}

func (s *InfluencerService) GetByUsername(ctx context.Context, username string) (_ *models.Influencer, err error) {
	ctx, finish := s.start(ctx, "get_by_username", "username", username)
	defer finish(&err)

	if inf, ok := s.cache.ByUsername(ctx, username); ok {
		return inf, nil
	}
	inf, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ctx, inf)
	return inf, nil
}

func (s *InfluencerService) GetByEmail(ctx context.Context, email string) (_ *models.Influencer, err error) {
	ctx, finish := s.start(ctx, "get_by_email")
	defer finish(&err)

	return s.repo.GetByEmail(ctx, email)
}

// Update applies a partial update. Updating an id that matches no row is
// reported as success. A username change also rewrites chat_page_url to
// "/chat/{username}" unless the same update sets chat_page_url; earlier
// releases left the stored path pointing at the old username.
func (s *InfluencerService) Update(ctx context.Context, id string, updates map[string]any) (err error) {
	ctx, finish := s.start(ctx, "update", "influencer_id", id)
	defer finish(&err)

	columns, err := s.prepareUpdate(updates)
	if err != nil {
		return err
	}

	rows, err := s.repo.Update(ctx, id, columns)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	if rows == 0 {
		s.log.Debug("update matched no influencer", "influencer_id", id)
	}
	return nil
}

// prepareUpdate validates the requested columns and returns the map to
// write, including updated_at and a recomputed chat page URL on rename.
func (s *InfluencerService) prepareUpdate(updates map[string]any) (map[string]any, error) {
	if len(updates) == 0 {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	columns := make(map[string]any, len(updates)+2)
	for _, column := range keys {
		if !models.InfluencerUpdatableColumns[column] {
			return nil, invalidField(column, "is not an updatable column")
		}
		value, err := normalizeValue(column, updates[column])
		if err != nil {
			return nil, err
		}
		columns[column] = value
	}

	if email, ok := columns["email"].(string); ok {
		if err := validate.Var(email, "email"); err != nil {
			return nil, invalidField("email", "must be a valid email address")
		}
	}
	if username, ok := columns["username"].(string); ok {
		if _, explicit := columns["chat_page_url"]; !explicit {
			columns["chat_page_url"] = models.ChatPagePath(username)
		}
	}
	columns["updated_at"] = s.now()
	return columns, nil
}

// normalizeValue accepts strings for every column and nil for the nullable
// ones.
func normalizeValue(column string, value any) (any, error) {
	nullable := column == "heygen_avatar_id" || column == "original_asset_path" || column == "affiliate_id"

	switch v := value.(type) {
	case string:
		if v == "" && (models.InfluencerRequiredColumns[column] || column == "voice_id") {
			return nil, invalidField(column, "must not be empty")
		}
		return v, nil
	case *string:
		if v == nil {
			return normalizeValue(column, nil)
		}
		return normalizeValue(column, *v)
	case nil:
		if !nullable {
			return nil, invalidField(column, "must not be null")
		}
		return nil, nil
	default:
		return nil, invalidField(column, fmt.Sprintf("must be a string, got %T", value))
	}
}

// Delete removes the influencer and, through cascading foreign keys, its
// affiliate links and chat interactions. Deleting a missing id succeeds.
func (s *InfluencerService) Delete(ctx context.Context, id string) (err error) {
	ctx, finish := s.start(ctx, "delete", "influencer_id", id)
	defer finish(&err)

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	if rows > 0 {
		s.log.Info("influencer deleted", "influencer_id", id)
	}
	return nil
}

// List returns every influencer ordered by creation time. On failure the
// slice is empty, never nil, and err says why.
func (s *InfluencerService) List(ctx context.Context) (_ []models.Influencer, err error) {
	ctx, finish := s.start(ctx, "list")
	defer finish(&err)

	list, err := s.repo.List(ctx)
	if list == nil {
		list = []models.Influencer{}
	}
	return list, err
}

// GetPrimaryAffiliateID returns the default affiliate id, "" when unset.
func (s *InfluencerService) GetPrimaryAffiliateID(ctx context.Context, id string) (_ string, err error) {
	ctx, finish := s.start(ctx, "get_primary_affiliate_id", "influencer_id", id)
	defer finish(&err)

	inf, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return inf.PrimaryAffiliateID(), nil
}
