package service

import (
	"context"
	"path"
	"time"

	"influencer-platform/backend/internal/repository"
	"influencer-platform/backend/internal/storage"
	apperrors "influencer-platform/backend/pkg/errors"
	"influencer-platform/backend/pkg/logger"
	"influencer-platform/backend/pkg/observability"
)

const (
	// DefaultAssetBucket holds influencer source media.
	DefaultAssetBucket = "influencer-assets"
	originalAvatarDir  = "original_avatars"
)

// OriginalAssetPath is the object path of an influencer's source avatar file.
func OriginalAssetPath(influencerID, filename string) string {
	return path.Join(originalAvatarDir, influencerID, filename)
}

// AssetService stores and retrieves the source file an avatar is built from.
type AssetService struct {
	influencers repository.InfluencerRepository
	store       storage.BlobStore
	bucket      string
	cache       *InfluencerCache
	instrumentation
	now func() time.Time
}

func NewAssetService(influencers repository.InfluencerRepository, store storage.BlobStore, bucket string, cache *InfluencerCache, log *logger.Logger, rec *observability.Recorder) *AssetService {
	if bucket == "" {
		bucket = DefaultAssetBucket
	}
	if cache == nil {
		cache = NewInfluencerCache(nil, 0, log)
	}
	return &AssetService{
		influencers:     influencers,
		store:           store,
		bucket:          bucket,
		cache:           cache,
		instrumentation: newInstrumentation("asset", log, rec),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// StoreOriginal uploads data under the influencer's namespace, replacing any
// object with the same filename, then records the path on the influencer.
// It returns the stored path.
func (s *AssetService) StoreOriginal(ctx context.Context, influencerID string, data []byte, filename string) (_ string, err error) {
	ctx, finish := s.start(ctx, "store_original", "influencer_id", influencerID, "filename", filename)
	defer finish(&err)

	if influencerID == "" {
		return "", invalidField("influencer_id", "is required")
	}
	if err := validateFilename(filename); err != nil {
		return "", err
	}

	exists, err := s.influencers.Exists(ctx, influencerID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apperrors.NewNotFoundError("INFLUENCER_NOT_FOUND", "influencer not found")
	}

	objectPath := OriginalAssetPath(influencerID, filename)
	if err := s.store.Upload(ctx, s.bucket, objectPath, data, storage.DetectContentType(data)); err != nil {
		return "", err
	}

	rows, err := s.influencers.Update(ctx, influencerID, map[string]any{
		"original_asset_path": objectPath,
		"updated_at":          s.now(),
	})
	if err == nil && rows == 0 {
		err = apperrors.NewNotFoundError("INFLUENCER_NOT_FOUND", "influencer removed during upload")
	}
	if err != nil {
		s.log.Warn("uploaded asset is not referenced by any influencer",
			"bucket", s.bucket,
			"path", objectPath,
			"influencer_id", influencerID,
		)
		return "", err
	}
	s.cache.Invalidate(ctx, influencerID)

	s.log.Info("original asset stored", "influencer_id", influencerID, "path", objectPath, "bytes", len(data))
	return objectPath, nil
}

// GetOriginal downloads the recorded source file. When no path is recorded
// it returns ASSET_NOT_FOUND without contacting the blob store.
func (s *AssetService) GetOriginal(ctx context.Context, influencerID string) (_ []byte, err error) {
	ctx, finish := s.start(ctx, "get_original", "influencer_id", influencerID)
	defer finish(&err)

	inf, err := s.influencers.GetByID(ctx, influencerID)
	if err != nil {
		return nil, err
	}
	objectPath := inf.AssetPath()
	if objectPath == "" {
		return nil, apperrors.NewNotFoundError("ASSET_NOT_FOUND", "influencer has no stored asset")
	}
	return s.store.Download(ctx, s.bucket, objectPath)
}
