package service

import (
	"context"
	"errors"
	"testing"

	apperrors "influencer-platform/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestStoreOriginalRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	path, err := f.assets.StoreOriginal(ctx, "inf-1", pngHeader, "avatar.png")
	require.NoError(t, err)
	assert.Equal(t, "original_avatars/inf-1/avatar.png", path)

	got, err := f.assets.GetOriginal(ctx, "inf-1")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, got)

	contentType, ok := f.store.ContentType(DefaultAssetBucket, path)
	require.True(t, ok)
	assert.Equal(t, "image/png", contentType)

	inf, err := f.influencers.GetByID(ctx, "inf-1")
	require.NoError(t, err)
	assert.Equal(t, path, inf.AssetPath())
}

func TestStoreOriginalOverwrites(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	_, err := f.assets.StoreOriginal(ctx, "inf-1", []byte("first"), "avatar.txt")
	require.NoError(t, err)
	_, err = f.assets.StoreOriginal(ctx, "inf-1", []byte("second"), "avatar.txt")
	require.NoError(t, err)

	got, err := f.assets.GetOriginal(ctx, "inf-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
	assert.Equal(t, 1, f.store.Len())
}

func TestStoreOriginalRefreshesCachedInfluencer(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	// warm the cache with the path still unset
	_, err := f.influencers.GetByID(ctx, "inf-1")
	require.NoError(t, err)

	path, err := f.assets.StoreOriginal(ctx, "inf-1", []byte("data"), "a.txt")
	require.NoError(t, err)

	inf, err := f.influencers.GetByID(ctx, "inf-1")
	require.NoError(t, err)
	assert.Equal(t, path, inf.AssetPath())
}

func TestStoreOriginalRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	for _, name := range []string{"", "  ", "../x.png", "a/b.png", `a\b.png`, "..", "x\x00.png"} {
		t.Run(name, func(t *testing.T) {
			_, err := f.assets.StoreOriginal(ctx, "inf-1", []byte("x"), name)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}

	_, err := f.assets.StoreOriginal(ctx, "", []byte("x"), "a.png")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Zero(t, f.store.Uploads())
}

func TestStoreOriginalAcceptsDottedNames(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	for _, name := range []string{"avatar..png", "v1..final.jpg", "...png", ".hidden"} {
		t.Run(name, func(t *testing.T) {
			path, err := f.assets.StoreOriginal(ctx, "inf-1", []byte("abc"), name)
			require.NoError(t, err)
			assert.Equal(t, "original_avatars/inf-1/"+name, path)
		})
	}
}

func TestStoreOriginalUnknownInfluencer(t *testing.T) {
	f := newFixture(t)

	_, err := f.assets.StoreOriginal(context.Background(), "ghost", []byte("x"), "a.png")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "INFLUENCER_NOT_FOUND", apperrors.GetErrorCode(err))
	assert.Zero(t, f.store.Uploads())
}

func TestStoreOriginalUploadFailureKeepsRow(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	f.store.Err = apperrors.NewBackendUnavailableError("STORAGE_UNAVAILABLE", "storage down", errors.New("dial tcp"))
	ctx := context.Background()

	_, err := f.assets.StoreOriginal(ctx, "inf-1", []byte("x"), "a.png")
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)

	inf, err := f.influencers.GetByID(ctx, "inf-1")
	require.NoError(t, err)
	assert.Empty(t, inf.AssetPath())
}

func TestGetOriginalWithoutAssetSkipsStore(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	_, err := f.assets.GetOriginal(ctx, "inf-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "ASSET_NOT_FOUND", apperrors.GetErrorCode(err))

	_, err = f.assets.GetOriginal(ctx, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "INFLUENCER_NOT_FOUND", apperrors.GetErrorCode(err))

	assert.Zero(t, f.store.Downloads())
}
