package service

import (
	"context"
	"testing"

	"influencer-platform/backend/internal/models"
	"influencer-platform/backend/internal/testutil"
	apperrors "influencer-platform/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSetsDerivedFields(t *testing.T) {
	f := newFixture(t)

	inf := f.mustCreate(t, "inf-1", "alice")

	assert.Equal(t, "/chat/alice", inf.ChatPageURL)
	assert.Equal(t, models.DefaultVoiceID, inf.VoiceID)
	assert.Nil(t, inf.AffiliateID)
	assert.Nil(t, inf.OriginalAssetPath)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)

	req := createRequest("", "alice")
	req.Email = "not-an-email"
	_, err := f.influencers.Create(context.Background(), req)

	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	fields := apperrors.FromError(err).Details.([]FieldError)
	assert.ElementsMatch(t, []FieldError{
		{Field: "id", Error: "is required"},
		{Field: "email", Error: "must be a valid email address"},
	}, fields)

	_, err = f.influencers.Create(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")

	dupUsername := createRequest("inf-2", "alice")
	dupUsername.Email = "alice2@example.com"
	_, err := f.influencers.Create(context.Background(), dupUsername)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	dupEmail := createRequest("inf-3", "bob")
	dupEmail.Email = "alice@example.com"
	_, err = f.influencers.Create(context.Background(), dupEmail)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	list, err := f.influencers.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetLookups(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	byID, err := f.influencers.GetByID(ctx, "inf-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := f.influencers.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "inf-1", byName.ID)

	byEmail, err := f.influencers.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "inf-1", byEmail.ID)

	_, err = f.influencers.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	tests := []struct {
		name    string
		updates map[string]any
	}{
		{"empty", map[string]any{}},
		{"nil map", nil},
		{"unknown column", map[string]any{"is_admin": "true"}},
		{"immutable id", map[string]any{"id": "inf-2"}},
		{"cleared username", map[string]any{"username": ""}},
		{"null email", map[string]any{"email": nil}},
		{"bad email", map[string]any{"email": "nope"}},
		{"wrong type", map[string]any{"voice_id": 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.influencers.Update(ctx, "inf-1", tt.updates)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestUpdateMissingIDReportsSuccess(t *testing.T) {
	f := newFixture(t)

	err := f.influencers.Update(context.Background(), "ghost", map[string]any{"voice_id": "v2"})

	assert.NoError(t, err)
}

func TestUpdateRenameRecomputesChatPage(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	require.NoError(t, f.influencers.Update(ctx, "inf-1", map[string]any{"username": "alicia"}))

	got, err := f.influencers.GetByID(ctx, "inf-1")
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Username)
	assert.Equal(t, "/chat/alicia", got.ChatPageURL)

	require.NoError(t, f.influencers.Update(ctx, "inf-1", map[string]any{"username": "al", "chat_page_url": "/c/custom"}))
	got, err = f.influencers.GetByID(ctx, "inf-1")
	require.NoError(t, err)
	assert.Equal(t, "/c/custom", got.ChatPageURL)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	_, err := f.influencers.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	_, cached := f.influencers.cache.ByID(ctx, "inf-1")
	require.True(t, cached)

	require.NoError(t, f.influencers.Update(ctx, "inf-1", map[string]any{"username": "alicia", "heygen_avatar_id": "avatar-7"}))

	_, cached = f.influencers.cache.ByID(ctx, "inf-1")
	assert.False(t, cached)

	_, err = f.influencers.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := f.influencers.GetByUsername(ctx, "alicia")
	require.NoError(t, err)
	require.NotNil(t, got.HeyGenAvatarID)
	assert.Equal(t, "avatar-7", *got.HeyGenAvatarID)
}

func TestUpdateClearsNullableColumn(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()
	require.NoError(t, f.influencers.Update(ctx, "inf-1", map[string]any{"heygen_avatar_id": "a"}))

	require.NoError(t, f.influencers.Update(ctx, "inf-1", map[string]any{"heygen_avatar_id": nil}))

	got, err := f.influencers.GetByID(ctx, "inf-1")
	require.NoError(t, err)
	assert.Nil(t, got.HeyGenAvatarID)
}

func TestUpdateDoesNotMutateCallerMap(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	updates := map[string]any{"username": "alicia"}

	require.NoError(t, f.influencers.Update(context.Background(), "inf-1", updates))

	assert.Equal(t, map[string]any{"username": "alicia"}, updates)
}

func TestDeleteCascadesAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	for _, platform := range []string{"amazon", "shopify"} {
		_, err := f.affiliates.AddLink(ctx, "inf-1", platform, "aff-"+platform)
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := f.chats.LogInteraction(ctx, "inf-1", "hi", "hello", i%2 == 0)
		require.NoError(t, err)
	}

	require.NoError(t, f.influencers.Delete(ctx, "inf-1"))

	links, err := f.affiliates.ListLinks(ctx, "inf-1")
	require.NoError(t, err)
	assert.Empty(t, links)
	count, err := f.chats.CountInteractions(ctx, "inf-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = f.influencers.GetByID(ctx, "inf-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, f.influencers.Delete(ctx, "inf-1"))
}

func TestListOnBackendFailure(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	testutil.CloseDB(t, f.db)

	var (
		list []models.Influencer
		err  error
	)
	assert.NotPanics(t, func() { list, err = f.influencers.List(context.Background()) })
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
}

func TestBackendFailureIsTyped(t *testing.T) {
	f := newFixture(t)
	testutil.CloseDB(t, f.db)
	ctx := context.Background()

	_, err := f.influencers.GetByID(ctx, "inf-1")
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)

	err = f.influencers.Update(ctx, "inf-1", map[string]any{"voice_id": "v"})
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)

	err = f.influencers.Delete(ctx, "inf-1")
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
}

func TestGetPrimaryAffiliateID(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	id, err := f.influencers.GetPrimaryAffiliateID(ctx, "inf-1")
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = f.affiliates.AddLink(ctx, "inf-1", "amazon", "amz-1")
	require.NoError(t, err)

	id, err = f.influencers.GetPrimaryAffiliateID(ctx, "inf-1")
	require.NoError(t, err)
	assert.Equal(t, "amz-1", id)

	_, err = f.influencers.GetPrimaryAffiliateID(ctx, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
