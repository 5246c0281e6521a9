package service

import (
	"context"
	"fmt"
	"testing"

	apperrors "influencer-platform/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogInteraction(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	got, err := f.chats.LogInteraction(ctx, "inf-1", "what should I buy?", "try the blue one", true)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.True(t, got.ProductRecommendations)

	_, err = f.chats.LogInteraction(ctx, "inf-1", "hello?", "", false)
	require.NoError(t, err)

	count, err := f.chats.CountInteractions(ctx, "inf-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestLogInteractionErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.chats.LogInteraction(ctx, "ghost", "hi", "hello", false)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.chats.LogInteraction(ctx, "ghost", "", "hello", false)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestListInteractionsPaging(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "inf-1", "alice")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.chats.LogInteraction(ctx, "inf-1", fmt.Sprintf("msg-%d", i), "ok", false)
		require.NoError(t, err)
	}

	page, err := f.chats.ListInteractions(ctx, "inf-1", 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	all, err := f.chats.ListInteractions(ctx, "inf-1", 0, -3)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	tail, err := f.chats.ListInteractions(ctx, "inf-1", MaxInteractionPageSize+1, 4)
	require.NoError(t, err)
	assert.Len(t, tail, 1)

	none, err := f.chats.ListInteractions(ctx, "ghost", 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
