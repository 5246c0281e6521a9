package service

import (
	"context"

	"influencer-platform/backend/internal/models"
	"influencer-platform/backend/internal/repository"
	"influencer-platform/backend/pkg/logger"
	"influencer-platform/backend/pkg/observability"

	"github.com/google/uuid"
)

const (
	DefaultInteractionPageSize = 50
	MaxInteractionPageSize     = 500
)

// ChatService appends to and reads the chat interaction log.
type ChatService struct {
	repo repository.ChatInteractionRepository
	instrumentation
	newID func() string
}

func NewChatService(repo repository.ChatInteractionRepository, log *logger.Logger, rec *observability.Recorder) *ChatService {
	return &ChatService{
		repo:            repo,
		instrumentation: newInstrumentation("chat", log, rec),
		newID:           uuid.NewString,
	}
}

// LogInteraction appends one exchange. An unknown influencer is NOT_FOUND.
func (s *ChatService) LogInteraction(ctx context.Context, influencerID, userMessage, botResponse string, productRecommendations bool) (_ *models.ChatInteraction, err error) {
	ctx, finish := s.start(ctx, "log_interaction", "influencer_id", influencerID)
	defer finish(&err)

	req := models.LogChatInteractionRequest{
		InfluencerID:           influencerID,
		UserMessage:            userMessage,
		BotResponse:            botResponse,
		ProductRecommendations: productRecommendations,
	}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	interaction := &models.ChatInteraction{
		ID:                     s.newID(),
		InfluencerID:           influencerID,
		UserMessage:            userMessage,
		BotResponse:            botResponse,
		ProductRecommendations: productRecommendations,
	}
	if err := s.repo.Create(ctx, interaction); err != nil {
		return nil, err
	}
	return interaction, nil
}

// ListInteractions pages through an influencer's log, newest first.
func (s *ChatService) ListInteractions(ctx context.Context, influencerID string, limit, offset int) (_ []models.ChatInteraction, err error) {
	ctx, finish := s.start(ctx, "list_interactions", "influencer_id", influencerID)
	defer finish(&err)

	switch {
	case limit <= 0:
		limit = DefaultInteractionPageSize
	case limit > MaxInteractionPageSize:
		limit = MaxInteractionPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByInfluencer(ctx, influencerID, limit, offset)
}

// CountInteractions returns the number of logged exchanges.
func (s *ChatService) CountInteractions(ctx context.Context, influencerID string) (_ int64, err error) {
	ctx, finish := s.start(ctx, "count_interactions", "influencer_id", influencerID)
	defer finish(&err)

	return s.repo.CountByInfluencer(ctx, influencerID)
}
