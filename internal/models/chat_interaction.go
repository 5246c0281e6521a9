package models

import "time"

// ChatInteraction is one logged exchange on an influencer's chat page.
// Rows are append-only.
type ChatInteraction struct {
	ID                     string    `json:"id" gorm:"primaryKey;type:text"`
	InfluencerID           string    `json:"influencer_id" gorm:"type:text;not null;index:idx_chat_interactions_influencer_id"`
	UserMessage            string    `json:"user_message" gorm:"type:text;not null"`
	BotResponse            string    `json:"bot_response" gorm:"type:text;not null"`
	ProductRecommendations bool      `json:"product_recommendations" gorm:"not null;default:false"`
	CreatedAt              time.Time `json:"created_at"`
}

func (ChatInteraction) TableName() string {
	return "chat_interactions"
}
