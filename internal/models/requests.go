package models

// CreateInfluencerRequest is the input for registering an influencer.
// The caller supplies the id and an already hashed password.
type CreateInfluencerRequest struct {
	ID             string  `json:"id" validate:"required"`
	Username       string  `json:"username" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	PasswordHash   string  `json:"password_hash" validate:"required"`
	HeyGenAvatarID *string `json:"heygen_avatar_id,omitempty"`
	VoiceID        string  `json:"voice_id,omitempty"`
}

// AddAffiliateLinkRequest is the input for attaching an affiliate link.
type AddAffiliateLinkRequest struct {
	InfluencerID string `json:"influencer_id" validate:"required"`
	Platform     string `json:"platform" validate:"required"`
	AffiliateID  string `json:"affiliate_id" validate:"required"`
}

// LogChatInteractionRequest is the input for recording a chat exchange.
type LogChatInteractionRequest struct {
	InfluencerID           string `json:"influencer_id" validate:"required"`
	UserMessage            string `json:"user_message" validate:"required"`
	BotResponse            string `json:"bot_response"`
	ProductRecommendations bool   `json:"product_recommendations"`
}

// AffiliateLinkResult reports the stored link and whether it became the
// influencer's default affiliate.
type AffiliateLinkResult struct {
	Link     *AffiliateLink `json:"link"`
	Promoted bool           `json:"promoted"`
}
