package models

import (
	"time"
)

// DefaultVoiceID is assigned to new influencers that have no cloned voice yet.
const DefaultVoiceID = "default_voice"

// Influencer is a registered creator profile.
type Influencer struct {
	ID                string    `json:"id" gorm:"primaryKey;type:text"`
	Username          string    `json:"username" gorm:"type:text;uniqueIndex:influencers_username_key;not null"`
	Email             string    `json:"email" gorm:"type:text;uniqueIndex:influencers_email_key;not null"`
	PasswordHash      string    `json:"password_hash" gorm:"type:text;not null"`
	HeyGenAvatarID    *string   `json:"heygen_avatar_id,omitempty" gorm:"column:heygen_avatar_id;type:text"`
	OriginalAssetPath *string   `json:"original_asset_path,omitempty" gorm:"type:text"`
	VoiceID           string    `json:"voice_id" gorm:"type:text;default:default_voice"`
	AffiliateID       *string   `json:"affiliate_id,omitempty" gorm:"type:text"`
	ChatPageURL       string    `json:"chat_page_url" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	AffiliateLinks   []AffiliateLink   `json:"-" gorm:"foreignKey:InfluencerID;constraint:OnDelete:CASCADE"`
	ChatInteractions []ChatInteraction `json:"-" gorm:"foreignKey:InfluencerID;constraint:OnDelete:CASCADE"`
}

func (Influencer) TableName() string {
	return "influencers"
}

// PrimaryAffiliateID returns the default affiliate id or "" when unset.
func (i *Influencer) PrimaryAffiliateID() string {
	if i.AffiliateID == nil {
		return ""
	}
	return *i.AffiliateID
}

// AssetPath returns the recorded original asset path or "" when unset.
func (i *Influencer) AssetPath() string {
	if i.OriginalAssetPath == nil {
		return ""
	}
	return *i.OriginalAssetPath
}

// ChatPagePath is the public chat page for a username.
func ChatPagePath(username string) string {
	return "/chat/" + username
}

// Columns accepted by a partial influencer update.
var InfluencerUpdatableColumns = map[string]bool{
	"username":            true,
	"email":               true,
	"password_hash":       true,
	"heygen_avatar_id":    true,
	"original_asset_path": true,
	"voice_id":            true,
	"affiliate_id":        true,
	"chat_page_url":       true,
}

// Columns that may not be cleared by an update.
var InfluencerRequiredColumns = map[string]bool{
	"username":      true,
	"email":         true,
	"password_hash": true,
}
