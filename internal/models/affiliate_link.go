package models

import "time"

// AffiliateLink ties an influencer to an affiliate id on one platform.
// An influencer may hold several links for the same platform.
type AffiliateLink struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text"`
	InfluencerID string    `json:"influencer_id" gorm:"type:text;not null;index:idx_affiliate_links_influencer_id"`
	Platform     string    `json:"platform" gorm:"type:text;not null"`
	AffiliateID  string    `json:"affiliate_id" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AffiliateLink) TableName() string {
	return "affiliate_links"
}
