package models

import (
	"time"

	"gorm.io/gorm"
)

// Supported platforms. "All" is only valid on flows, never on accounts.
const (
	PlatformTwitter   = "Twitter"
	PlatformFacebook  = "Facebook"
	PlatformInstagram = "Instagram"
	PlatformLinkedIn  = "LinkedIn"
	PlatformTelegram  = "Telegram"
	PlatformWhatsApp  = "WhatsApp"
	PlatformTikTok    = "TikTok"
	PlatformYouTube   = "YouTube"
	PlatformAll       = "All"
)

// AccountPlatforms lists every platform an account can be connected on.
var AccountPlatforms = []string{
	PlatformTwitter, PlatformFacebook, PlatformInstagram, PlatformLinkedIn,
	PlatformTelegram, PlatformWhatsApp, PlatformTikTok, PlatformYouTube,
}

// Account represents a connected social platform account
type Account struct {
	gorm.Model
	UserID   uint   `gorm:"not null;index:idx_accounts_user_platform" json:"user_id"`
	Platform string `gorm:"not null;index:idx_accounts_user_platform" json:"platform"`

	// Credentials (populated by the connection flows, consumed by adapters)
	AccessToken  string     `gorm:"not null" json:"-"`
	AccessSecret string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`

	// Platform-specific identifiers
	PageID     string `json:"page_id,omitempty"`     // Facebook page / WhatsApp phone number id
	PlatformID string `json:"platform_id,omitempty"` // platform-native user id
	ChannelID  string `json:"channel_id,omitempty"`  // YouTube channel

	DisplayName  string `json:"display_name,omitempty"`
	WebhookURL   string `json:"webhook_url,omitempty"`
	IsQuickSetup bool   `gorm:"default:false" json:"is_quick_setup"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	// Relations
	User User `json:"-"`
}

// IsValidAccountPlatform reports whether p names a connectable platform.
func IsValidAccountPlatform(p string) bool {
	for _, known := range AccountPlatforms {
		if known == p {
			return true
		}
	}
	return false
}
