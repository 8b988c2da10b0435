package models

import (
	"time"

	"gorm.io/gorm"
)

// Message types understood by trigger evaluation.
const (
	MessageTypeDirect  = "direct_message"
	MessageTypeMention = "mention"
	MessageTypeComment = "comment"
	MessageTypeReply   = "reply"
)

// MessageAttachment is a media reference carried alongside a message
type MessageAttachment struct {
	URL       string `json:"url"`
	MediaType string `json:"media_type"` // image, video, document
}

// Message represents an inbound message received from a platform webhook
// or persisted by one of the manual reply paths. The automation engine
// consumes these read-only.
type Message struct {
	gorm.Model
	UserID   uint   `gorm:"not null;index:idx_messages_user_platform" json:"user_id"`
	Platform string `gorm:"not null;index:idx_messages_user_platform" json:"platform"`

	PlatformMessageID string `gorm:"not null;uniqueIndex" json:"platform_message_id"`

	SenderID       string `gorm:"not null" json:"sender_id"`
	SenderName     string `gorm:"not null" json:"sender_name"`
	SenderUsername string `json:"sender_username,omitempty"`

	Content     string `gorm:"not null" json:"content"`
	MessageType string `gorm:"default:'direct_message'" json:"message_type"`

	IsRead     bool `gorm:"default:false" json:"is_read"`
	IsArchived bool `gorm:"default:false" json:"is_archived"`

	ReceivedAt time.Time `gorm:"not null;index" json:"received_at"`

	Attachments []MessageAttachment `gorm:"type:jsonb;serializer:json" json:"attachments,omitempty"`

	ReplyToMessageID string `json:"reply_to_message_id,omitempty"`
	ThreadID         string `json:"thread_id,omitempty"`

	// Relations
	User User `json:"-"`
}
