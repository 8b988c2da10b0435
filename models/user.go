package models

import (
	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Name      *string `json:"name,omitempty"`
	Company   *string `json:"company,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Timezone  string  `gorm:"default:'UTC'" json:"timezone"`
	Language  string  `gorm:"default:'en'" json:"language"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`

	// Bumped on password change to invalidate outstanding tokens
	TokenVersion int `gorm:"default:0" json:"-"`

	// Relations
	Accounts   []Account       `gorm:"foreignKey:UserID" json:"accounts,omitempty"`
	Flows      []AutoReplyFlow `gorm:"foreignKey:UserID" json:"flows,omitempty"`
	Messages   []Message       `gorm:"foreignKey:UserID" json:"messages,omitempty"`
	Executions []FlowExecution `gorm:"foreignKey:UserID" json:"executions,omitempty"`
}
