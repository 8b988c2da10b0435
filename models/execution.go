package models

import (
	"time"

	"gorm.io/gorm"
)

// Execution statuses. "processing" is a transient claim marker held only
// while a dispatcher is executing a step; it is never a resting state.
const (
	ExecutionStatusActive     = "active"
	ExecutionStatusProcessing = "processing"
	ExecutionStatusCompleted  = "completed"
	ExecutionStatusPaused     = "paused"
	ExecutionStatusFailed     = "failed"
)

// ExecutedStep is one entry in an execution's append-only audit log
type ExecutedStep struct {
	StepNumber     int       `json:"step_number"`
	ExecutedAt     time.Time `json:"executed_at"`
	ReplyContent   string    `json:"reply_content"`
	ReplyMessageID string    `json:"reply_message_id,omitempty"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
}

// FlowExecution tracks one attempt to carry a single inbound message
// through a flow's step sequence.
type FlowExecution struct {
	gorm.Model
	FlowID uint `gorm:"not null;index:idx_executions_flow_status" json:"flow_id"`

	// Copied from the flow at creation time for query convenience
	UserID uint `gorm:"not null;index:idx_executions_user_platform" json:"user_id"`

	OriginalMessageID uint `gorm:"not null" json:"original_message_id"`

	// Denormalized from the inbound message at creation time; not kept in
	// sync if the source record changes later
	Platform   string `gorm:"not null;index:idx_executions_user_platform" json:"platform"`
	SenderID   string `gorm:"index" json:"sender_id"`
	SenderName string `json:"sender_name"`

	// Step number to attempt next
	CurrentStep int `gorm:"default:1" json:"current_step"`

	Status string `gorm:"default:'active';index:idx_executions_flow_status" json:"status"`

	ExecutedSteps []ExecutedStep `gorm:"type:jsonb;serializer:json" json:"executed_steps,omitempty"`

	// Eligible for processing only when now >= NextExecutionTime
	NextExecutionTime *time.Time `gorm:"index" json:"next_execution_time"`

	// Count of successfully sent steps
	TotalReplies int `gorm:"default:0" json:"total_replies"`

	LastActivity time.Time `json:"last_activity"`

	// Relations
	Flow AutoReplyFlow `json:"-"`
	User User          `json:"-"`
}
