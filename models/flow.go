package models

import (
	"time"

	"gorm.io/gorm"
)

// Step types
const (
	StepTypeImmediate   = "immediate_reply"
	StepTypeDelayed     = "delayed_reply"
	StepTypeConditional = "conditional_reply"
	StepTypeEnd         = "end"
)

// Step conditions
const (
	ConditionAlways          = "always"
	ConditionContainsKeyword = "contains_keyword"
	ConditionTimeBased       = "time_based"
	ConditionSenderBased     = "sender_based"
)

// Trigger condition types
const (
	TriggerTypeKeyword     = "keyword"
	TriggerTypeTime        = "time"
	TriggerTypeSender      = "sender"
	TriggerTypeMessageType = "message_type"
)

// TriggerCondition decides when a flow fires for a message that did not
// match any trigger keyword.
type TriggerCondition struct {
	Type  string `json:"type" validate:"omitempty,oneof=keyword time sender message_type"`
	Value string `json:"value"`
}

// FlowStep is one action in a flow. Step numbers are unique within a flow
// and used as keys; they are not required to be contiguous.
type FlowStep struct {
	StepNumber int    `json:"step_number" validate:"required,min=1"`
	StepType   string `json:"step_type" validate:"required,oneof=immediate_reply delayed_reply conditional_reply end"`

	// Delay in minutes, applied only when StepType is delayed_reply
	Delay int `json:"delay"`

	Condition      string `json:"condition" validate:"omitempty,oneof=contains_keyword time_based sender_based always"`
	ConditionValue string `json:"condition_value,omitempty"`

	ReplyContent string `json:"reply_content" validate:"required"`
	ReplyImage   string `json:"reply_image,omitempty"`

	// Explicit successor step number; zero means fall through to
	// the current step number + 1.
	NextStep  int  `json:"next_step,omitempty"`
	IsEndStep bool `json:"is_end_step"`
}

// WorkingHours restricts triggering to a daily window when enabled
type WorkingHours struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"start_time,omitempty"` // "09:00"
	EndTime   string `json:"end_time,omitempty"`   // "17:00"
	Timezone  string `json:"timezone,omitempty"`   // "UTC"
}

// FlowSettings carries the per-flow rate limiting window
type FlowSettings struct {
	MaxRepliesPerUser int          `json:"max_replies_per_user"`
	CooldownPeriod    int          `json:"cooldown_period"` // hours
	WorkingHours      WorkingHours `json:"working_hours,omitempty"`
}

// FlowStatistics are write-only telemetry counters mutated by the engine
type FlowStatistics struct {
	TotalTriggers int        `json:"total_triggers"`
	TotalReplies  int        `json:"total_replies"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
}

// AutoReplyFlow is a user-authored automation: trigger conditions plus an
// ordered step list. The execution engine never mutates a flow structurally,
// only its Statistics.
type AutoReplyFlow struct {
	gorm.Model
	UserID uint `gorm:"not null;index:idx_flows_user_platform_active" json:"user_id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`

	// One of the eight platforms, or "All"
	Platform string `gorm:"not null;index:idx_flows_user_platform_active" json:"platform"`

	IsActive bool `gorm:"default:true;index:idx_flows_user_platform_active" json:"is_active"`

	// Keywords that trigger this flow (case-insensitive substrings)
	TriggerKeywords []string `gorm:"type:jsonb;serializer:json" json:"trigger_keywords,omitempty"`

	TriggerConditions TriggerCondition `gorm:"type:jsonb;serializer:json" json:"trigger_conditions"`

	FlowSteps []FlowStep `gorm:"type:jsonb;serializer:json" json:"flow_steps"`

	Settings   FlowSettings   `gorm:"type:jsonb;serializer:json" json:"settings"`
	Statistics FlowStatistics `gorm:"type:jsonb;serializer:json" json:"statistics"`

	// Relations
	User       User            `json:"-"`
	Executions []FlowExecution `gorm:"foreignKey:FlowID" json:"executions,omitempty"`
}

// StepByNumber returns the step keyed by number, or nil when the flow is
// exhausted.
func (f *AutoReplyFlow) StepByNumber(n int) *FlowStep {
	for i := range f.FlowSteps {
		if f.FlowSteps[i].StepNumber == n {
			return &f.FlowSteps[i]
		}
	}
	return nil
}

// Defaults applied on creation, mirroring the stored-record contract.
func (f *AutoReplyFlow) ApplyDefaults() {
	if f.Settings.MaxRepliesPerUser == 0 {
		f.Settings.MaxRepliesPerUser = 3
	}
	if f.Settings.CooldownPeriod == 0 {
		f.Settings.CooldownPeriod = 24
	}
	if f.TriggerConditions.Type == "" {
		f.TriggerConditions.Type = TriggerTypeKeyword
	}
	for i := range f.FlowSteps {
		if f.FlowSteps[i].Condition == "" {
			f.FlowSteps[i].Condition = ConditionAlways
		}
	}
}
