package automation

import (
	"errors"
	"strings"
	"time"

	"socialreply/models"
	"socialreply/utils"

	"gorm.io/gorm"
)

// TriggeredFlow reports one flow that fired for an inbound message.
type TriggeredFlow struct {
	FlowID      uint   `json:"flow_id"`
	FlowName    string `json:"flow_name"`
	ExecutionID uint   `json:"execution_id"`
}

// ProcessMessage evaluates every active flow of the message's owner against
// the message and creates an execution for each one that triggers. A flow
// rejected by the rate limit is skipped silently; other per-flow failures
// are logged and do not prevent the remaining flows from triggering.
func (e *Engine) ProcessMessage(messageID, userID uint) ([]TriggeredFlow, error) {
	var message models.Message
	if err := e.DB.Where("id = ? AND user_id = ?", messageID, userID).First(&message).Error; err != nil {
		return nil, err
	}

	var flows []models.AutoReplyFlow
	if err := e.DB.Where(
		"user_id = ? AND platform IN ? AND is_active = ?",
		message.UserID, []string{message.Platform, models.PlatformAll}, true,
	).Find(&flows).Error; err != nil {
		return nil, err
	}

	triggered := make([]TriggeredFlow, 0, len(flows))

	for i := range flows {
		flow := &flows[i]
		if !e.shouldTriggerFlow(flow, &message) {
			continue
		}

		execution, err := e.createExecution(flow, &message)
		if err != nil {
			if errors.Is(err, ErrRateLimitExceeded) {
				utils.LogEvent("auto_reply_rate_limited", map[string]interface{}{
					"flow_id":   flow.ID,
					"sender_id": message.SenderID,
				})
				continue
			}
			utils.LogError("auto_reply_execution_create", err, map[string]interface{}{
				"flow_id":    flow.ID,
				"message_id": message.ID,
			})
			continue
		}

		// Flow-level telemetry; structural fields are never touched here
		flow.Statistics.TotalTriggers++
		flow.Statistics.LastTriggered = utils.Pointer(e.now())
		if err := e.DB.Model(flow).Update("statistics", flow.Statistics).Error; err != nil {
			e.Logger.Printf("Failed to update statistics for flow %d: %v", flow.ID, err)
		}

		triggered = append(triggered, TriggeredFlow{
			FlowID:      flow.ID,
			FlowName:    flow.Name,
			ExecutionID: execution.ID,
		})
	}

	return triggered, nil
}

// shouldTriggerFlow decides whether a flow fires for a message. A keyword
// match short-circuits to true before the condition types are consulted.
func (e *Engine) shouldTriggerFlow(flow *models.AutoReplyFlow, message *models.Message) bool {
	if flow.Settings.WorkingHours.Enabled &&
		!insideWindow(e.now(), flow.Settings.WorkingHours.StartTime, flow.Settings.WorkingHours.EndTime, flow.Settings.WorkingHours.Timezone) {
		return false
	}

	if len(flow.TriggerKeywords) > 0 {
		content := strings.ToLower(message.Content)
		for _, keyword := range flow.TriggerKeywords {
			if keyword != "" && strings.Contains(content, strings.ToLower(keyword)) {
				return true
			}
		}
	}

	switch flow.TriggerConditions.Type {
	case models.TriggerTypeMessageType:
		return message.MessageType == flow.TriggerConditions.Value
	case models.TriggerTypeSender:
		return message.SenderID == flow.TriggerConditions.Value
	case models.TriggerTypeTime:
		// Value is a daily window like "09:00-17:00" checked against the
		// message arrival time; anything else never triggers
		return insideDailyRange(message.ReceivedAt, flow.TriggerConditions.Value)
	}

	return false
}

// createExecution creates the execution record for a triggered flow,
// enforcing maxRepliesPerUser within the cooldown window. The count and
// insert run in one transaction so two messages racing on the same sender
// cannot both slip under the cap through this path.
func (e *Engine) createExecution(flow *models.AutoReplyFlow, message *models.Message) (*models.FlowExecution, error) {
	now := e.now()
	windowStart := now.Add(-time.Duration(flow.Settings.CooldownPeriod) * time.Hour)

	execution := models.FlowExecution{
		FlowID:            flow.ID,
		UserID:            flow.UserID,
		OriginalMessageID: message.ID,
		Platform:          message.Platform,
		SenderID:          message.SenderID,
		SenderName:        message.SenderName,
		CurrentStep:       1,
		Status:            models.ExecutionStatusActive,
		NextExecutionTime: utils.Pointer(now), // first step is due immediately
		LastActivity:      now,
	}

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.FlowExecution{}).
			Where("flow_id = ? AND sender_id = ? AND created_at >= ?", flow.ID, message.SenderID, windowStart).
			Count(&count).Error; err != nil {
			return err
		}

		if count >= int64(flow.Settings.MaxRepliesPerUser) {
			return ErrRateLimitExceeded
		}

		return tx.Create(&execution).Error
	})
	if err != nil {
		return nil, err
	}

	return &execution, nil
}

// insideDailyRange checks t against a "HH:MM-HH:MM" window. Malformed or
// empty values never match.
func insideDailyRange(t time.Time, window string) bool {
	parts := strings.SplitN(window, "-", 2)
	if len(parts) != 2 {
		return false
	}
	return insideWindow(t, strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), "")
}

// insideWindow checks whether t falls between two "HH:MM" wall-clock times,
// optionally in a named timezone. Windows crossing midnight wrap.
func insideWindow(t time.Time, startTime, endTime, timezone string) bool {
	start, err := time.Parse("15:04", startTime)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", endTime)
	if err != nil {
		return false
	}

	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			t = t.In(loc)
		}
	}

	minutes := t.Hour()*60 + t.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	if startMin <= endMin {
		return minutes >= startMin && minutes <= endMin
	}
	return minutes >= startMin || minutes <= endMin
}
