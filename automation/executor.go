package automation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"socialreply/models"
	"socialreply/platforms"
	"socialreply/utils"

	"gorm.io/gorm"
)

// TickResult reports the outcome of processing one due execution.
type TickResult struct {
	ExecutionID  uint   `json:"execution_id"`
	Success      bool   `json:"success"`
	StepExecuted int    `json:"step_executed,omitempty"`
	ReplyID      string `json:"reply_id,omitempty"`
	Error        string `json:"error,omitempty"`
	Completed    bool   `json:"completed,omitempty"`
	Skipped      bool   `json:"skipped,omitempty"`
}

// Tick processes every active execution whose next action is due,
// optionally scoped to a single owner. Each execution is claimed with an
// atomic status flip before processing so concurrent ticks cannot
// double-send a step, and each is processed under its own recover so one
// bad execution never aborts the batch.
func (e *Engine) Tick(userID *uint) []TickResult {
	now := e.now()

	query := e.DB.Where("status = ? AND next_execution_time <= ?", models.ExecutionStatusActive, now)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var due []models.FlowExecution
	if err := query.Find(&due).Error; err != nil {
		e.Logger.Printf("Error fetching due executions: %v", err)
		return nil
	}

	results := make([]TickResult, 0, len(due))

	for i := range due {
		execution := &due[i]

		if !e.claim(execution) {
			// Another dispatcher got here first
			continue
		}

		results = append(results, e.processClaimed(execution))
	}

	return results
}

// claim atomically flips the execution from active to processing. A false
// return means a concurrent tick already owns it.
func (e *Engine) claim(execution *models.FlowExecution) bool {
	res := e.DB.Model(&models.FlowExecution{}).
		Where("id = ? AND status = ?", execution.ID, models.ExecutionStatusActive).
		Update("status", models.ExecutionStatusProcessing)
	if res.Error != nil {
		e.Logger.Printf("Error claiming execution %d: %v", execution.ID, res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		return false
	}
	execution.Status = models.ExecutionStatusProcessing
	return true
}

func (e *Engine) processClaimed(execution *models.FlowExecution) (result TickResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic processing execution %d: %v", execution.ID, r)
			utils.LogError("auto_reply_execute", err, map[string]interface{}{
				"execution_id": execution.ID,
				"flow_id":      execution.FlowID,
			})
			// Release the claim so the execution can be retried
			e.DB.Model(&models.FlowExecution{}).
				Where("id = ? AND status = ?", execution.ID, models.ExecutionStatusProcessing).
				Update("status", models.ExecutionStatusActive)
			result = TickResult{ExecutionID: execution.ID, Success: false, Error: err.Error()}
		}
	}()

	return e.executeNextStep(execution)
}

// executeNextStep resolves and runs the execution's current step, then
// persists the advanced state. The execution arrives claimed (processing)
// and leaves as active or completed.
func (e *Engine) executeNextStep(execution *models.FlowExecution) TickResult {
	now := e.now()

	var flow models.AutoReplyFlow
	if err := e.DB.First(&flow, execution.FlowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Flow deleted mid-flight: normal completion, not an error
			e.complete(execution)
			return TickResult{ExecutionID: execution.ID, Success: true, Completed: true}
		}
		e.release(execution)
		return TickResult{ExecutionID: execution.ID, Success: false, Error: err.Error()}
	}

	step := flow.StepByNumber(execution.CurrentStep)
	if step == nil {
		// Flow exhausted
		e.complete(execution)
		return TickResult{ExecutionID: execution.ID, Success: true, Completed: true}
	}

	// The original message backs step-condition evaluation and conversation
	// resolution in the adapters; a deleted message leaves it nil.
	var original *models.Message
	var msg models.Message
	if err := e.DB.First(&msg, execution.OriginalMessageID).Error; err == nil {
		original = &msg
	}

	if !e.shouldExecuteStep(step, execution, original) {
		// Skip: advance without consuming the step's delay and without
		// touching the audit log
		execution.CurrentStep = nextStepNumber(step, execution.CurrentStep)
		execution.NextExecutionTime = utils.Pointer(now)
		execution.Status = models.ExecutionStatusActive
		if err := e.DB.Save(execution).Error; err != nil {
			e.Logger.Printf("Error saving skipped execution %d: %v", execution.ID, err)
		}
		return TickResult{ExecutionID: execution.ID, Success: true, Skipped: true}
	}

	sendResult := e.dispatch(execution, step, original)

	entry := models.ExecutedStep{
		StepNumber:   step.StepNumber,
		ExecutedAt:   now,
		ReplyContent: step.ReplyContent,
		Success:      sendResult.Success,
	}
	if sendResult.Success {
		entry.ReplyMessageID = sendResult.MessageID
	} else {
		entry.Error = sendResult.Error
	}
	execution.ExecutedSteps = append(execution.ExecutedSteps, entry)

	if sendResult.Success {
		execution.TotalReplies++
		execution.LastActivity = now

		flow.Statistics.TotalReplies++
		if err := e.DB.Model(&flow).Update("statistics", flow.Statistics).Error; err != nil {
			e.Logger.Printf("Failed to update statistics for flow %d: %v", flow.ID, err)
		}
	}

	// The delay applies to the transition after a delayed step; everything
	// else is eligible again on the next tick
	if step.StepType == models.StepTypeDelayed && step.Delay > 0 {
		execution.NextExecutionTime = utils.Pointer(now.Add(time.Duration(step.Delay) * time.Minute))
	} else {
		execution.NextExecutionTime = utils.Pointer(now)
	}

	if step.IsEndStep {
		execution.Status = models.ExecutionStatusCompleted
	} else {
		execution.CurrentStep = nextStepNumber(step, execution.CurrentStep)
		execution.Status = models.ExecutionStatusActive
	}

	if err := e.DB.Save(execution).Error; err != nil {
		e.Logger.Printf("Error saving execution %d: %v", execution.ID, err)
	}

	result := TickResult{
		ExecutionID:  execution.ID,
		Success:      sendResult.Success,
		StepExecuted: step.StepNumber,
		ReplyID:      sendResult.MessageID,
	}
	if !sendResult.Success {
		result.Error = sendResult.Error
	}
	return result
}

// dispatch resolves the connected account and adapter for the execution's
// platform. Both failure modes are step failures, not execution failures.
func (e *Engine) dispatch(execution *models.FlowExecution, step *models.FlowStep, original *models.Message) platforms.SendResult {
	var account models.Account
	if err := e.DB.Where("user_id = ? AND platform = ?", execution.UserID, execution.Platform).
		First(&account).Error; err != nil {
		return platforms.SendResult{Success: false, Error: "Account not found for platform"}
	}

	adapter, ok := e.Adapters.Get(execution.Platform)
	if !ok {
		return platforms.SendResult{Success: false, Error: "Unsupported platform: " + execution.Platform}
	}

	return adapter.Send(&account, execution, step, original)
}

// shouldExecuteStep evaluates the step's condition against the original
// inbound message. A missing original message leaves the conditions
// permissive, matching the stored-record contract for deleted messages.
func (e *Engine) shouldExecuteStep(step *models.FlowStep, execution *models.FlowExecution, original *models.Message) bool {
	switch step.Condition {
	case models.ConditionAlways:
		return true
	case models.ConditionContainsKeyword:
		if original == nil || step.ConditionValue == "" {
			return true
		}
		return strings.Contains(strings.ToLower(original.Content), strings.ToLower(step.ConditionValue))
	case models.ConditionSenderBased:
		if step.ConditionValue == "" {
			return true
		}
		return execution.SenderID == step.ConditionValue
	case models.ConditionTimeBased:
		if step.ConditionValue == "" {
			return true
		}
		if !strings.Contains(step.ConditionValue, "-") {
			return true
		}
		return insideDailyRange(e.now(), step.ConditionValue)
	}
	return false
}

func (e *Engine) complete(execution *models.FlowExecution) {
	execution.Status = models.ExecutionStatusCompleted
	if err := e.DB.Save(execution).Error; err != nil {
		e.Logger.Printf("Error completing execution %d: %v", execution.ID, err)
	}
}

func (e *Engine) release(execution *models.FlowExecution) {
	execution.Status = models.ExecutionStatusActive
	if err := e.DB.Save(execution).Error; err != nil {
		e.Logger.Printf("Error releasing execution %d: %v", execution.ID, err)
	}
}

// nextStepNumber applies the explicit successor when present, falling back
// to the next sequential number.
func nextStepNumber(step *models.FlowStep, current int) int {
	if step.NextStep != 0 {
		return step.NextStep
	}
	return current + 1
}
