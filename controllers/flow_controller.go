package controller

import (
	"log"
	"time"

	"socialreply/models"
	"socialreply/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FlowController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewFlowController(db *gorm.DB, logger *log.Logger) *FlowController {
	return &FlowController{
		DB:     db,
		Logger: logger,
	}
}

type FlowRequest struct {
	Name              string                  `json:"name" validate:"required,max=200"`
	Description       string                  `json:"description" validate:"omitempty,max=1000"`
	Platform          string                  `json:"platform" validate:"required"`
	TriggerKeywords   []string                `json:"trigger_keywords"`
	TriggerConditions models.TriggerCondition `json:"trigger_conditions"`
	FlowSteps         []models.FlowStep       `json:"flow_steps" validate:"required,min=1,dive"`
	Settings          models.FlowSettings     `json:"settings"`
}

func (fc *FlowController) validateFlowRequest(req *FlowRequest) string {
	if err := utils.ValidateStruct(req); err != nil {
		return err.Error()
	}
	if req.Platform != models.PlatformAll && !models.IsValidAccountPlatform(req.Platform) {
		return "Unknown platform: " + req.Platform
	}
	seen := make(map[int]bool)
	for _, step := range req.FlowSteps {
		if seen[step.StepNumber] {
			return "Duplicate step number in flow steps"
		}
		seen[step.StepNumber] = true
	}
	return ""
}

// GetFlows returns all auto reply flows for the user, newest first
func (fc *FlowController) GetFlows(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var flows []models.AutoReplyFlow
	if err := fc.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&flows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch auto reply flows",
		})
	}

	return c.JSON(flows)
}

// GetFlow returns a single auto reply flow
func (fc *FlowController) GetFlow(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var flow models.AutoReplyFlow
	if err := fc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&flow).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Auto reply flow not found",
		})
	}

	return c.JSON(flow)
}

// CreateFlow creates a new auto reply flow
func (fc *FlowController) CreateFlow(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req FlowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if msg := fc.validateFlowRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msg,
		})
	}

	flow := models.AutoReplyFlow{
		UserID:            user.ID,
		Name:              req.Name,
		Description:       req.Description,
		Platform:          req.Platform,
		IsActive:          true,
		TriggerKeywords:   req.TriggerKeywords,
		TriggerConditions: req.TriggerConditions,
		FlowSteps:         req.FlowSteps,
		Settings:          req.Settings,
	}
	flow.ApplyDefaults()

	if err := fc.DB.Create(&flow).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create auto reply flow",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(flow)
}

// UpdateFlow replaces the editable parts of a flow
func (fc *FlowController) UpdateFlow(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var flow models.AutoReplyFlow
	if err := fc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&flow).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Auto reply flow not found",
		})
	}

	var req FlowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if msg := fc.validateFlowRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msg,
		})
	}

	flow.Name = req.Name
	flow.Description = req.Description
	flow.Platform = req.Platform
	flow.TriggerKeywords = req.TriggerKeywords
	flow.TriggerConditions = req.TriggerConditions
	flow.FlowSteps = req.FlowSteps
	flow.Settings = req.Settings
	flow.ApplyDefaults()

	if err := fc.DB.Save(&flow).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update auto reply flow",
		})
	}

	return c.JSON(flow)
}

// DeleteFlow removes a flow and cascades to its executions
func (fc *FlowController) DeleteFlow(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var flow models.AutoReplyFlow
	if err := fc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&flow).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Auto reply flow not found",
		})
	}

	err := fc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flow_id = ?", flow.ID).Delete(&models.FlowExecution{}).Error; err != nil {
			return err
		}
		return tx.Delete(&flow).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete auto reply flow",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Auto reply flow deleted successfully",
	})
}

// ToggleFlow flips the active gate
func (fc *FlowController) ToggleFlow(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var flow models.AutoReplyFlow
	if err := fc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&flow).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Auto reply flow not found",
		})
	}

	if err := fc.DB.Model(&flow).Update("is_active", req.IsActive).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to toggle auto reply flow",
		})
	}

	flow.IsActive = req.IsActive
	return c.JSON(flow)
}

// GetFlowExecutions lists the most recent executions of a flow
func (fc *FlowController) GetFlowExecutions(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var executions []models.FlowExecution
	if err := fc.DB.Where("flow_id = ? AND user_id = ?", c.Params("id"), user.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&executions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch flow executions",
		})
	}

	return c.JSON(executions)
}

// GetFlowStats computes aggregate statistics by scanning a flow's executions
func (fc *FlowController) GetFlowStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var flow models.AutoReplyFlow
	if err := fc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&flow).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Auto reply flow not found",
		})
	}

	var executions []models.FlowExecution
	if err := fc.DB.Where("flow_id = ?", flow.ID).
		Order("created_at DESC").
		Find(&executions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch flow statistics",
		})
	}

	stats := fiber.Map{
		"total_executions":     len(executions),
		"active_executions":    0,
		"completed_executions": 0,
		"failed_executions":    0,
		"total_replies":        0,
	}

	var active, completed, failed, replies int
	var lastExecution *time.Time
	for i := range executions {
		switch executions[i].Status {
		case models.ExecutionStatusActive, models.ExecutionStatusProcessing:
			active++
		case models.ExecutionStatusCompleted:
			completed++
		case models.ExecutionStatusFailed:
			failed++
		}
		replies += executions[i].TotalReplies
	}
	if len(executions) > 0 {
		lastExecution = &executions[0].CreatedAt
	}

	stats["active_executions"] = active
	stats["completed_executions"] = completed
	stats["failed_executions"] = failed
	stats["total_replies"] = replies
	stats["last_execution"] = lastExecution

	return c.JSON(stats)
}

// TestFlow simulates an execution without sending anything
func (fc *FlowController) TestFlow(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req struct {
		TestMessage string `json:"test_message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var flow models.AutoReplyFlow
	if err := fc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&flow).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Auto reply flow not found",
		})
	}

	type stepResult struct {
		StepNumber     int    `json:"step_number"`
		StepType       string `json:"step_type"`
		Condition      string `json:"condition"`
		ConditionValue string `json:"condition_value,omitempty"`
		ReplyContent   string `json:"reply_content"`
		WouldExecute   bool   `json:"would_execute"`
		Delay          int    `json:"delay"`
	}

	steps := make([]stepResult, 0, len(flow.FlowSteps))
	for _, step := range flow.FlowSteps {
		wouldExecute := true
		if step.Condition == models.ConditionContainsKeyword && step.ConditionValue != "" {
			wouldExecute = containsFold(req.TestMessage, step.ConditionValue)
		}
		steps = append(steps, stepResult{
			StepNumber:     step.StepNumber,
			StepType:       step.StepType,
			Condition:      step.Condition,
			ConditionValue: step.ConditionValue,
			ReplyContent:   step.ReplyContent,
			WouldExecute:   wouldExecute,
			Delay:          step.Delay,
		})
	}

	return c.JSON(fiber.Map{
		"flow_id":      flow.ID,
		"flow_name":    flow.Name,
		"test_message": req.TestMessage,
		"steps":        steps,
	})
}
