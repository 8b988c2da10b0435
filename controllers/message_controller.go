package controller

import (
	"log"
	"strings"
	"time"

	"socialreply/automation"
	"socialreply/models"
	"socialreply/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MessageController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Engine *automation.Engine
}

func NewMessageController(db *gorm.DB, engine *automation.Engine, logger *log.Logger) *MessageController {
	return &MessageController{
		DB:     db,
		Logger: logger,
		Engine: engine,
	}
}

type IngestMessageRequest struct {
	Platform          string                     `json:"platform" validate:"required"`
	PlatformMessageID string                     `json:"platform_message_id" validate:"required"`
	SenderID          string                     `json:"sender_id" validate:"required"`
	SenderName        string                     `json:"sender_name" validate:"required"`
	SenderUsername    string                     `json:"sender_username"`
	Content           string                     `json:"content" validate:"required"`
	MessageType       string                     `json:"message_type" validate:"omitempty,oneof=direct_message mention comment reply"`
	ReceivedAt        *time.Time                 `json:"received_at"`
	Attachments       []models.MessageAttachment `json:"attachments"`
	ReplyToMessageID  string                     `json:"reply_to_message_id"`
	ThreadID          string                     `json:"thread_id"`
}

// IngestMessage persists an inbound message and immediately runs trigger
// evaluation against it. The webhook handlers and the manual reply paths
// both land here once they have a normalized payload.
func (mc *MessageController) IngestMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req IngestMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if !models.IsValidAccountPlatform(req.Platform) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform: " + req.Platform,
		})
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}
	messageType := req.MessageType
	if messageType == "" {
		messageType = models.MessageTypeDirect
	}

	message := models.Message{
		UserID:            user.ID,
		Platform:          req.Platform,
		PlatformMessageID: req.PlatformMessageID,
		SenderID:          req.SenderID,
		SenderName:        req.SenderName,
		SenderUsername:    req.SenderUsername,
		Content:           req.Content,
		MessageType:       messageType,
		ReceivedAt:        receivedAt,
		Attachments:       req.Attachments,
		ReplyToMessageID:  req.ReplyToMessageID,
		ThreadID:          req.ThreadID,
	}

	if err := mc.DB.Create(&message).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Message already ingested",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store message",
		})
	}

	// Auto replies fire on the ingest path; a failure here must not fail
	// the ingest itself
	triggered, err := mc.Engine.ProcessMessage(message.ID, user.ID)
	if err != nil {
		mc.Logger.Printf("Error processing auto reply for message %d: %v", message.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":         message,
		"triggered_flows": triggered,
	})
}

// GetMessages returns the inbox, filterable by platform and read state
func (mc *MessageController) GetMessages(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := mc.DB.Where("user_id = ? AND is_archived = ?", user.ID, false)
	if platform := c.Query("platform"); platform != "" {
		query = query.Where("platform = ?", platform)
	}
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var messages []models.Message
	if err := query.Order("received_at DESC").Limit(100).Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch messages",
		})
	}

	return c.JSON(messages)
}

// MarkMessageRead flags a message as read
func (mc *MessageController) MarkMessageRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	res := mc.DB.Model(&models.Message{}).
		Where("id = ? AND user_id = ?", c.Params("id"), user.ID).
		Update("is_read", true)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update message",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Message not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
