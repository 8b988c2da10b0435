package controller

import (
	"fmt"
	"log"

	"socialreply/automation"
	"socialreply/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProcessorController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Engine *automation.Engine
}

func NewProcessorController(db *gorm.DB, engine *automation.Engine, logger *log.Logger) *ProcessorController {
	return &ProcessorController{
		DB:     db,
		Logger: logger,
		Engine: engine,
	}
}

// ProcessMessage runs trigger evaluation for one stored inbound message
func (pc *ProcessorController) ProcessMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req struct {
		MessageID uint `json:"message_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil || req.MessageID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	triggered, err := pc.Engine.ProcessMessage(req.MessageID, user.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Message not found",
			})
		}
		pc.Logger.Printf("Error processing auto reply for message %d: %v", req.MessageID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process auto reply",
		})
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"triggered_flows": triggered,
		"message":         pluralize(len(triggered)),
	})
}

// ExecutePending drives one dispatch pass over the caller's due executions.
// The periodic worker does this on a schedule; the endpoint exists for
// manual runs and is rate limited.
func (pc *ProcessorController) ExecutePending(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	results := pc.Engine.Tick(&user.ID)

	return c.JSON(fiber.Map{
		"success":  true,
		"executed": len(results),
		"results":  results,
	})
}

func pluralize(n int) string {
	if n == 1 {
		return "Processed 1 auto reply flow"
	}
	return fmt.Sprintf("Processed %d auto reply flows", n)
}
