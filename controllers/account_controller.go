package controller

import (
	"log"
	"time"

	"socialreply/models"
	"socialreply/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AccountController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAccountController(db *gorm.DB, logger *log.Logger) *AccountController {
	return &AccountController{DB: db, Logger: logger}
}

type ConnectAccountRequest struct {
	Platform     string     `json:"platform" validate:"required"`
	AccessToken  string     `json:"access_token" validate:"required"`
	AccessSecret string     `json:"access_secret"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at"`
	PageID       string     `json:"page_id"`
	PlatformID   string     `json:"platform_id"`
	ChannelID    string     `json:"channel_id"`
	DisplayName  string     `json:"display_name" validate:"required"`
	WebhookURL   string     `json:"webhook_url"`
	IsQuickSetup bool       `json:"is_quick_setup"`
}

// ConnectAccount stores platform credentials for the user. Reconnecting an
// already connected platform replaces the stored credentials.
func (ac *AccountController) ConnectAccount(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req ConnectAccountRequest
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

	if !models.IsValidAccountPlatform(req.Platform) || req.Platform == models.PlatformAll {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform: " + req.Platform,
		})
	}

	var account models.Account
	err := ac.DB.Where("user_id = ? AND platform = ?", user.ID, req.Platform).First(&account).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to look up account",
		})
	}

	account.UserID = user.ID
	account.Platform = req.Platform
	account.AccessToken = req.AccessToken
	account.AccessSecret = req.AccessSecret
	account.RefreshToken = req.RefreshToken
	account.ExpiresAt = req.ExpiresAt
	account.PageID = req.PageID
	account.PlatformID = req.PlatformID
	account.ChannelID = req.ChannelID
	account.DisplayName = req.DisplayName
	account.WebhookURL = req.WebhookURL
	account.IsQuickSetup = req.IsQuickSetup
	account.IsActive = true

	if err := ac.DB.Save(&account).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save account",
		})
	}

	ac.Logger.Printf("✅ Connected %s account for user %d", account.Platform, user.ID)
	return c.Status(fiber.StatusCreated).JSON(account)
}

// GetAccounts lists the user's connected accounts
func (ac *AccountController) GetAccounts(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var accounts []models.Account
	if err := ac.DB.Where("user_id = ?", user.ID).Order("platform ASC").Find(&accounts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch accounts",
		})
	}

	return c.JSON(accounts)
}

// DisconnectAccount removes a connected account
func (ac *AccountController) DisconnectAccount(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	res := ac.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).Delete(&models.Account{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to disconnect account",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
