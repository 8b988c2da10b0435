package controller

import (
	"log"
	"time"

	"socialreply/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{DB: db, Logger: logger}
}

type DashboardStats struct {
	TotalFlows       int64 `json:"total_flows"`
	ActiveFlows      int64 `json:"active_flows"`
	ConnectedAccounts int64 `json:"connected_accounts"`
	UnreadMessages   int64 `json:"unread_messages"`
	ActiveExecutions int64 `json:"active_executions"`
	RepliesToday     int64 `json:"replies_today"`
	RepliesTotal     int64 `json:"replies_total"`
}

// GetStats aggregates the headline numbers for the dashboard
func (dc *DashboardController) GetStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var stats DashboardStats

	if err := dc.DB.Model(&models.AutoReplyFlow{}).
		Where("user_id = ?", user.ID).Count(&stats.TotalFlows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}
	dc.DB.Model(&models.AutoReplyFlow{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).Count(&stats.ActiveFlows)
	dc.DB.Model(&models.Account{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).Count(&stats.ConnectedAccounts)
	dc.DB.Model(&models.Message{}).
		Where("user_id = ? AND is_read = ? AND is_archived = ?", user.ID, false, false).
		Count(&stats.UnreadMessages)
	dc.DB.Model(&models.FlowExecution{}).
		Where("user_id = ? AND status IN ?", user.ID,
			[]string{models.ExecutionStatusActive, models.ExecutionStatusProcessing}).
		Count(&stats.ActiveExecutions)

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	dc.DB.Model(&models.FlowExecution{}).
		Where("user_id = ? AND last_activity >= ?", user.ID, startOfDay).
		Select("COALESCE(SUM(total_replies), 0)").Scan(&stats.RepliesToday)
	dc.DB.Model(&models.FlowExecution{}).
		Where("user_id = ?", user.ID).
		Select("COALESCE(SUM(total_replies), 0)").Scan(&stats.RepliesTotal)

	return c.JSON(stats)
}
