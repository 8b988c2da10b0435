package controller

import (
	"log"
	"time"

	"socialreply/config"
	"socialreply/models"

	"github.com/gofiber/websocket/v2"
)

// HandleExecutionProgressWS streams live status for a flow's executions.
// The client sends the flow ID once, then receives a snapshot every few
// seconds until every execution reaches a terminal state.
func HandleExecutionProgressWS(c *websocket.Conn) {
	defer c.Close()

	var input struct {
		FlowID uint   `json:"flowId"`
		Action string `json:"action"`
	}

	if err := c.ReadJSON(&input); err != nil {
		log.Printf("Error reading JSON: %v", err)
		return
	}

	if input.Action != "watch" {
		return
	}

	type snapshot struct {
		Active    int64  `json:"active"`
		Completed int64  `json:"completed"`
		Failed    int64  `json:"failed"`
		Replies   int64  `json:"replies"`
		Status    string `json:"status"`
	}

	for {
		var snap snapshot
		config.DB.Model(&models.FlowExecution{}).
			Where("flow_id = ? AND status IN ?", input.FlowID,
				[]string{models.ExecutionStatusActive, models.ExecutionStatusProcessing}).
			Count(&snap.Active)
		config.DB.Model(&models.FlowExecution{}).
			Where("flow_id = ? AND status = ?", input.FlowID, models.ExecutionStatusCompleted).
			Count(&snap.Completed)
		config.DB.Model(&models.FlowExecution{}).
			Where("flow_id = ? AND status = ?", input.FlowID, models.ExecutionStatusFailed).
			Count(&snap.Failed)
		config.DB.Model(&models.FlowExecution{}).
			Where("flow_id = ?", input.FlowID).
			Select("COALESCE(SUM(total_replies), 0)").Scan(&snap.Replies)

		snap.Status = "running"
		if snap.Active == 0 {
			snap.Status = "completed"
		}

		if err := c.WriteJSON(snap); err != nil {
			log.Printf("Error writing JSON: %v", err)
			return
		}

		if snap.Status == "completed" {
			return
		}
		time.Sleep(3 * time.Second)
	}
}
