package platforms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"socialreply/models"

	"github.com/google/uuid"
)

// WhatsAppAdapter replies through the Cloud API. The stored sender id is the
// recipient phone number; account.PageID is the business phone number id.
type WhatsAppAdapter struct {
	BaseURL string
	Client  *http.Client
}

func NewWhatsAppAdapter(client *http.Client) *WhatsAppAdapter {
	return &WhatsAppAdapter{
		BaseURL: "https://graph.facebook.com/v18.0",
		Client:  client,
	}
}

func (w *WhatsAppAdapter) Send(account *models.Account, execution *models.FlowExecution, step *models.FlowStep, original *models.Message) SendResult {
	if account.AccessToken == "" || account.PageID == "" {
		return failure(errors.New("WhatsApp account not properly configured"))
	}
	if original == nil {
		return failure(errors.New("Original message not found"))
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                original.SenderID,
		"type":              "text",
		"text":              map[string]string{"body": step.ReplyContent},
	}
	if step.ReplyImage != "" {
		payload["type"] = "image"
		payload["image"] = map[string]string{
			"link":    step.ReplyImage,
			"caption": step.ReplyContent,
		}
		delete(payload, "text")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failure(err)
	}

	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/%s/messages", w.BaseURL, account.PageID),
		bytes.NewReader(body))
	if err != nil {
		return failure(err)
	}
	req.Header.Set("Authorization", "Bearer "+account.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	var result struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error != nil && result.Error.Message != "" {
			return failure(errors.New(result.Error.Message))
		}
		return failure(errors.New("Failed to send WhatsApp message"))
	}

	messageID := "whatsapp_" + uuid.New().String()
	if len(result.Messages) > 0 && result.Messages[0].ID != "" {
		messageID = result.Messages[0].ID
	}

	return SendResult{Success: true, MessageID: messageID}
}
