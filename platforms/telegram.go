package platforms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"socialreply/config"
	"socialreply/models"
)

// TelegramAdapter replies through the Bot API. For Telegram the stored
// sender id is the chat id, and the platform message id of the original
// message becomes reply_to_message_id.
type TelegramAdapter struct {
	BaseURL string
	Client  *http.Client

	// Overrides config when set; used by tests
	BotToken string
}

func NewTelegramAdapter(client *http.Client) *TelegramAdapter {
	return &TelegramAdapter{
		BaseURL: "https://api.telegram.org",
		Client:  client,
	}
}

func (t *TelegramAdapter) token() string {
	if t.BotToken != "" {
		return t.BotToken
	}
	return config.AppConfig.TelegramBotToken
}

func (t *TelegramAdapter) Send(account *models.Account, execution *models.FlowExecution, step *models.FlowStep, original *models.Message) SendResult {
	token := t.token()
	if token == "" {
		return failure(errors.New("Telegram bot token not configured"))
	}
	if original == nil {
		return failure(errors.New("Original message not found"))
	}

	payload := map[string]interface{}{
		"chat_id": original.SenderID,
		"text":    step.ReplyContent,
	}
	if original.PlatformMessageID != "" {
		payload["reply_to_message_id"] = original.PlatformMessageID
	}
	if step.ReplyImage != "" {
		// sendPhoto carries the reply text as a caption
		delete(payload, "text")
		payload["photo"] = step.ReplyImage
		payload["caption"] = step.ReplyContent
	}

	method := "sendMessage"
	if step.ReplyImage != "" {
		method = "sendPhoto"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failure(err)
	}

	resp, err := t.Client.Post(
		fmt.Sprintf("%s/bot%s/%s", t.BaseURL, token, method),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
		Result      struct {
			MessageID int64 `json:"message_id"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(err)
	}

	if resp.StatusCode != http.StatusOK || !result.OK {
		if result.Description == "" {
			result.Description = "Failed to send Telegram message"
		}
		return failure(errors.New(result.Description))
	}

	return SendResult{
		Success:   true,
		MessageID: fmt.Sprintf("%d", result.Result.MessageID),
	}
}
