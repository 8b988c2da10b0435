package platforms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"socialreply/models"
)

// TwitterAdapter sends a direct message back to the original sender through
// the v2 API.
type TwitterAdapter struct {
	BaseURL string
	Client  *http.Client
}

func NewTwitterAdapter(client *http.Client) *TwitterAdapter {
	return &TwitterAdapter{
		BaseURL: "https://api.twitter.com",
		Client:  client,
	}
}

func (t *TwitterAdapter) Send(account *models.Account, execution *models.FlowExecution, step *models.FlowStep, original *models.Message) SendResult {
	if account.AccessToken == "" {
		return failure(errors.New("Twitter account not properly configured"))
	}
	if original == nil {
		return failure(errors.New("Original message not found"))
	}

	body, err := json.Marshal(map[string]string{
		"text": step.ReplyContent,
	})
	if err != nil {
		return failure(err)
	}

	url := fmt.Sprintf("%s/2/dm_conversations/with/%s/messages",
		t.BaseURL, original.SenderID)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(err)
	}
	req.Header.Set("Authorization", "Bearer "+account.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	var result struct {
		Data struct {
			DMEventID string `json:"dm_event_id"`
		} `json:"data"`
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		if result.Detail != "" {
			return failure(errors.New(result.Detail))
		}
		return failure(errors.New("Failed to send Twitter direct message"))
	}

	return SendResult{Success: true, MessageID: result.Data.DMEventID}
}
