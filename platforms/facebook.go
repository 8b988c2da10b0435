package platforms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"socialreply/models"
)

// FacebookAdapter replies into a Messenger conversation keyed by the
// platform-native id of the original inbound message.
type FacebookAdapter struct {
	BaseURL string
	Client  *http.Client
}

func NewFacebookAdapter(client *http.Client) *FacebookAdapter {
	return &FacebookAdapter{
		BaseURL: "https://graph.facebook.com/v18.0",
		Client:  client,
	}
}

func (f *FacebookAdapter) Send(account *models.Account, execution *models.FlowExecution, step *models.FlowStep, original *models.Message) SendResult {
	if account.AccessToken == "" {
		return failure(errors.New("Facebook account not properly configured"))
	}
	if original == nil {
		return failure(errors.New("Original message not found"))
	}

	payload := map[string]interface{}{
		"message": step.ReplyContent,
	}
	if step.ReplyImage != "" {
		payload["attachment"] = map[string]interface{}{
			"type": "image",
			"payload": map[string]string{
				"url": step.ReplyImage,
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failure(err)
	}

	url := fmt.Sprintf("%s/%s/messages?access_token=%s",
		f.BaseURL, original.PlatformMessageID, account.AccessToken)

	resp, err := f.Client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	var result struct {
		ID    string `json:"id"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(err)
	}

	if resp.StatusCode != http.StatusOK || result.Error != nil {
		if result.Error != nil && result.Error.Message != "" {
			return failure(errors.New(result.Error.Message))
		}
		return failure(errors.New("Failed to send Facebook message"))
	}

	return SendResult{Success: true, MessageID: result.ID}
}
