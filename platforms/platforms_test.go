package platforms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialreply/models"
)

func telegramFixtures() (*models.Account, *models.FlowExecution, *models.FlowStep, *models.Message) {
	account := &models.Account{
		Platform:    models.PlatformTelegram,
		AccessToken: "token",
	}
	execution := &models.FlowExecution{
		Platform: models.PlatformTelegram,
		SenderID: "chat-42",
	}
	step := &models.FlowStep{
		StepNumber:   1,
		StepType:     models.StepTypeImmediate,
		ReplyContent: "Hi there!",
	}
	original := &models.Message{
		Platform:          models.PlatformTelegram,
		PlatformMessageID: "777",
		SenderID:          "chat-42",
		Content:           "hello",
	}
	return account, execution, step, original
}

func TestTelegramAdapter_SendText(t *testing.T) {
	var gotPath string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decoding request body failed: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": map[string]interface{}{"message_id": 9001},
		})
	}))
	defer server.Close()

	adapter := NewTelegramAdapter(server.Client())
	adapter.BaseURL = server.URL
	adapter.BotToken = "bot-token"

	account, execution, step, original := telegramFixtures()
	result := adapter.Send(account, execution, step, original)

	if !result.Success {
		t.Fatalf("Send failed: %s", result.Error)
	}
	if result.MessageID != "9001" {
		t.Errorf("MessageID = %q, want %q", result.MessageID, "9001")
	}
	if gotPath != "/botbot-token/sendMessage" {
		t.Errorf("Path = %q, want %q", gotPath, "/botbot-token/sendMessage")
	}
	if gotPayload["chat_id"] != "chat-42" {
		t.Errorf("chat_id = %v, want chat-42", gotPayload["chat_id"])
	}
	if gotPayload["text"] != "Hi there!" {
		t.Errorf("text = %v, want reply content", gotPayload["text"])
	}
	if gotPayload["reply_to_message_id"] != "777" {
		t.Errorf("reply_to_message_id = %v, want 777", gotPayload["reply_to_message_id"])
	}
}

func TestTelegramAdapter_SendPhoto(t *testing.T) {
	var gotPath string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": map[string]interface{}{"message_id": 9002},
		})
	}))
	defer server.Close()

	adapter := NewTelegramAdapter(server.Client())
	adapter.BaseURL = server.URL
	adapter.BotToken = "bot-token"

	account, execution, step, original := telegramFixtures()
	step.ReplyImage = "https://example.com/pic.png"
	result := adapter.Send(account, execution, step, original)

	if !result.Success {
		t.Fatalf("Send failed: %s", result.Error)
	}
	if gotPath != "/botbot-token/sendPhoto" {
		t.Errorf("Path = %q, want sendPhoto", gotPath)
	}
	if gotPayload["photo"] != "https://example.com/pic.png" {
		t.Errorf("photo = %v, want image URL", gotPayload["photo"])
	}
	if gotPayload["caption"] != "Hi there!" {
		t.Errorf("caption = %v, want reply content", gotPayload["caption"])
	}
	if _, hasText := gotPayload["text"]; hasText {
		t.Error("text present on photo payload, want caption only")
	}
}

func TestTelegramAdapter_APIErrorIsFailedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":          false,
			"description": "Bad Request: chat not found",
		})
	}))
	defer server.Close()

	adapter := NewTelegramAdapter(server.Client())
	adapter.BaseURL = server.URL
	adapter.BotToken = "bot-token"

	account, execution, step, original := telegramFixtures()
	result := adapter.Send(account, execution, step, original)

	if result.Success {
		t.Fatal("Send succeeded on API error, want failure")
	}
	if result.Error != "Bad Request: chat not found" {
		t.Errorf("Error = %q, want API description", result.Error)
	}
}

func TestTelegramAdapter_MissingTokenAndMessage(t *testing.T) {
	adapter := NewTelegramAdapter(http.DefaultClient)
	account, execution, step, original := telegramFixtures()

	if result := adapter.Send(account, execution, step, original); result.Success {
		t.Error("Send succeeded without bot token, want failure")
	}

	adapter.BotToken = "bot-token"
	if result := adapter.Send(account, execution, step, nil); result.Success {
		t.Error("Send succeeded without original message, want failure")
	}
}

func TestWhatsAppAdapter_Send(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []map[string]string{{"id": "wamid.123"}},
		})
	}))
	defer server.Close()

	adapter := NewWhatsAppAdapter(server.Client())
	adapter.BaseURL = server.URL

	account := &models.Account{
		Platform:    models.PlatformWhatsApp,
		AccessToken: "wa-token",
		PageID:      "15551234567",
	}
	execution := &models.FlowExecution{Platform: models.PlatformWhatsApp, SenderID: "15557654321"}
	step := &models.FlowStep{StepNumber: 1, StepType: models.StepTypeImmediate, ReplyContent: "Hello!"}
	original := &models.Message{SenderID: "15557654321", PlatformMessageID: "wamid.orig"}

	result := adapter.Send(account, execution, step, original)

	if !result.Success {
		t.Fatalf("Send failed: %s", result.Error)
	}
	if result.MessageID != "wamid.123" {
		t.Errorf("MessageID = %q, want wamid.123", result.MessageID)
	}
	if gotPath != "/15551234567/messages" {
		t.Errorf("Path = %q, want business number route", gotPath)
	}
	if gotAuth != "Bearer wa-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotPayload["to"] != "15557654321" {
		t.Errorf("to = %v, want recipient number", gotPayload["to"])
	}
}

func TestWhatsAppAdapter_MisconfiguredAccount(t *testing.T) {
	adapter := NewWhatsAppAdapter(http.DefaultClient)

	account := &models.Account{Platform: models.PlatformWhatsApp}
	step := &models.FlowStep{ReplyContent: "Hello!"}
	original := &models.Message{SenderID: "15557654321"}

	result := adapter.Send(account, &models.FlowExecution{}, step, original)
	if result.Success {
		t.Fatal("Send succeeded with missing credentials, want failure")
	}
}

func TestLinkedInAdapter_AlwaysSucceeds(t *testing.T) {
	adapter := NewLinkedInAdapter()

	account := &models.Account{Platform: models.PlatformLinkedIn, AccessToken: "li-token"}
	result := adapter.Send(account, &models.FlowExecution{}, &models.FlowStep{ReplyContent: "Hi"}, nil)
	if !result.Success {
		t.Fatalf("Send failed: %s", result.Error)
	}
	if result.MessageID == "" {
		t.Error("MessageID is empty, want generated id")
	}

	if noToken := adapter.Send(&models.Account{}, &models.FlowExecution{}, &models.FlowStep{}, nil); noToken.Success {
		t.Error("Send succeeded without access token, want failure")
	}
}

func TestRegistry(t *testing.T) {
	registry := DefaultRegistry()

	for _, platform := range []string{
		models.PlatformTwitter, models.PlatformFacebook, models.PlatformLinkedIn,
		models.PlatformTelegram, models.PlatformWhatsApp,
	} {
		if _, ok := registry.Get(platform); !ok {
			t.Errorf("No adapter registered for %s", platform)
		}
	}

	for _, platform := range []string{
		models.PlatformInstagram, models.PlatformTikTok, models.PlatformYouTube,
	} {
		if _, ok := registry.Get(platform); ok {
			t.Errorf("Unexpected adapter registered for %s", platform)
		}
	}
}

// Adapters must convert transport errors into failed results rather than
// panicking or returning errors across the boundary.
func TestAdapters_NetworkErrorIsFailedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	telegram := NewTelegramAdapter(http.DefaultClient)
	telegram.BaseURL = server.URL
	telegram.BotToken = "bot-token"

	account, execution, step, original := telegramFixtures()
	if result := telegram.Send(account, execution, step, original); result.Success {
		t.Error("Telegram Send succeeded against closed server, want failure")
	}

	whatsapp := NewWhatsAppAdapter(http.DefaultClient)
	whatsapp.BaseURL = server.URL
	waAccount := &models.Account{AccessToken: "t", PageID: "1"}
	if result := whatsapp.Send(waAccount, execution, step, original); result.Success {
		t.Error("WhatsApp Send succeeded against closed server, want failure")
	}
}
