package automation

import (
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"socialreply/models"
	"socialreply/platforms"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens an isolated in-memory database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database failed: %v", err)
	}

	// A single connection keeps every session on the same in-memory store
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Message{},
		&models.AutoReplyFlow{},
		&models.FlowExecution{},
	); err != nil {
		t.Fatalf("migrating test database failed: %v", err)
	}

	return db
}

// fakeAdapter records every send and returns a scripted result.
type fakeAdapter struct {
	mu      sync.Mutex
	calls   []fakeCall
	fail    bool
	failMsg string
}

type fakeCall struct {
	Platform     string
	SenderID     string
	ReplyContent string
	StepNumber   int
}

func (f *fakeAdapter) Send(account *models.Account, execution *models.FlowExecution, step *models.FlowStep, original *models.Message) platforms.SendResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fakeCall{
		Platform:     execution.Platform,
		SenderID:     execution.SenderID,
		ReplyContent: step.ReplyContent,
		StepNumber:   step.StepNumber,
	})
	if f.fail {
		msg := f.failMsg
		if msg == "" {
			msg = "send failed"
		}
		return platforms.SendResult{Success: false, Error: msg}
	}
	return platforms.SendResult{Success: true, MessageID: "fake_reply_1"}
}

func (f *fakeAdapter) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// testEngine wires an engine to a fake adapter registered for every
// platform, with a controllable clock.
func testEngine(t *testing.T, db *gorm.DB) (*Engine, *fakeAdapter) {
	t.Helper()

	fake := &fakeAdapter{}
	registry := platforms.NewRegistry()
	for _, platform := range models.AccountPlatforms {
		registry.Register(platform, fake)
	}

	engine := NewEngine(db, log.New(io.Discard, "", 0), registry)
	return engine, fake
}

func setClock(e *Engine, at time.Time) {
	e.nowFunc = func() time.Time { return at }
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        "test@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("creating user failed: %v", err)
	}
	return user
}

func createAccount(t *testing.T, db *gorm.DB, userID uint, platform string) *models.Account {
	t.Helper()
	account := &models.Account{
		UserID:      userID,
		Platform:    platform,
		AccessToken: "token",
		DisplayName: "Test Account",
		IsActive:    true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("creating account failed: %v", err)
	}
	return account
}

func createFlow(t *testing.T, db *gorm.DB, flow *models.AutoReplyFlow) *models.AutoReplyFlow {
	t.Helper()
	flow.ApplyDefaults()
	if flow.Name == "" {
		flow.Name = "Test Flow"
	}
	if err := db.Create(flow).Error; err != nil {
		t.Fatalf("creating flow failed: %v", err)
	}
	return flow
}

func createMessage(t *testing.T, db *gorm.DB, msg *models.Message) *models.Message {
	t.Helper()
	if msg.PlatformMessageID == "" {
		msg.PlatformMessageID = "pm_" + time.Now().Format("150405.000000000")
	}
	if msg.MessageType == "" {
		msg.MessageType = models.MessageTypeDirect
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now()
	}
	if msg.SenderID == "" {
		msg.SenderID = "sender-1"
	}
	if msg.SenderName == "" {
		msg.SenderName = "Sender One"
	}
	if msg.Content == "" {
		msg.Content = "hello"
	}
	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("creating message failed: %v", err)
	}
	return msg
}

func reloadExecution(t *testing.T, db *gorm.DB, id uint) *models.FlowExecution {
	t.Helper()
	var execution models.FlowExecution
	if err := db.First(&execution, id).Error; err != nil {
		t.Fatalf("reloading execution %d failed: %v", id, err)
	}
	return &execution
}
