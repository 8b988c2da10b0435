package automation

import (
	"sync"
	"testing"

	"socialreply/models"
)

func TestClaim_OnlyOneWinner(t *testing.T) {
	db := testDB(t)
	engine, _ := testEngine(t, db)
	user := createUser(t, db)
	createAccount(t, db, user.ID, models.PlatformTelegram)

	flow := createFlow(t, db, twoStepFlow(user.ID))
	msg := createMessage(t, db, &models.Message{
		UserID: user.ID, Platform: models.PlatformTelegram, Content: "hello",
	})
	execution := seedExecution(t, db, flow, msg, 1)

	const claimers = 8
	var wg sync.WaitGroup
	wins := make(chan bool, claimers)

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := *execution
			if engine.claim(&local) {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Errorf("Claim winners = %d, want exactly 1", won)
	}

	reloaded := reloadExecution(t, db, execution.ID)
	if reloaded.Status != models.ExecutionStatusProcessing {
		t.Errorf("Status = %q, want %q", reloaded.Status, models.ExecutionStatusProcessing)
	}
}

func TestTick_ClaimedExecutionIsNotDue(t *testing.T) {
	db := testDB(t)
	engine, fake := testEngine(t, db)
	user := createUser(t, db)
	createAccount(t, db, user.ID, models.PlatformTelegram)

	flow := createFlow(t, db, twoStepFlow(user.ID))
	msg := createMessage(t, db, &models.Message{
		UserID: user.ID, Platform: models.PlatformTelegram, Content: "hello",
	})
	execution := seedExecution(t, db, flow, msg, 1)

	// Simulate another dispatcher holding the claim
	db.Model(&models.FlowExecution{}).
		Where("id = ?", execution.ID).
		Update("status", models.ExecutionStatusProcessing)

	results := engine.Tick(nil)
	if len(results) != 0 {
		t.Fatalf("Expected no results while claimed, got %+v", results)
	}
	if fake.sendCount() != 0 {
		t.Errorf("Send count = %d, want 0", fake.sendCount())
	}
}

// Two back-to-back dispatch passes over the same due set must send each
// step exactly once.
func TestTick_RepeatedTicksSendStepOnce(t *testing.T) {
	db := testDB(t)
	engine, fake := testEngine(t, db)
	user := createUser(t, db)
	createAccount(t, db, user.ID, models.PlatformTelegram)

	flow := createFlow(t, db, &models.AutoReplyFlow{
		UserID:   user.ID,
		Platform: models.PlatformTelegram,
		IsActive: true,
		FlowSteps: []models.FlowStep{
			{StepNumber: 1, StepType: models.StepTypeImmediate, ReplyContent: "Only once", IsEndStep: true},
		},
	})
	msg := createMessage(t, db, &models.Message{
		UserID: user.ID, Platform: models.PlatformTelegram, Content: "hello",
	})
	seedExecution(t, db, flow, msg, 1)

	engine.Tick(nil)
	engine.Tick(nil)

	if fake.sendCount() != 1 {
		t.Errorf("Send count = %d, want 1", fake.sendCount())
	}
}
