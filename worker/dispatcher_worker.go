package worker

import (
	"context"
	"log"
	"time"

	"socialreply/automation"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// DispatcherWorker periodically drives the execution engine over due
// auto-reply executions, replacing the poll-only endpoint as the delivery
// mechanism. The manual execute endpoint remains available for ad-hoc runs.
type DispatcherWorker struct {
	DB       *gorm.DB
	Engine   *automation.Engine
	Logger   *log.Logger
	Interval time.Duration
}

func NewDispatcherWorker(db *gorm.DB, engine *automation.Engine, logger *log.Logger, interval time.Duration) *DispatcherWorker {
	return &DispatcherWorker{
		DB:       db,
		Engine:   engine,
		Logger:   logger,
		Interval: interval,
	}
}

func (dw *DispatcherWorker) Start(ctx context.Context) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		dw.Logger.Fatalf("Failed to create scheduler: %v", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(dw.Interval),
		gocron.NewTask(dw.runOnce),
		gocron.WithName("auto-reply-dispatch"),
		// A slow pass must not overlap the next one
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		dw.Logger.Fatalf("Failed to schedule dispatch job: %v", err)
	}

	scheduler.Start()
	dw.Logger.Printf("Dispatcher worker started (every %s)", dw.Interval)

	<-ctx.Done()
	dw.Logger.Println("Dispatcher worker shutting down...")
	if err := scheduler.Shutdown(); err != nil {
		dw.Logger.Printf("Scheduler shutdown error: %v", err)
	}
}

func (dw *DispatcherWorker) runOnce() {
	results := dw.Engine.Tick(nil)
	if len(results) == 0 {
		return
	}

	var sent, failed, skipped, completed int
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Completed:
			completed++
		case r.Success:
			sent++
		default:
			failed++
		}
	}

	dw.Logger.Printf("Dispatch pass: %d processed (%d sent, %d failed, %d skipped, %d completed)",
		len(results), sent, failed, skipped, completed)
}
