// Package automation is the auto-reply execution engine: it decides which
// flows fire for an inbound message, creates execution records gated by a
// per-sender rate limit, and steps due executions through their timed and
// conditional reply actions.
package automation

import (
	"log"
	"time"

	"socialreply/platforms"

	"gorm.io/gorm"
)

type Engine struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Adapters *platforms.Registry

	// Injectable clock for timing-sensitive tests
	nowFunc func() time.Time
}

func NewEngine(db *gorm.DB, logger *log.Logger, adapters *platforms.Registry) *Engine {
	return &Engine{
		DB:       db,
		Logger:   logger,
		Adapters: adapters,
		nowFunc:  time.Now,
	}
}

func (e *Engine) now() time.Time {
	return e.nowFunc()
}
