// Package platforms contains the outbound reply adapters. Each adapter
// knows how one platform resolves "the conversation to reply into" and how
// to attach images; the execution engine only sees the Adapter interface.
package platforms

import (
	"net/http"
	"time"

	"socialreply/models"
)

// SendResult is the outcome of one delivery attempt. Adapters convert every
// platform and network error into a failed result; Send never propagates an
// error across the component boundary.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Adapter delivers a single reply on one platform. The original inbound
// message is passed in so adapters can resolve conversation identifiers
// without touching the database.
type Adapter interface {
	Send(account *models.Account, execution *models.FlowExecution, step *models.FlowStep, original *models.Message) SendResult
}

// Registry maps platform names to their adapter. Adding a platform means
// registering one adapter, not editing a dispatch chain.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

func (r *Registry) Register(platform string, a Adapter) {
	r.adapters[platform] = a
}

func (r *Registry) Get(platform string) (Adapter, bool) {
	a, ok := r.adapters[platform]
	return a, ok
}

// Platforms returns the registered platform names.
func (r *Registry) Platforms() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry wires the adapters for every platform with a reply API.
// Instagram, TikTok and YouTube have no reply adapter; executions on those
// platforms record an unsupported-platform step failure.
func DefaultRegistry() *Registry {
	client := &http.Client{Timeout: 15 * time.Second}

	r := NewRegistry()
	r.Register(models.PlatformTwitter, NewTwitterAdapter(client))
	r.Register(models.PlatformFacebook, NewFacebookAdapter(client))
	r.Register(models.PlatformLinkedIn, NewLinkedInAdapter())
	r.Register(models.PlatformTelegram, NewTelegramAdapter(client))
	r.Register(models.PlatformWhatsApp, NewWhatsAppAdapter(client))
	return r
}

func failure(err error) SendResult {
	return SendResult{Success: false, Error: err.Error()}
}
