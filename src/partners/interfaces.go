package partners

import (
	"errors"
	"time"

	"github.com/username/mapletax/backend/src/models"
)

// FilingProvider is the contract an electronic-filing partner exposes. The
// backend ships only a mocked implementation; the real protocol is out of
// scope.
type FilingProvider interface {
	ValidateFiling(req models.SubmissionRequest) (*models.ValidationResponse, error)
	SubmitFiling(req models.SubmissionRequest) (*models.SubmissionResponse, error)
	CheckStatus(confirmationNumber string) (*models.StatusResponse, error)
}

// SubmissionRecord is what a provider persists per accepted submission.
type SubmissionRecord struct {
	ConfirmationNumber string                   `json:"confirmationNumber"`
	Request            models.SubmissionRequest `json:"request"`
	Status             string                   `json:"status"`
	SubmittedAt        time.Time                `json:"submittedAt"`
	LastUpdated        time.Time                `json:"lastUpdated"`
}

// SubmissionStore abstracts the provider's submission state so it is owned
// and injected by the caller instead of living in package globals.
type SubmissionStore interface {
	Save(rec SubmissionRecord) error
	Get(confirmationNumber string) (*SubmissionRecord, error)
	UpdateStatus(confirmationNumber, status string) error
}

var ErrSubmissionNotFound = errors.New("submission not found")

// Submission status values reported by providers.
const (
	StatusReceived   = "received"
	StatusAccepted   = "accepted"
	StatusProcessing = "processing"
	StatusRejected   = "rejected"
)
