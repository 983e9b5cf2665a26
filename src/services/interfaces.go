package services

import (
	"errors"

	"github.com/username/mapletax/backend/src/models"
)

var (
	ErrFilingNotFound      = errors.New("filing not found")
	ErrFilingSubmitted     = errors.New("filing already submitted")
	ErrValidationFailed    = errors.New("filing failed partner validation")
	ErrInvalidRecord       = errors.New("invalid record payload")
)

// FilingService owns filing persistence and the cached derived views
// (summary, suggestions). One filing exists per user per tax year.
type FilingService interface {
	GetOrCreateFiling(userID int64, taxYear int) (*models.Filing, error)
	UpdatePersonalInfo(userID int64, taxYear int, info models.PersonalInfo) (*models.Filing, error)
	UpdateDeductionFields(userID int64, taxYear int, fields models.DeductionFields) (*models.Filing, error)
	AddRecord(userID int64, taxYear int, list models.RecordList, payload []byte) (*models.Filing, error)
	UpdateRecord(userID int64, taxYear int, list models.RecordList, recordID string, payload []byte) (*models.Filing, error)
	RemoveRecord(userID int64, taxYear int, list models.RecordList, recordID string) (*models.Filing, error)
	SaveFiling(filing *models.Filing) error

	CalculateSummary(userID int64, taxYear int) (*models.TaxSummary, error)
	GetSuggestions(userID int64, taxYear int) ([]models.Suggestion, error)
	CrossCheckDocument(userID int64, taxYear int, doc models.ExtractedDocumentData) (*models.ValidationResult, error)
	ValidateAllDocuments(userID int64, taxYear int, docs []models.ExtractedDocumentData) ([]models.Suggestion, error)

	InvalidateUserCache(userID int64)
}

// SubmissionService orchestrates transform, partner validation, submission
// and the confirmation email.
type SubmissionService interface {
	SubmitFiling(userID int64, taxYear int) (*models.SubmissionResponse, error)
	CheckStatus(confirmationNumber string) (*models.StatusResponse, error)
}

// EmailService sends transactional mail. The provider is selected by
// configuration (mailgun, smtp or mock).
type EmailService interface {
	SendSubmissionConfirmation(toEmail, firstName, confirmationNumber string, taxYear int, refundOrOwing float64) error
}
