package services

import (
	"fmt"
	"time"

	"github.com/username/mapletax/backend/src/logger"
	"github.com/username/mapletax/backend/src/models"
	"github.com/username/mapletax/backend/src/partners"
)

type submissionServiceImpl struct {
	filingService FilingService
	provider      partners.FilingProvider
	emailService  EmailService
}

func NewSubmissionService(
	filingService FilingService,
	provider partners.FilingProvider,
	emailService EmailService,
) SubmissionService {
	return &submissionServiceImpl{
		filingService: filingService,
		provider:      provider,
		emailService:  emailService,
	}
}

// SubmitFiling runs the full submission flow: compute summary, transform,
// validate with the partner, submit, persist the confirmation and notify the
// user. A filing transitions to submitted exactly once.
func (s *submissionServiceImpl) SubmitFiling(userID int64, taxYear int) (*models.SubmissionResponse, error) {
	startTime := time.Now()
	logger.L.Info("SubmitFiling START", "userID", userID, "taxYear", taxYear)

	filing, err := s.filingService.GetOrCreateFiling(userID, taxYear)
	if err != nil {
		return nil, err
	}
	if filing.Status == models.StatusSubmitted || filing.Status == models.StatusAccepted {
		return nil, ErrFilingSubmitted
	}

	summary, err := s.filingService.CalculateSummary(userID, taxYear)
	if err != nil {
		return nil, err
	}

	request := TransformFilingToSubmissionRequest(filing, *summary)

	validationResp, err := s.provider.ValidateFiling(request)
	if err != nil {
		return nil, fmt.Errorf("error validating filing with partner: %w", err)
	}
	if !validationResp.Valid {
		logger.L.Warn("Filing failed partner validation",
			"userID", userID, "taxYear", taxYear, "errors", validationResp.Errors)
		return &models.SubmissionResponse{
			Success: false,
			Status:  partners.StatusRejected,
			Errors:  validationResp.Errors,
		}, ErrValidationFailed
	}

	submitResp, err := s.provider.SubmitFiling(request)
	if err != nil {
		return nil, fmt.Errorf("error submitting filing to partner: %w", err)
	}
	if !submitResp.Success {
		return submitResp, ErrValidationFailed
	}

	filing.Summary = summary
	filing.ConfirmationNumber = submitResp.ConfirmationNumber
	filing.Status = models.StatusSubmitted
	if submitResp.Status == partners.StatusAccepted {
		filing.Status = models.StatusAccepted
	}
	if err := s.filingService.SaveFiling(filing); err != nil {
		return nil, fmt.Errorf("error persisting submitted filing: %w", err)
	}

	// Confirmation mail is best effort; the submission already succeeded.
	if filing.PersonalInfo.Email != "" {
		if mailErr := s.emailService.SendSubmissionConfirmation(
			filing.PersonalInfo.Email, filing.PersonalInfo.FirstName,
			submitResp.ConfirmationNumber, taxYear, summary.RefundOrOwing); mailErr != nil {
			logger.L.Error("Failed to send submission confirmation email",
				"userID", userID, "error", mailErr)
		}
	}

	logger.L.Info("SubmitFiling END", "userID", userID, "taxYear", taxYear,
		"confirmationNumber", submitResp.ConfirmationNumber, "duration", time.Since(startTime))
	return submitResp, nil
}

func (s *submissionServiceImpl) CheckStatus(confirmationNumber string) (*models.StatusResponse, error) {
	return s.provider.CheckStatus(confirmationNumber)
}
