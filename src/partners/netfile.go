package partners

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/username/mapletax/backend/src/logger"
	"github.com/username/mapletax/backend/src/models"
)

var sinPattern = regexp.MustCompile(`^\d{9}$`)

// NetfileProvider is a mocked electronic-filing partner. It applies a few
// deterministic validation rules and persists accepted submissions in the
// injected store.
type NetfileProvider struct {
	store SubmissionStore
}

func NewNetfileProvider(store SubmissionStore) *NetfileProvider {
	return &NetfileProvider{store: store}
}

func (p *NetfileProvider) ValidateFiling(req models.SubmissionRequest) (*models.ValidationResponse, error) {
	var errs []string

	if strings.TrimSpace(req.Taxpayer.FirstName) == "" || strings.TrimSpace(req.Taxpayer.LastName) == "" {
		errs = append(errs, "taxpayer name is required")
	}
	if !sinPattern.MatchString(req.Taxpayer.SIN) {
		errs = append(errs, "SIN must be 9 digits")
	}
	if !models.IsValidProvince(req.Taxpayer.Province) {
		errs = append(errs, "province of residence is required")
	}
	if req.TaxYear < 2000 || req.TaxYear > time.Now().Year() {
		errs = append(errs, fmt.Sprintf("tax year %d is not accepted", req.TaxYear))
	}
	if req.Income.Total < 0 {
		errs = append(errs, "total income cannot be negative")
	}
	if req.TotalTax < 0 {
		errs = append(errs, "total tax cannot be negative")
	}

	return &models.ValidationResponse{Valid: len(errs) == 0, Errors: errs}, nil
}

func (p *NetfileProvider) SubmitFiling(req models.SubmissionRequest) (*models.SubmissionResponse, error) {
	validation, err := p.ValidateFiling(req)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return &models.SubmissionResponse{
			Success: false,
			Status:  StatusRejected,
			Errors:  validation.Errors,
		}, nil
	}

	confirmation := fmt.Sprintf("NF-%d-%s", req.TaxYear, strings.ToUpper(uuid.NewString()[:8]))
	now := time.Now().UTC()
	rec := SubmissionRecord{
		ConfirmationNumber: confirmation,
		Request:            req,
		Status:             StatusAccepted,
		SubmittedAt:        now,
		LastUpdated:        now,
	}
	if err := p.store.Save(rec); err != nil {
		return nil, fmt.Errorf("error saving submission: %w", err)
	}

	if logger.L != nil {
		logger.L.Info("Filing submitted to NETFILE partner",
			"confirmationNumber", confirmation, "taxYear", req.TaxYear)
	}

	var warnings []string
	if req.RefundOrOwing < 0 {
		warnings = append(warnings, fmt.Sprintf("balance owing of %.2f is due by April 30", -req.RefundOrOwing))
	}

	return &models.SubmissionResponse{
		Success:            true,
		ConfirmationNumber: confirmation,
		Status:             rec.Status,
		Warnings:           warnings,
	}, nil
}

func (p *NetfileProvider) CheckStatus(confirmationNumber string) (*models.StatusResponse, error) {
	rec, err := p.store.Get(confirmationNumber)
	if err != nil {
		return nil, err
	}
	return &models.StatusResponse{
		ConfirmationNumber: rec.ConfirmationNumber,
		Status:             rec.Status,
		LastUpdated:        rec.LastUpdated,
	}, nil
}
