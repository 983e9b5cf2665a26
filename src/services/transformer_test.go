package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/username/mapletax/backend/src/models"
	"github.com/username/mapletax/backend/src/processors"
)

func TestTransformFilingToSubmissionRequest(t *testing.T) {
	filing := models.NewFiling(7, 2024)
	filing.PersonalInfo = models.PersonalInfo{
		FirstName:     "Jordan",
		LastName:      "Chen",
		SIN:           "123456789",
		DateOfBirth:   "1990-04-12",
		Province:      models.ProvinceON,
		MaritalStatus: models.MaritalSingle,
	}
	filing.T4Slips = []models.T4Slip{{
		ID:                "t4-1",
		EmployerName:      "Acme Corporation",
		EmploymentIncome:  50000,
		IncomeTaxDeducted: 8000,
	}}
	filing.RRSPContributions = []models.RRSPContribution{{ID: "r1", Amount: 4000}}

	summary := processors.NewCalculator().Calculate(filing)
	req := TransformFilingToSubmissionRequest(filing, summary)

	assert.Equal(t, 2024, req.TaxYear)
	assert.Equal(t, "Jordan", req.Taxpayer.FirstName)
	assert.Equal(t, models.ProvinceON, req.Taxpayer.Province)

	// The request carries the engine's aggregates untouched.
	assert.Equal(t, summary.Income, req.Income)
	assert.Equal(t, summary.Deductions, req.Deductions)
	assert.Equal(t, summary.TaxableIncome, req.TaxableIncome)
	assert.Equal(t, summary.TotalTax, req.TotalTax)
	assert.Equal(t, summary.RefundOrOwing, req.RefundOrOwing)

	assert.Equal(t, 50000.0, req.Income.Employment)
	assert.Equal(t, 4000.0, req.Deductions.RRSP)
	assert.Equal(t, 46000.0, req.TaxableIncome)
}
