package services

import (
	"github.com/username/mapletax/backend/src/models"
)

// TransformFilingToSubmissionRequest maps a filing and its computed summary
// into the partner wire shape. All totals come from the summary's
// aggregation pass; nothing is re-derived here, so the transformer can never
// drift from the calculation engine.
func TransformFilingToSubmissionRequest(filing *models.Filing, summary models.TaxSummary) models.SubmissionRequest {
	return models.SubmissionRequest{
		TaxYear: filing.TaxYear,
		Taxpayer: models.TaxpayerInfo{
			FirstName:     filing.PersonalInfo.FirstName,
			LastName:      filing.PersonalInfo.LastName,
			SIN:           filing.PersonalInfo.SIN,
			DateOfBirth:   filing.PersonalInfo.DateOfBirth,
			Province:      filing.PersonalInfo.Province,
			MaritalStatus: filing.PersonalInfo.MaritalStatus,
			Address:       filing.PersonalInfo.Address,
		},
		Income:        summary.Income,
		Deductions:    summary.Deductions,
		TaxableIncome: summary.TaxableIncome,
		FederalTax:    summary.FederalTax,
		ProvincialTax: summary.ProvincialTax,
		TotalCredits:  summary.TotalCredits,
		TotalTax:      summary.TotalTax,
		TotalPaid:     summary.TotalPaid,
		RefundOrOwing: summary.RefundOrOwing,
	}
}
