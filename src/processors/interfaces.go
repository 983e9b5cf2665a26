package processors

import (
	"github.com/username/mapletax/backend/src/models"
)

// TaxCalculator derives a TaxSummary from a filing snapshot. Implementations
// must be pure: no I/O, no shared state, safe for concurrent use.
type TaxCalculator interface {
	Calculate(filing *models.Filing) models.TaxSummary
}

// CrossValidator checks extracted document data against the records already
// entered on a filing.
type CrossValidator interface {
	CrossCheckDocument(doc models.ExtractedDocumentData, filing *models.Filing) models.ValidationResult
	ValidateAllDocuments(docs []models.ExtractedDocumentData, filing *models.Filing) []models.Suggestion
}

// SuggestionEngine evaluates the static advisory rules over aggregated
// filing totals.
type SuggestionEngine interface {
	Evaluate(totals FilingTotals) []models.Suggestion
}

// FilingTotals is the aggregate view of a filing the static rules and the
// submission transformer consume. It is produced by the same aggregation
// pass the calculator uses, so the two can never drift apart.
type FilingTotals struct {
	ProvinceSet         bool
	TotalIncome         float64
	EmploymentIncome    float64
	TotalDeductions     float64
	RRSPTotal           float64
	RRSPCount           int
	HomeOfficeDays      int
	DonationTotal       float64
	MedicalTotal        float64
	ProfessionalDues    float64
	StudentLoanInterest float64
}
