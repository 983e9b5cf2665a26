package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/mapletax/backend/src/models"
)

func TestRuleProvinceSet(t *testing.T) {
	e := NewRuleEngine()

	suggestions := e.Evaluate(FilingTotals{ProvinceSet: false})
	require.NotEmpty(t, suggestions)
	assert.Equal(t, models.SuggestionValidationError, suggestions[0].Type)
	assert.Equal(t, models.PriorityHigh, suggestions[0].Priority)

	for _, s := range e.Evaluate(FilingTotals{ProvinceSet: true}) {
		assert.NotEqual(t, models.SuggestionValidationError, s.Type)
	}
}

func TestRuleRRSPOpportunity(t *testing.T) {
	totals := FilingTotals{ProvinceSet: true, TotalIncome: 50000, EmploymentIncome: 50000, HomeOfficeDays: 10}

	s := ruleRRSPOpportunity(totals)
	require.NotNil(t, s)
	// min(50000 * 18%, annual limit) at the assumed 25% marginal rate.
	assert.InDelta(t, 2250.0, s.EstimatedSavings, 1e-9)

	totals.RRSPCount = 1
	assert.Nil(t, ruleRRSPOpportunity(totals))

	totals.RRSPCount = 0
	totals.TotalIncome = 20000
	assert.Nil(t, ruleRRSPOpportunity(totals))
}

func TestRuleRRSPOpportunityCappedAtAnnualLimit(t *testing.T) {
	s := ruleRRSPOpportunity(FilingTotals{ProvinceSet: true, TotalIncome: 400000})
	require.NotNil(t, s)
	assert.InDelta(t, rrspAnnualLimit*assumedMarginalRate, s.EstimatedSavings, 1e-9)
}

func TestRuleHomeOffice(t *testing.T) {
	assert.NotNil(t, ruleHomeOffice(FilingTotals{EmploymentIncome: 40000}))
	assert.Nil(t, ruleHomeOffice(FilingTotals{EmploymentIncome: 40000, HomeOfficeDays: 50}))
	assert.Nil(t, ruleHomeOffice(FilingTotals{EmploymentIncome: 0}))
}

func TestRuleDeductionRatio(t *testing.T) {
	assert.NotNil(t, ruleDeductionRatio(FilingTotals{TotalIncome: 50000, TotalDeductions: 25000}))
	assert.Nil(t, ruleDeductionRatio(FilingTotals{TotalIncome: 50000, TotalDeductions: 15000}))
	// Zero income never divides or fires.
	assert.Nil(t, ruleDeductionRatio(FilingTotals{TotalIncome: 0, TotalDeductions: 10000}))
}

func TestRuleMedicalThreshold(t *testing.T) {
	assert.NotNil(t, ruleMedicalThreshold(FilingTotals{TotalIncome: 50000, MedicalTotal: 1000}))
	assert.Nil(t, ruleMedicalThreshold(FilingTotals{TotalIncome: 50000, MedicalTotal: 2000}))
	assert.Nil(t, ruleMedicalThreshold(FilingTotals{TotalIncome: 50000}))
}

func TestRuleSmallDonation(t *testing.T) {
	assert.NotNil(t, ruleSmallDonation(FilingTotals{DonationTotal: 150}))
	assert.Nil(t, ruleSmallDonation(FilingTotals{DonationTotal: 200}))
	assert.Nil(t, ruleSmallDonation(FilingTotals{DonationTotal: 0}))
}

func TestRuleProfessionalDues(t *testing.T) {
	assert.NotNil(t, ruleProfessionalDues(FilingTotals{EmploymentIncome: 80000}))
	assert.Nil(t, ruleProfessionalDues(FilingTotals{EmploymentIncome: 80000, ProfessionalDues: 500}))
	assert.Nil(t, ruleProfessionalDues(FilingTotals{EmploymentIncome: 50000}))
}

func TestRuleStudentLoanInterest(t *testing.T) {
	assert.NotNil(t, ruleStudentLoanInterest(FilingTotals{EmploymentIncome: 45000, TotalDeductions: 1000}))
	assert.Nil(t, ruleStudentLoanInterest(FilingTotals{EmploymentIncome: 45000, TotalDeductions: 8000}))
	assert.Nil(t, ruleStudentLoanInterest(FilingTotals{EmploymentIncome: 45000, TotalDeductions: 1000, StudentLoanInterest: 300}))
}

func TestEvaluateSortsByPriorityStable(t *testing.T) {
	e := NewRuleEngine()
	// Province missing (high), RRSP + home office (medium), dues + student
	// loan reminders (low).
	totals := FilingTotals{
		ProvinceSet:      false,
		TotalIncome:      80000,
		EmploymentIncome: 80000,
	}

	suggestions := e.Evaluate(totals)
	require.GreaterOrEqual(t, len(suggestions), 4)

	lastRank := -1
	rank := map[models.SuggestionPriority]int{
		models.PriorityHigh:   0,
		models.PriorityMedium: 1,
		models.PriorityLow:    2,
	}
	for _, s := range suggestions {
		assert.GreaterOrEqual(t, rank[s.Priority], lastRank)
		lastRank = rank[s.Priority]
	}

	// Within the medium tier the RRSP rule stays ahead of home office
	// because rules run in a fixed order and the sort is stable.
	var mediums []string
	for _, s := range suggestions {
		if s.Priority == models.PriorityMedium {
			mediums = append(mediums, s.Title)
		}
	}
	require.Len(t, mediums, 2)
	assert.Equal(t, "RRSP Contribution Opportunity", mediums[0])
	assert.Equal(t, "Home Office Deduction Not Claimed", mediums[1])
}
