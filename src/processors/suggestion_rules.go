package processors

import (
	"fmt"
	"math"

	"github.com/username/mapletax/backend/src/models"
	"github.com/username/mapletax/backend/src/utils"
)

const (
	rrspIncomeFloor      = 30000
	rrspContributionRate = 0.18
	rrspAnnualLimit      = 31560

	deductionRatioWarning = 0.40
	duesIncomeFloor       = 60000
	lowDeductionCutoff    = 5000
)

// RuleEngine runs the static suggestion rules. Every rule runs on every
// invocation; each emits at most one suggestion.
type RuleEngine struct{}

func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// Evaluate applies all rules to the aggregated totals and returns the
// results sorted high, medium, low with in-tier order preserved.
func (e *RuleEngine) Evaluate(t FilingTotals) []models.Suggestion {
	rules := []func(FilingTotals) *models.Suggestion{
		ruleProvinceSet,
		ruleRRSPOpportunity,
		ruleHomeOffice,
		ruleDeductionRatio,
		ruleMedicalThreshold,
		ruleSmallDonation,
		ruleProfessionalDues,
		ruleStudentLoanInterest,
	}

	var out []models.Suggestion
	for _, rule := range rules {
		if s := rule(t); s != nil {
			out = append(out, *s)
		}
	}
	models.SortByPriority(out)
	return out
}

func ruleProvinceSet(t FilingTotals) *models.Suggestion {
	if t.ProvinceSet {
		return nil
	}
	return &models.Suggestion{
		Type:        models.SuggestionValidationError,
		Priority:    models.PriorityHigh,
		Title:       "Province of Residence Not Set",
		Description: "Your province of residence determines the provincial tax schedule. Set it before submitting.",
	}
}

func ruleRRSPOpportunity(t FilingTotals) *models.Suggestion {
	if t.TotalIncome <= rrspIncomeFloor || t.RRSPCount > 0 {
		return nil
	}
	suggested := math.Min(t.TotalIncome*rrspContributionRate, rrspAnnualLimit)
	return &models.Suggestion{
		Type:             models.SuggestionTip,
		Priority:         models.PriorityMedium,
		Title:            "RRSP Contribution Opportunity",
		Description:      fmt.Sprintf("You have no RRSP contributions entered. You could contribute up to %.2f this year.", suggested),
		EstimatedSavings: utils.RoundFloat(suggested*assumedMarginalRate, 2),
	}
}

func ruleHomeOffice(t FilingTotals) *models.Suggestion {
	if t.EmploymentIncome <= 0 || t.HomeOfficeDays > 0 {
		return nil
	}
	return &models.Suggestion{
		Type:        models.SuggestionTip,
		Priority:    models.PriorityMedium,
		Title:       "Home Office Deduction Not Claimed",
		Description: "If you worked from home this year, the flat-rate method credits a fixed amount per day worked from home.",
	}
}

func ruleDeductionRatio(t FilingTotals) *models.Suggestion {
	if t.TotalIncome <= 0 || t.TotalDeductions <= t.TotalIncome*deductionRatioWarning {
		return nil
	}
	return &models.Suggestion{
		Type:        models.SuggestionWarning,
		Priority:    models.PriorityMedium,
		Title:       "Deductions Are High Relative to Income",
		Description: fmt.Sprintf("Your deductions (%.2f) exceed 40%% of your income (%.2f). Double-check the amounts; large ratios draw review.", t.TotalDeductions, t.TotalIncome),
	}
}

func ruleMedicalThreshold(t FilingTotals) *models.Suggestion {
	if t.MedicalTotal <= 0 || t.MedicalTotal > t.TotalIncome*medicalIncomeFactor {
		return nil
	}
	return &models.Suggestion{
		Type:        models.SuggestionInfo,
		Priority:    models.PriorityLow,
		Title:       "Medical Expenses Below Credit Threshold",
		Description: fmt.Sprintf("Your medical expenses (%.2f) are below 3%% of your income, so they earn no credit this year.", t.MedicalTotal),
	}
}

func ruleSmallDonation(t FilingTotals) *models.Suggestion {
	if t.DonationTotal <= 0 || t.DonationTotal >= DonationTierThreshold {
		return nil
	}
	return &models.Suggestion{
		Type:        models.SuggestionTip,
		Priority:    models.PriorityLow,
		Title:       "Donations Below the Higher Credit Tier",
		Description: fmt.Sprintf("Donations above %.0f earn credit at 29%% instead of 15%%. Consider combining receipts or carrying donations forward.", float64(DonationTierThreshold)),
	}
}

func ruleProfessionalDues(t FilingTotals) *models.Suggestion {
	if t.EmploymentIncome <= duesIncomeFloor || t.ProfessionalDues > 0 {
		return nil
	}
	return &models.Suggestion{
		Type:        models.SuggestionTip,
		Priority:    models.PriorityLow,
		Title:       "Professional Dues Not Claimed",
		Description: "Annual professional or union dues are deductible. Check whether you paid any this year.",
	}
}

func ruleStudentLoanInterest(t FilingTotals) *models.Suggestion {
	if t.TotalDeductions >= lowDeductionCutoff || t.EmploymentIncome <= rrspIncomeFloor || t.StudentLoanInterest > 0 {
		return nil
	}
	return &models.Suggestion{
		Type:        models.SuggestionInfo,
		Priority:    models.PriorityLow,
		Title:       "Student Loan Interest Reminder",
		Description: "Interest paid on government student loans earns a 15% credit. Enter it if you made payments this year.",
	}
}
