package processors

import (
	"math"

	"github.com/username/mapletax/backend/src/models"
)

// 2024 amounts. The provincial schedule is Ontario's and is applied to every
// province for now; provincialScheduleFor keeps the lookup in one place so
// per-province tables are a data change, not a structural one.
const (
	BasicPersonalAmount = 15705
	CreditRate          = 0.15

	DonationTierThreshold = 200
	donationLowRate       = 0.15
	donationHighRate      = 0.29

	medicalIncomeFactor = 0.03

	capitalGainsInclusionRate = 0.5
	homeOfficeFlatRatePerDay  = 2
)

// taxBracket holds the lower threshold of a bracket, its marginal rate and
// the fixed cumulative tax owed at that threshold.
type taxBracket struct {
	threshold float64
	rate      float64
	base      float64
}

var federalBrackets = []taxBracket{
	{0, 0.15, 0},
	{55867, 0.205, 8380},
	{111733, 0.26, 19833},
	{173205, 0.29, 35816},
	{246752, 0.33, 57145},
}

var ontarioBrackets = []taxBracket{
	{0, 0.0505, 0},
	{51446, 0.0915, 2598},
	{102894, 0.1116, 7306},
	{150000, 0.1216, 12563},
	{220000, 0.1316, 21075},
}

func provincialScheduleFor(p models.Province) []taxBracket {
	// Single schedule regardless of province; see DESIGN.md.
	return ontarioBrackets
}

// bracketTax computes tax on income via bracket interpolation: the fixed base
// at the lower threshold of the containing bracket plus the marginal rate on
// the portion above it.
func bracketTax(schedule []taxBracket, income float64) float64 {
	if income <= 0 {
		return 0
	}
	b := schedule[0]
	for _, next := range schedule[1:] {
		if income < next.threshold {
			break
		}
		b = next
	}
	return b.base + (income-b.threshold)*b.rate
}

// Calculator is the tax calculation engine.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// AggregateIncome sums all slip lists with their type-specific formulas.
// Capital gains (T3 and T5008) are included at 50%; T5008 losses are floored
// to zero per slip, not netted across slips.
func AggregateIncome(f *models.Filing) models.IncomeBreakdown {
	var inc models.IncomeBreakdown
	for _, s := range f.T4Slips {
		inc.Employment += s.EmploymentIncome
	}
	for _, s := range f.T4ASlips {
		inc.Pension += s.PensionIncome + s.LumpSumPayments + s.SelfEmployedCommissions + s.OtherIncome
	}
	for _, s := range f.T4ESlips {
		inc.Benefits += s.BenefitAmount
	}
	for _, s := range f.T5Slips {
		inc.Investment += s.Dividends + s.Interest + s.CapitalGainsDividends
	}
	for _, s := range f.T3Slips {
		inc.Trust += capitalGainsInclusionRate*s.CapitalGains + s.EligibleDividends + s.OtherDividends + s.OtherIncome
	}
	for _, s := range f.T4RIFSlips {
		inc.Retirement += s.RetirementIncome
	}
	for _, s := range f.T5008Slips {
		inc.CapitalGains += math.Max(0, s.Proceeds-s.CostBase) * capitalGainsInclusionRate
	}
	inc.SelfEmployment = f.SelfEmploymentIncome
	inc.Other = f.OtherIncome
	inc.Total = inc.Employment + inc.Pension + inc.Benefits + inc.Investment +
		inc.Trust + inc.Retirement + inc.CapitalGains + inc.SelfEmployment + inc.Other
	return inc
}

// AggregateDeductions sums the income deductions. Donations, medical expenses
// and student loan interest are credits, not deductions, and are excluded.
func AggregateDeductions(f *models.Filing) models.DeductionBreakdown {
	var ded models.DeductionBreakdown
	for _, c := range f.RRSPContributions {
		ded.RRSP += c.Amount
	}
	ded.Childcare = f.ChildcareExpenses
	if f.HomeOfficeMethod == models.HomeOfficeFlatRate {
		ded.HomeOffice = float64(f.HomeOfficeDays) * homeOfficeFlatRatePerDay
	}
	ded.Moving = f.MovingExpenses
	ded.ProfessionalDues = f.ProfessionalDues
	ded.Total = ded.RRSP + ded.Childcare + ded.HomeOffice + ded.Moving + ded.ProfessionalDues
	return ded
}

// AggregateTotals produces the rule/transformer view from the same pass the
// calculator uses.
func AggregateTotals(f *models.Filing) FilingTotals {
	inc := AggregateIncome(f)
	ded := AggregateDeductions(f)
	t := FilingTotals{
		ProvinceSet:         models.IsValidProvince(f.PersonalInfo.Province),
		TotalIncome:         inc.Total,
		EmploymentIncome:    inc.Employment,
		TotalDeductions:     ded.Total,
		RRSPTotal:           ded.RRSP,
		RRSPCount:           len(f.RRSPContributions),
		HomeOfficeDays:      f.HomeOfficeDays,
		ProfessionalDues:    f.ProfessionalDues,
		StudentLoanInterest: f.StudentLoanInterest,
	}
	for _, d := range f.CharitableDonations {
		t.DonationTotal += d.Amount
	}
	for _, m := range f.MedicalExpenses {
		t.MedicalTotal += m.Amount
	}
	return t
}

// donationCredit applies the two-tier rate to a single donation receipt:
// 15% on the first 200, 29% above. The tier split is per receipt rather than
// per year, matching the wizard's existing behaviour (see DESIGN.md).
func donationCredit(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	if amount <= DonationTierThreshold {
		return amount * donationLowRate
	}
	return DonationTierThreshold*donationLowRate + (amount-DonationTierThreshold)*donationHighRate
}

func (c *Calculator) totalCredits(f *models.Filing, totalIncome float64) float64 {
	credits := BasicPersonalAmount * CreditRate

	for _, d := range f.CharitableDonations {
		credits += donationCredit(d.Amount)
	}

	var medical float64
	for _, m := range f.MedicalExpenses {
		medical += m.Amount
	}
	credits += math.Max(0, medical-medicalIncomeFactor*totalIncome) * CreditRate

	for _, s := range f.T2202Slips {
		credits += s.EligibleFees * CreditRate
	}

	credits += f.StudentLoanInterest * CreditRate
	return credits
}

// totalWithheld sums tax withheld across the slip types that carry a
// withholding box (T4, T4A, T4E, T4RIF).
func totalWithheld(f *models.Filing) float64 {
	var paid float64
	for _, s := range f.T4Slips {
		paid += s.IncomeTaxDeducted
	}
	for _, s := range f.T4ASlips {
		paid += s.IncomeTaxDeducted
	}
	for _, s := range f.T4ESlips {
		paid += s.IncomeTaxDeducted
	}
	for _, s := range f.T4RIFSlips {
		paid += s.IncomeTaxDeducted
	}
	return paid
}

// Calculate derives the filing's TaxSummary. Pure: same filing in, bit
// identical summary out.
func (c *Calculator) Calculate(f *models.Filing) models.TaxSummary {
	income := AggregateIncome(f)
	deductions := AggregateDeductions(f)

	taxable := math.Max(0, income.Total-deductions.Total)
	federal := bracketTax(federalBrackets, taxable)
	provincial := bracketTax(provincialScheduleFor(f.PersonalInfo.Province), taxable)
	credits := c.totalCredits(f, income.Total)

	totalTax := math.Max(0, federal+provincial-credits)
	paid := totalWithheld(f)

	return models.TaxSummary{
		TotalIncome:     income.Total,
		TotalDeductions: deductions.Total,
		TaxableIncome:   taxable,
		FederalTax:      federal,
		ProvincialTax:   provincial,
		TotalCredits:    credits,
		TotalTax:        totalTax,
		TotalPaid:       paid,
		RefundOrOwing:   paid - totalTax,
		Income:          income,
		Deductions:      deductions,
	}
}
