package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/mapletax/backend/src/models"
)

func singleT4Filing(income, withheld float64) *models.Filing {
	f := models.NewFiling(1, 2024)
	f.PersonalInfo.Province = models.ProvinceON
	f.T4Slips = []models.T4Slip{{
		ID:                "t4-1",
		EmployerName:      "Acme Corporation",
		EmploymentIncome:  income,
		IncomeTaxDeducted: withheld,
	}}
	return f
}

func TestCalculateZeroIncome(t *testing.T) {
	c := NewCalculator()
	summary := c.Calculate(models.NewFiling(1, 2024))

	assert.Equal(t, 0.0, summary.FederalTax)
	assert.Equal(t, 0.0, summary.ProvincialTax)
	assert.Equal(t, 0.0, summary.TotalTax)
	assert.Equal(t, 0.0, summary.TaxableIncome)
}

func TestCalculateDeductionsExceedIncome(t *testing.T) {
	c := NewCalculator()
	f := singleT4Filing(10000, 0)
	f.ChildcareExpenses = 25000

	summary := c.Calculate(f)
	assert.Equal(t, 0.0, summary.TaxableIncome)
	assert.Equal(t, 0.0, summary.FederalTax)
	assert.Equal(t, 0.0, summary.ProvincialTax)
}

func TestFederalTaxSecondBracket(t *testing.T) {
	// 70000 taxable: 8380 base + (70000-55867) * 20.5%.
	got := bracketTax(federalBrackets, 70000)
	assert.InDelta(t, 11277.265, got, 1e-9)
}

func TestBracketContinuity(t *testing.T) {
	for _, schedule := range [][]taxBracket{federalBrackets, ontarioBrackets} {
		for i := 1; i < len(schedule); i++ {
			boundary := schedule[i].threshold
			below := bracketTax(schedule, boundary-0.001)
			at := bracketTax(schedule, boundary)
			// Bases are fixed whole-dollar constants, so allow sub-dollar
			// rounding at the seams.
			assert.InDelta(t, below, at, 1.0, "discontinuity at %.0f", boundary)
		}
	}
}

func TestCalculateSingleT4Scenario(t *testing.T) {
	c := NewCalculator()
	summary := c.Calculate(singleT4Filing(50000, 8000))

	assert.Equal(t, 50000.0, summary.TotalIncome)
	assert.Equal(t, 50000.0, summary.TaxableIncome)
	assert.InDelta(t, 7500.0, summary.FederalTax, 1e-9)
	assert.InDelta(t, 2525.0, summary.ProvincialTax, 1e-9)
	assert.InDelta(t, 2355.75, summary.TotalCredits, 1e-9)
	assert.InDelta(t, 7669.25, summary.TotalTax, 1e-9)
	assert.Equal(t, 8000.0, summary.TotalPaid)
	assert.InDelta(t, 330.75, summary.RefundOrOwing, 1e-9)
}

func TestDonationCreditTiers(t *testing.T) {
	assert.InDelta(t, 30.0, donationCredit(200), 1e-9)
	assert.InDelta(t, 59.0, donationCredit(300), 1e-9)
	assert.Equal(t, 0.0, donationCredit(0))
	assert.InDelta(t, 15.0, donationCredit(100), 1e-9)
}

func TestDonationCreditPerReceipt(t *testing.T) {
	// The tier split applies per receipt, so two 200 receipts earn less
	// credit than one 400 receipt.
	c := NewCalculator()

	f := singleT4Filing(50000, 0)
	f.CharitableDonations = []models.CharitableDonation{
		{ID: "d1", CharityName: "Food Bank", Amount: 200},
		{ID: "d2", CharityName: "Red Cross", Amount: 200},
	}
	twoReceipts := c.Calculate(f).TotalCredits

	f.CharitableDonations = []models.CharitableDonation{
		{ID: "d1", CharityName: "Food Bank", Amount: 400},
	}
	oneReceipt := c.Calculate(f).TotalCredits

	assert.Greater(t, oneReceipt, twoReceipts)
}

func TestMedicalCreditThreshold(t *testing.T) {
	c := NewCalculator()
	f := singleT4Filing(50000, 0)
	f.MedicalExpenses = []models.MedicalExpense{{ID: "m1", Description: "dental", Amount: 2000}}

	// Threshold is 3% of income = 1500; credit on the 500 above it.
	summary := c.Calculate(f)
	expected := BasicPersonalAmount*CreditRate + 500*CreditRate
	assert.InDelta(t, expected, summary.TotalCredits, 1e-9)

	// Below the threshold no credit accrues.
	f.MedicalExpenses[0].Amount = 1000
	summary = c.Calculate(f)
	assert.InDelta(t, BasicPersonalAmount*CreditRate, summary.TotalCredits, 1e-9)
}

func TestSecuritiesGainsFlooredPerSlip(t *testing.T) {
	f := models.NewFiling(1, 2024)
	f.T5008Slips = []models.T5008Slip{
		{ID: "s1", Proceeds: 10000, CostBase: 6000}, // gain 4000
		{ID: "s2", Proceeds: 2000, CostBase: 9000},  // loss, floored to zero
	}

	inc := AggregateIncome(f)
	assert.InDelta(t, 2000.0, inc.CapitalGains, 1e-9) // 4000 * 50%
}

func TestTrustIncomeInclusionRate(t *testing.T) {
	f := models.NewFiling(1, 2024)
	f.T3Slips = []models.T3Slip{{
		ID:                "t3-1",
		CapitalGains:      1000,
		EligibleDividends: 200,
		OtherDividends:    100,
		OtherIncome:       50,
	}}

	inc := AggregateIncome(f)
	assert.InDelta(t, 850.0, inc.Trust, 1e-9)
}

func TestHomeOfficeDeductionMethods(t *testing.T) {
	f := models.NewFiling(1, 2024)
	f.HomeOfficeDays = 120

	f.HomeOfficeMethod = models.HomeOfficeFlatRate
	assert.InDelta(t, 240.0, AggregateDeductions(f).HomeOffice, 1e-9)

	f.HomeOfficeMethod = models.HomeOfficeDetailed
	assert.Equal(t, 0.0, AggregateDeductions(f).HomeOffice)

	f.HomeOfficeMethod = ""
	assert.Equal(t, 0.0, AggregateDeductions(f).HomeOffice)
}

func TestWithholdingSources(t *testing.T) {
	f := models.NewFiling(1, 2024)
	f.T4Slips = []models.T4Slip{{ID: "a", IncomeTaxDeducted: 100}}
	f.T4ASlips = []models.T4ASlip{{ID: "b", IncomeTaxDeducted: 50}}
	f.T4ESlips = []models.T4ESlip{{ID: "c", IncomeTaxDeducted: 25}}
	f.T4RIFSlips = []models.T4RIFSlip{{ID: "d", IncomeTaxDeducted: 10}}
	// T5/T3 carry no withholding box.
	f.T5Slips = []models.T5Slip{{ID: "e", Dividends: 500}}

	assert.InDelta(t, 185.0, totalWithheld(f), 1e-9)
}

func TestSummaryInvariants(t *testing.T) {
	c := NewCalculator()
	filings := []*models.Filing{
		models.NewFiling(1, 2024),
		singleT4Filing(50000, 8000),
		singleT4Filing(300000, 90000),
		singleT4Filing(12000, 0),
	}
	f := singleT4Filing(80000, 10000)
	f.RRSPContributions = []models.RRSPContribution{{ID: "r1", Amount: 6000, Contributor: models.ContributorSelf}}
	f.CharitableDonations = []models.CharitableDonation{{ID: "d1", Amount: 350}}
	f.StudentLoanInterest = 400
	filings = append(filings, f)

	for _, filing := range filings {
		summary := c.Calculate(filing)
		require.GreaterOrEqual(t, summary.TotalTax, 0.0)
		expectedTax := summary.FederalTax + summary.ProvincialTax - summary.TotalCredits
		if expectedTax < 0 {
			expectedTax = 0
		}
		assert.InDelta(t, expectedTax, summary.TotalTax, 1e-9)
		assert.InDelta(t, summary.TotalPaid-summary.TotalTax, summary.RefundOrOwing, 1e-9)
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	c := NewCalculator()
	f := singleT4Filing(64000, 9000)
	f.T5Slips = []models.T5Slip{{ID: "t5-1", Dividends: 1200, Interest: 340}}

	first := c.Calculate(f)
	second := c.Calculate(f)
	assert.Equal(t, first, second)
}

func TestAggregateTotalsMatchesCalculator(t *testing.T) {
	c := NewCalculator()
	f := singleT4Filing(75000, 11000)
	f.RRSPContributions = []models.RRSPContribution{{ID: "r1", Amount: 5000}}
	f.CharitableDonations = []models.CharitableDonation{{ID: "d1", Amount: 150}}
	f.MedicalExpenses = []models.MedicalExpense{{ID: "m1", Amount: 900}}

	totals := AggregateTotals(f)
	summary := c.Calculate(f)

	assert.Equal(t, summary.TotalIncome, totals.TotalIncome)
	assert.Equal(t, summary.TotalDeductions, totals.TotalDeductions)
	assert.Equal(t, summary.Income.Employment, totals.EmploymentIncome)
	assert.True(t, totals.ProvinceSet)
	assert.Equal(t, 1, totals.RRSPCount)
	assert.Equal(t, 150.0, totals.DonationTotal)
	assert.Equal(t, 900.0, totals.MedicalTotal)
}
