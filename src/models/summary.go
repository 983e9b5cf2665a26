package models

// IncomeBreakdown holds the per-category income totals produced by the
// calculation engine's aggregation pass. Capital gains categories are already
// at their 50% inclusion amounts.
type IncomeBreakdown struct {
	Employment     float64 `json:"employment"`
	Pension        float64 `json:"pension"`
	Benefits       float64 `json:"benefits"`
	Investment     float64 `json:"investment"`
	Trust          float64 `json:"trust"`
	Retirement     float64 `json:"retirement"`
	CapitalGains   float64 `json:"capitalGains"`
	SelfEmployment float64 `json:"selfEmployment"`
	Other          float64 `json:"other"`
	Total          float64 `json:"total"`
}

// DeductionBreakdown holds the per-category deduction totals.
type DeductionBreakdown struct {
	RRSP             float64 `json:"rrsp"`
	Childcare        float64 `json:"childcare"`
	HomeOffice       float64 `json:"homeOffice"`
	Moving           float64 `json:"moving"`
	ProfessionalDues float64 `json:"professionalDues"`
	Total            float64 `json:"total"`
}

// TaxSummary is the derived result of the calculation engine. Invariants:
// TotalTax = max(0, FederalTax+ProvincialTax-TotalCredits) and
// RefundOrOwing = TotalPaid - TotalTax (positive means refund).
type TaxSummary struct {
	TotalIncome     float64 `json:"totalIncome"`
	TotalDeductions float64 `json:"totalDeductions"`
	TaxableIncome   float64 `json:"taxableIncome"`
	FederalTax      float64 `json:"federalTax"`
	ProvincialTax   float64 `json:"provincialTax"`
	TotalCredits    float64 `json:"totalCredits"`
	TotalTax        float64 `json:"totalTax"`
	TotalPaid       float64 `json:"totalPaid"`
	RefundOrOwing   float64 `json:"refundOrOwing"`

	Income     IncomeBreakdown    `json:"income"`
	Deductions DeductionBreakdown `json:"deductions"`
}
