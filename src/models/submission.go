package models

import "time"

// TaxpayerInfo is the identity block of a submission request.
type TaxpayerInfo struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	SIN           string        `json:"sin"`
	DateOfBirth   string        `json:"dateOfBirth"`
	Province      Province      `json:"province"`
	MaritalStatus MaritalStatus `json:"maritalStatus"`
	Address       Address       `json:"address"`
}

// SubmissionRequest is the filing-partner wire shape: flattened category
// totals, not raw per-slip detail.
type SubmissionRequest struct {
	TaxYear    int                `json:"taxYear"`
	Taxpayer   TaxpayerInfo       `json:"taxpayer"`
	Income     IncomeBreakdown    `json:"income"`
	Deductions DeductionBreakdown `json:"deductions"`
	TaxableIncome float64         `json:"taxableIncome"`
	FederalTax    float64         `json:"federalTax"`
	ProvincialTax float64         `json:"provincialTax"`
	TotalCredits  float64         `json:"totalCredits"`
	TotalTax      float64         `json:"totalTax"`
	TotalPaid     float64         `json:"totalPaid"`
	RefundOrOwing float64         `json:"refundOrOwing"`
}

type ValidationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

type SubmissionResponse struct {
	Success            bool     `json:"success"`
	ConfirmationNumber string   `json:"confirmationNumber,omitempty"`
	Status             string   `json:"status"`
	Errors             []string `json:"errors,omitempty"`
	Warnings           []string `json:"warnings,omitempty"`
}

type StatusResponse struct {
	ConfirmationNumber string    `json:"confirmationNumber"`
	Status             string    `json:"status"`
	LastUpdated        time.Time `json:"lastUpdated"`
}
