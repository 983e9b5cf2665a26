package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/mapletax/backend/src/models"
)

func TestValuesMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"identical", 123.45, 123.45, true},
		{"identical zero", 0, 0, true},
		{"small within cent", 50.00, 50.01, true},
		{"small beyond cent", 50.00, 50.02, false},
		{"large within 2pct", 10000, 10150, true},
		{"large beyond 2pct", 8000, 8500, false},
		{"boundary uses relative regime", 100, 101.9, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, valuesMatch(tc.a, tc.b))
			assert.Equal(t, tc.want, valuesMatch(tc.b, tc.a), "valuesMatch must be symmetric")
		})
	}
}

func TestNamesRelated(t *testing.T) {
	assert.True(t, namesRelated("Acme Corp", "Acme Corporation"))
	assert.True(t, namesRelated("ACME CORPORATION", "acme corp"))
	assert.False(t, namesRelated("Acme Corp", "Globex"))
	assert.False(t, namesRelated("", "Acme Corp"))
}

func acmeFiling() *models.Filing {
	f := models.NewFiling(1, 2024)
	f.PersonalInfo.Province = models.ProvinceON
	f.T4Slips = []models.T4Slip{{
		ID:                "t4-1",
		EmployerName:      "Acme Corporation",
		EmploymentIncome:  50000,
		IncomeTaxDeducted: 8000,
	}}
	return f
}

func TestCrossCheckT4ConfidentMatchWithDiscrepancy(t *testing.T) {
	v := NewValidator()
	doc := models.ExtractedDocumentData{
		DocumentType: models.DocumentT4,
		DocumentName: "t4-acme.pdf",
		Fields: map[string]any{
			"employerName":      "Acme Corp",
			"employmentIncome":  50000.0,
			"incomeTaxDeducted": 8500.0,
		},
	}

	result := v.CrossCheckDocument(doc, acmeFiling())
	assert.False(t, result.IsValid)
	require.Len(t, result.Discrepancies, 1)

	s := result.Discrepancies[0]
	assert.Equal(t, models.SuggestionValidationError, s.Type)
	assert.Equal(t, models.PriorityHigh, s.Priority)
	assert.Contains(t, s.Description, "Income tax deducted")
	assert.NotContains(t, s.Description, "Employment income")
}

func TestCrossCheckT4CleanMatch(t *testing.T) {
	v := NewValidator()
	doc := models.ExtractedDocumentData{
		DocumentType: models.DocumentT4,
		Fields: map[string]any{
			"employerName":      "Acme Corp",
			"employmentIncome":  50000.0,
			"incomeTaxDeducted": 8000.0,
		},
	}

	result := v.CrossCheckDocument(doc, acmeFiling())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Discrepancies)
}

func TestCrossCheckT4PossibleDuplicate(t *testing.T) {
	v := NewValidator()
	// Employer name unrelated, so no confident match, but the income matches
	// an existing slip.
	doc := models.ExtractedDocumentData{
		DocumentType: models.DocumentT4,
		Fields: map[string]any{
			"employerName":     "Globex Industries",
			"employmentIncome": 50000.0,
		},
	}

	result := v.CrossCheckDocument(doc, acmeFiling())
	require.Len(t, result.Discrepancies, 1)
	assert.Equal(t, models.SuggestionWarning, result.Discrepancies[0].Type)
	assert.Equal(t, models.PriorityMedium, result.Discrepancies[0].Priority)
	assert.True(t, result.IsValid)
}

func TestCrossCheckT4NewRecord(t *testing.T) {
	v := NewValidator()
	doc := models.ExtractedDocumentData{
		DocumentType: models.DocumentT4,
		DocumentName: "t4-globex.pdf",
		Fields: map[string]any{
			"employerName":     "Globex Industries",
			"employmentIncome": 72000.0,
		},
	}

	result := v.CrossCheckDocument(doc, acmeFiling())
	require.Len(t, result.Discrepancies, 1)
	assert.Equal(t, models.SuggestionInfo, result.Discrepancies[0].Type)
	assert.Equal(t, models.PriorityLow, result.Discrepancies[0].Priority)
	assert.Equal(t, "New T4 Slip Detected", result.Discrepancies[0].Title)
}

func TestCrossCheckT4CoercesMalformedValues(t *testing.T) {
	v := NewValidator()
	doc := models.ExtractedDocumentData{
		DocumentType: models.DocumentT4,
		Fields: map[string]any{
			"employerName":      "Acme Corp",
			"employmentIncome":  "$50,000.00",
			"incomeTaxDeducted": "not-a-number",
		},
	}

	// The dollar string parses; the garbage coerces to zero and is treated
	// as absent, so no discrepancy is raised for it.
	result := v.CrossCheckDocument(doc, acmeFiling())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Discrepancies)
}

func TestCrossCheckT5(t *testing.T) {
	v := NewValidator()
	f := models.NewFiling(1, 2024)
	f.T5Slips = []models.T5Slip{{
		ID:        "t5-1",
		PayerName: "Royal Bank",
		Dividends: 1000,
		Interest:  500,
	}}

	// Same combined total, components swapped: matched, with discrepancies.
	doc := models.ExtractedDocumentData{
		DocumentType: models.DocumentT5,
		Fields:       map[string]any{"dividends": 500.0, "interest": 1000.0},
	}
	result := v.CrossCheckDocument(doc, f)
	assert.False(t, result.IsValid)
	require.Len(t, result.Discrepancies, 1)
	assert.Contains(t, result.Discrepancies[0].Description, "Dividends")
	assert.Contains(t, result.Discrepancies[0].Description, "Interest")

	// Unmatched total: no new-record branch for T5.
	doc.Fields = map[string]any{"dividends": 9000.0, "interest": 0.0}
	result = v.CrossCheckDocument(doc, f)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Discrepancies)
}

func TestCrossCheckRRSPReceipt(t *testing.T) {
	v := NewValidator()
	doc := models.ExtractedDocumentData{
		DocumentType: models.DocumentRRSPReceipt,
		Fields:       map[string]any{"amount": 5000.0},
	}

	// No contributions entered: high priority opportunity with the flat
	// 25% marginal-rate savings estimate.
	f := models.NewFiling(1, 2024)
	result := v.CrossCheckDocument(doc, f)
	require.Len(t, result.Discrepancies, 1)
	s := result.Discrepancies[0]
	assert.Equal(t, models.PriorityHigh, s.Priority)
	assert.Equal(t, "RRSP Contribution Not Claimed", s.Title)
	assert.InDelta(t, 1250.0, s.EstimatedSavings, 1e-9)

	// Contributions exist but none match: medium informational review.
	f.RRSPContributions = []models.RRSPContribution{{ID: "r1", Amount: 2000}}
	result = v.CrossCheckDocument(doc, f)
	require.Len(t, result.Discrepancies, 1)
	assert.Equal(t, models.PriorityMedium, result.Discrepancies[0].Priority)

	// A matching contribution: nothing to report.
	f.RRSPContributions = append(f.RRSPContributions, models.RRSPContribution{ID: "r2", Amount: 5000})
	result = v.CrossCheckDocument(doc, f)
	assert.Empty(t, result.Discrepancies)
}

func TestCrossCheckDonationReceipt(t *testing.T) {
	v := NewValidator()
	doc := models.ExtractedDocumentData{
		DocumentType: models.DocumentDonationReceipt,
		Fields:       map[string]any{"amount": 300.0},
	}

	f := models.NewFiling(1, 2024)
	result := v.CrossCheckDocument(doc, f)
	require.Len(t, result.Discrepancies, 1)
	assert.Equal(t, "Donation Receipt Not Claimed", result.Discrepancies[0].Title)
	assert.Equal(t, models.PriorityHigh, result.Discrepancies[0].Priority)

	// Any existing donation suppresses the missing-deduction branch.
	f.CharitableDonations = []models.CharitableDonation{{ID: "d1", Amount: 100}}
	result = v.CrossCheckDocument(doc, f)
	assert.Empty(t, result.Discrepancies)
}

func TestValidateAllDocumentsDedupesByTitle(t *testing.T) {
	v := NewValidator()
	f := models.NewFiling(1, 2024)
	docs := []models.ExtractedDocumentData{
		{DocumentType: models.DocumentRRSPReceipt, Fields: map[string]any{"amount": 5000.0}},
		{DocumentType: models.DocumentRRSPReceipt, Fields: map[string]any{"amount": 3000.0}},
	}

	suggestions := v.ValidateAllDocuments(docs, f)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "RRSP Contribution Not Claimed", suggestions[0].Title)
	// First wins, not merge.
	assert.InDelta(t, 5000*0.25, suggestions[0].EstimatedSavings, 1e-9)
}

func TestNormalizeDropsUnknownFields(t *testing.T) {
	doc := models.ExtractedDocumentData{
		DocumentType: models.DocumentT4,
		Fields: map[string]any{
			"employerName": "Acme Corp",
			"__proto__":    "injected",
			"randomKey":    42.0,
		},
	}
	normalized := doc.Normalize()
	assert.Equal(t, "Acme Corp", normalized.Text("employerName"))
	_, ok := normalized.Fields["randomKey"]
	assert.False(t, ok)
}
