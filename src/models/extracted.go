package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DocumentType tags an extracted document with the record shape it maps to.
type DocumentType string

const (
	DocumentT4              DocumentType = "t4"
	DocumentT5              DocumentType = "t5"
	DocumentRRSPReceipt     DocumentType = "rrsp_receipt"
	DocumentDonationReceipt DocumentType = "donation_receipt"
)

// Field names the extraction collaborator is allowed to emit per document
// type. Unknown keys are dropped at the boundary so arbitrary extraction
// output never reaches the validation logic.
var documentFields = map[DocumentType][]string{
	DocumentT4:              {"employerName", "employmentIncome", "incomeTaxDeducted", "cppContributions", "eiPremiums"},
	DocumentT5:              {"payerName", "dividends", "interest"},
	DocumentRRSPReceipt:     {"institution", "amount"},
	DocumentDonationReceipt: {"charityName", "amount"},
}

// ExtractedDocumentData is the transient output of the external document
// extraction collaborator: a type tag plus a field-name to value map. Values
// arrive as arbitrary JSON scalars and are coerced on access.
type ExtractedDocumentData struct {
	DocumentType DocumentType   `json:"documentType"`
	DocumentName string         `json:"documentName,omitempty"`
	Fields       map[string]any `json:"fields"`
}

// Normalize drops fields that are not in the document type's allowed set.
// Unknown document types keep no fields at all.
func (d ExtractedDocumentData) Normalize() ExtractedDocumentData {
	allowed := documentFields[d.DocumentType]
	fields := make(map[string]any, len(allowed))
	for _, name := range allowed {
		if v, ok := d.Fields[name]; ok {
			fields[name] = v
		}
	}
	d.Fields = fields
	return d
}

// Amount returns the named field coerced to a number. Missing or unparseable
// values coerce to zero: a field that fails to parse is treated as absent
// rather than failing the review flow.
func (d ExtractedDocumentData) Amount(name string) float64 {
	v, ok := d.Fields[name]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(n, "$", ""), ",", ""))
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Text returns the named field as a trimmed string, or "" when absent.
func (d ExtractedDocumentData) Text(name string) string {
	v, ok := d.Fields[name]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
