package processors

import (
	"fmt"
	"math"
	"strings"

	"github.com/username/mapletax/backend/src/models"
)

const (
	// Two-regime tolerance: exact cents below the cutoff, percentage drift
	// above it. Keeps OCR rounding on small values from flagging mismatches.
	smallValueCutoff  = 100.0
	absoluteTolerance = 0.01
	relativeTolerance = 0.02

	nameMatchScore      = 3
	amountMatchScore    = 2
	confidentMatchScore = 3

	// Flat assumed marginal rate used for quick savings estimates on
	// unclaimed deductions. Deliberately not derived from the calculator.
	assumedMarginalRate = 0.25
)

// valuesMatch reports whether two amounts agree within tolerance. Symmetric,
// and always true for identical inputs.
func valuesMatch(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	larger := math.Max(a, b)
	if larger < smallValueCutoff {
		return diff <= absoluteTolerance
	}
	return diff/larger <= relativeTolerance
}

// namesRelated reports case-insensitive containment in either direction,
// e.g. "Acme Corp" vs "Acme Corporation".
func namesRelated(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Validator is the cross-validation engine: it matches extracted document
// fields against entered records and surfaces discrepancies as suggestions.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// CrossCheckDocument validates one extracted document against the filing.
// IsValid is false only when a validation_error suggestion was produced.
func (v *Validator) CrossCheckDocument(doc models.ExtractedDocumentData, filing *models.Filing) models.ValidationResult {
	doc = doc.Normalize()

	var suggestions []models.Suggestion
	switch doc.DocumentType {
	case models.DocumentT4:
		suggestions = v.checkT4(doc, filing)
	case models.DocumentT5:
		suggestions = v.checkT5(doc, filing)
	case models.DocumentRRSPReceipt:
		suggestions = v.checkRRSPReceipt(doc, filing)
	case models.DocumentDonationReceipt:
		suggestions = v.checkDonationReceipt(doc, filing)
	}

	isValid := true
	for _, s := range suggestions {
		if s.Type == models.SuggestionValidationError {
			isValid = false
			break
		}
	}
	return models.ValidationResult{
		IsValid:       isValid,
		Discrepancies: suggestions,
		Matches:       []models.DocumentMatch{},
	}
}

// ValidateAllDocuments runs every document through CrossCheckDocument,
// concatenates the suggestions and keeps the first occurrence of each title.
func (v *Validator) ValidateAllDocuments(docs []models.ExtractedDocumentData, filing *models.Filing) []models.Suggestion {
	var all []models.Suggestion
	for _, doc := range docs {
		result := v.CrossCheckDocument(doc, filing)
		all = append(all, result.Discrepancies...)
	}
	return models.DedupeByTitle(all)
}

func (v *Validator) checkT4(doc models.ExtractedDocumentData, filing *models.Filing) []models.Suggestion {
	employer := doc.Text("employerName")
	income := doc.Amount("employmentIncome")
	withheld := doc.Amount("incomeTaxDeducted")

	var best *models.T4Slip
	bestScore := 0
	for i := range filing.T4Slips {
		slip := &filing.T4Slips[i]
		score := 0
		if namesRelated(employer, slip.EmployerName) {
			score += nameMatchScore
		}
		if income > 0 && valuesMatch(income, slip.EmploymentIncome) {
			score += amountMatchScore
		}
		if withheld > 0 && valuesMatch(withheld, slip.IncomeTaxDeducted) {
			score += amountMatchScore
		}
		if score > bestScore {
			bestScore = score
			best = slip
		}
	}

	if best != nil && bestScore >= confidentMatchScore {
		var discrepancies []string
		checks := []struct {
			label     string
			extracted float64
			entered   float64
		}{
			{"Employment income", income, best.EmploymentIncome},
			{"Income tax deducted", withheld, best.IncomeTaxDeducted},
			{"CPP contributions", doc.Amount("cppContributions"), best.CPPContributions},
			{"EI premiums", doc.Amount("eiPremiums"), best.EIPremiums},
		}
		for _, c := range checks {
			if c.extracted > 0 && !valuesMatch(c.extracted, c.entered) {
				discrepancies = append(discrepancies,
					fmt.Sprintf("%s: document shows %.2f, you entered %.2f", c.label, c.extracted, c.entered))
			}
		}
		if len(discrepancies) == 0 {
			return nil
		}
		return []models.Suggestion{{
			Type:        models.SuggestionValidationError,
			Priority:    models.PriorityHigh,
			Title:       fmt.Sprintf("T4 Discrepancies: %s", best.EmployerName),
			Description: strings.Join(discrepancies, "; "),
		}}
	}

	if income > 0 {
		for _, slip := range filing.T4Slips {
			if valuesMatch(income, slip.EmploymentIncome) {
				return []models.Suggestion{{
					Type:        models.SuggestionWarning,
					Priority:    models.PriorityMedium,
					Title:       "Possible Duplicate T4 Slip",
					Description: fmt.Sprintf("A T4 from %s already reports employment income close to %.2f. Check that this document is not already entered.", slip.EmployerName, income),
				}}
			}
		}
	}

	return []models.Suggestion{{
		Type:        models.SuggestionInfo,
		Priority:    models.PriorityLow,
		Title:       "New T4 Slip Detected",
		Description: fmt.Sprintf("The document %q does not match any entered T4 slip. Add it to your filing if it belongs to this tax year.", doc.DocumentName),
	}}
}

func (v *Validator) checkT5(doc models.ExtractedDocumentData, filing *models.Filing) []models.Suggestion {
	dividends := doc.Amount("dividends")
	interest := doc.Amount("interest")
	docTotal := dividends + interest
	if docTotal <= 0 {
		return nil
	}

	for _, slip := range filing.T5Slips {
		if !valuesMatch(docTotal, slip.Dividends+slip.Interest) {
			continue
		}
		var discrepancies []string
		if dividends > 0 && !valuesMatch(dividends, slip.Dividends) {
			discrepancies = append(discrepancies,
				fmt.Sprintf("Dividends: document shows %.2f, you entered %.2f", dividends, slip.Dividends))
		}
		if interest > 0 && !valuesMatch(interest, slip.Interest) {
			discrepancies = append(discrepancies,
				fmt.Sprintf("Interest: document shows %.2f, you entered %.2f", interest, slip.Interest))
		}
		if len(discrepancies) == 0 {
			return nil
		}
		return []models.Suggestion{{
			Type:        models.SuggestionValidationError,
			Priority:    models.PriorityHigh,
			Title:       fmt.Sprintf("T5 Discrepancies: %s", slip.PayerName),
			Description: strings.Join(discrepancies, "; "),
		}}
	}
	return nil
}

func (v *Validator) checkRRSPReceipt(doc models.ExtractedDocumentData, filing *models.Filing) []models.Suggestion {
	amount := doc.Amount("amount")
	if amount <= 0 {
		return nil
	}

	for _, c := range filing.RRSPContributions {
		if valuesMatch(amount, c.Amount) {
			return nil
		}
	}

	if len(filing.RRSPContributions) > 0 {
		return []models.Suggestion{{
			Type:        models.SuggestionInfo,
			Priority:    models.PriorityMedium,
			Title:       "RRSP Receipt Does Not Match Entered Contributions",
			Description: fmt.Sprintf("A receipt for %.2f does not match any entered RRSP contribution. Review whether a contribution is missing.", amount),
		}}
	}

	return []models.Suggestion{{
		Type:             models.SuggestionTip,
		Priority:         models.PriorityHigh,
		Title:            "RRSP Contribution Not Claimed",
		Description:      fmt.Sprintf("An RRSP receipt for %.2f was found but no contributions are entered. Claiming it would reduce your taxable income.", amount),
		EstimatedSavings: amount * assumedMarginalRate,
	}}
}

func (v *Validator) checkDonationReceipt(doc models.ExtractedDocumentData, filing *models.Filing) []models.Suggestion {
	amount := doc.Amount("amount")
	if amount <= 0 {
		return nil
	}

	for _, d := range filing.CharitableDonations {
		if valuesMatch(amount, d.Amount) {
			return nil
		}
	}

	if len(filing.CharitableDonations) == 0 {
		return []models.Suggestion{{
			Type:        models.SuggestionTip,
			Priority:    models.PriorityHigh,
			Title:       "Donation Receipt Not Claimed",
			Description: fmt.Sprintf("A donation receipt for %.2f was found but no donations are entered. Claiming it earns a charitable credit.", amount),
		}}
	}
	return nil
}
