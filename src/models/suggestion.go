package models

import "sort"

type SuggestionType string

const (
	SuggestionValidationError SuggestionType = "validation_error"
	SuggestionWarning         SuggestionType = "warning"
	SuggestionInfo            SuggestionType = "info"
	SuggestionTip             SuggestionType = "tip"
)

type SuggestionPriority string

const (
	PriorityHigh   SuggestionPriority = "high"
	PriorityMedium SuggestionPriority = "medium"
	PriorityLow    SuggestionPriority = "low"
)

var priorityRank = map[SuggestionPriority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Suggestion is advisory output surfaced to the user. A validation_error
// suggestion is the only "error" the engines produce.
type Suggestion struct {
	Type             SuggestionType     `json:"type"`
	Priority         SuggestionPriority `json:"priority"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	EstimatedSavings float64            `json:"estimatedSavings,omitempty"`
}

// SortByPriority orders suggestions high, medium, low, preserving the
// original order within each tier.
func SortByPriority(suggestions []Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return priorityRank[suggestions[i].Priority] < priorityRank[suggestions[j].Priority]
	})
}

// DedupeByTitle keeps the first suggestion for each title and drops the rest.
func DedupeByTitle(suggestions []Suggestion) []Suggestion {
	seen := make(map[string]bool, len(suggestions))
	out := suggestions[:0:0]
	for _, s := range suggestions {
		if seen[s.Title] {
			continue
		}
		seen[s.Title] = true
		out = append(out, s)
	}
	return out
}

// ValidationResult is the cross-validation contract: IsValid is false only
// when a validation_error suggestion is present. Matches is reserved.
type ValidationResult struct {
	IsValid       bool            `json:"isValid"`
	Discrepancies []Suggestion    `json:"discrepancies"`
	Matches       []DocumentMatch `json:"matches"`
}

// DocumentMatch links an extracted document to the record it matched.
type DocumentMatch struct {
	DocumentName string `json:"documentName"`
	RecordID     string `json:"recordId"`
	Score        int    `json:"score"`
}
