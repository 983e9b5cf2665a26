package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/mapletax/backend/src/logger"
	"github.com/username/mapletax/backend/src/models"
	"github.com/username/mapletax/backend/src/services"
	"github.com/username/mapletax/backend/src/utils"
)

// DocumentHandler cross-checks extracted document data against the filing.
type DocumentHandler struct {
	filingService services.FilingService
}

func NewDocumentHandler(filingService services.FilingService) *DocumentHandler {
	return &DocumentHandler{
		filingService: filingService,
	}
}

// HandleCrossCheckDocument compares a single extracted document against the
// filing and returns discrepancies and matches.
func (h *DocumentHandler) HandleCrossCheckDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	taxYear, err := taxYearFromRequest(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var doc models.ExtractedDocumentData
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if doc.DocumentType == "" {
		utils.SendJSONError(w, "documentType is required", http.StatusBadRequest)
		return
	}

	result, err := h.filingService.CrossCheckDocument(userID, taxYear, doc)
	if err != nil {
		sendFilingError(w, err)
		return
	}

	logger.L.Info("Document cross-checked",
		"userID", userID, "taxYear", taxYear,
		"documentType", doc.DocumentType, "isValid", result.IsValid)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleValidateDocuments cross-checks a batch of extracted documents and
// returns the deduplicated suggestion list.
func (h *DocumentHandler) HandleValidateDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	taxYear, err := taxYearFromRequest(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var requestBody struct {
		Documents []models.ExtractedDocumentData `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	suggestions, err := h.filingService.ValidateAllDocuments(userID, taxYear, requestBody.Documents)
	if err != nil {
		sendFilingError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(suggestions)
}
