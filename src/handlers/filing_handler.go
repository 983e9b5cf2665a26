package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/username/mapletax/backend/src/config"
	"github.com/username/mapletax/backend/src/logger"
	"github.com/username/mapletax/backend/src/models"
	"github.com/username/mapletax/backend/src/services"
	"github.com/username/mapletax/backend/src/utils"
)

const maxRecordPayloadBytes = 64 * 1024

type FilingHandler struct {
	filingService services.FilingService
}

func NewFilingHandler(filingService services.FilingService) *FilingHandler {
	return &FilingHandler{
		filingService: filingService,
	}
}

// taxYearFromRequest reads the optional ?year= query parameter, falling back
// to the configured filing year.
func taxYearFromRequest(r *http.Request) (int, error) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return config.Cfg.TaxYear, nil
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, fmt.Errorf("invalid year parameter: %s", yearStr)
	}
	return year, nil
}

func sendFilingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrFilingSubmitted):
		utils.SendJSONError(w, "Filing has already been submitted and can no longer be modified", http.StatusConflict)
	case errors.Is(err, models.ErrRecordNotFound):
		utils.SendJSONError(w, "Record not found", http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidRecord):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *FilingHandler) HandleGetFiling(w http.ResponseWriter, r *http.Request) {
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

	filing, err := h.filingService.GetOrCreateFiling(userID, taxYear)
	if err != nil {
		sendFilingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filing)
}

func (h *FilingHandler) HandleUpdatePersonalInfo(w http.ResponseWriter, r *http.Request) {
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

	var info models.PersonalInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	filing, err := h.filingService.UpdatePersonalInfo(userID, taxYear, info)
	if err != nil {
		if errors.Is(err, services.ErrFilingSubmitted) {
			sendFilingError(w, err)
			return
		}
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filing)
}

func (h *FilingHandler) HandleUpdateDeductions(w http.ResponseWriter, r *http.Request) {
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

	var fields models.DeductionFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	filing, err := h.filingService.UpdateDeductionFields(userID, taxYear, fields)
	if err != nil {
		sendFilingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filing)
}

func (h *FilingHandler) HandleAddRecord(w http.ResponseWriter, r *http.Request) {
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

	list := models.RecordList(r.PathValue("list"))
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxRecordPayloadBytes))
	if err != nil {
		utils.SendJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	filing, err := h.filingService.AddRecord(userID, taxYear, list, payload)
	if err != nil {
		sendFilingError(w, err)
		return
	}

	logger.L.Info("Record added", "userID", userID, "taxYear", taxYear, "list", list)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(filing)
}

func (h *FilingHandler) HandleUpdateRecord(w http.ResponseWriter, r *http.Request) {
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

	list := models.RecordList(r.PathValue("list"))
	recordID := r.PathValue("id")
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxRecordPayloadBytes))
	if err != nil {
		utils.SendJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	filing, err := h.filingService.UpdateRecord(userID, taxYear, list, recordID, payload)
	if err != nil {
		sendFilingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filing)
}

func (h *FilingHandler) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
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

	list := models.RecordList(r.PathValue("list"))
	recordID := r.PathValue("id")

	filing, err := h.filingService.RemoveRecord(userID, taxYear, list, recordID)
	if err != nil {
		sendFilingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filing)
}

// HandleGetSummary returns the computed tax summary. Responses carry an ETag
// so clients polling the summary can avoid re-downloading unchanged results.
func (h *FilingHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.filingService.CalculateSummary(userID, taxYear)
	if err != nil {
		sendFilingError(w, err)
		return
	}

	etag, err := utils.GenerateETag(summary)
	if err != nil {
		logger.L.Error("Failed to generate ETag for tax summary", "userID", userID, "error", err)
	} else {
		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *FilingHandler) HandleGetSuggestions(w http.ResponseWriter, r *http.Request) {
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

	suggestions, err := h.filingService.GetSuggestions(userID, taxYear)
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
