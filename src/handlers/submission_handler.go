package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/mapletax/backend/src/logger"
	"github.com/username/mapletax/backend/src/partners"
	"github.com/username/mapletax/backend/src/services"
	"github.com/username/mapletax/backend/src/utils"
)

type SubmissionHandler struct {
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// HandleSubmitFiling submits the user's filing to the configured partner.
// Validation failures come back as 422 with the partner's error list so the
// client can surface them field by field.
func (h *SubmissionHandler) HandleSubmitFiling(w http.ResponseWriter, r *http.Request) {
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

	resp, err := h.submissionService.SubmitFiling(userID, taxYear)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFilingSubmitted):
			utils.SendJSONError(w, "Filing has already been submitted", http.StatusConflict)
		case errors.Is(err, services.ErrValidationFailed):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(resp)
		default:
			logger.L.Error("Filing submission failed", "userID", userID, "taxYear", taxYear, "error", err)
			utils.SendJSONError(w, "Failed to submit filing", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleGetSubmissionStatus looks up a submission by confirmation number.
func (h *SubmissionHandler) HandleGetSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserIDFromContext(r.Context()); !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	confirmationNumber := r.PathValue("confirmationNumber")
	if confirmationNumber == "" {
		utils.SendJSONError(w, "confirmation number is required", http.StatusBadRequest)
		return
	}

	status, err := h.submissionService.CheckStatus(confirmationNumber)
	if err != nil {
		if errors.Is(err, partners.ErrSubmissionNotFound) {
			utils.SendJSONError(w, "Submission not found", http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, "Failed to check submission status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
