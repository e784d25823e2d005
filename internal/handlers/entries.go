package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Twahaaa/JOURNY/internal/apperr"
	"github.com/Twahaaa/JOURNY/internal/models"
	"github.com/Twahaaa/JOURNY/internal/services"
)

// entrySvc is wired once at startup from main.
var entrySvc *services.EntryService

// InitEntryHandlers injects the entry service used by the /api/entries routes.
func InitEntryHandlers(svc *services.EntryService) {
	entrySvc = svc
}

// submitTimeout bounds the whole submission: store writes plus one upstream
// completion round trip (itself capped at the analysis timeout).
const submitTimeout = 90 * time.Second

type SubmitEntryRequest struct {
	EntryText string `json:"entryText"`
}

type SubmitEntryResponse struct {
	Report  models.Analysis `json:"report"`
	EntryID string          `json:"entryId"`
}

type DeleteEntryResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the error envelope for every /api/entries failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// writeServiceError converts a service-layer error to the JSON envelope.
// Nothing escapes the request boundary.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, apperr.StatusOf(err), apperr.MessageOf(err), apperr.DetailsOf(err))
}

// SubmitEntry handles POST /api/entries: persist the raw text, request an
// analysis, attach it to the entry and return the report.
//
// When the upstream call fails the created entry stays PROCESSING with no
// analysis; the caller just sees the failure.
func SubmitEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req SubmitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Entry text is required", "")
		return
	}
	if req.EntryText == "" {
		writeError(w, http.StatusBadRequest, "Entry text is required", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), submitTimeout)
	defer cancel()

	result, err := entrySvc.SubmitForAnalysis(ctx, ownerID, req.EntryText)
	if err != nil {
		log.Printf("[SubmitEntry] analysis failed for owner %s: %v", ownerID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitEntryResponse{
		Report:  result.Analysis,
		EntryID: result.EntryID,
	})
}

// GetEntries handles GET /api/entries. With ?id= it returns a single owned
// entry; without it, all of the caller's entries, most recent first.
func GetEntries(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entryID := r.URL.Query().Get("id")
	if entryID != "" {
		entry, err := entrySvc.GetEntry(ctx, ownerID, entryID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
		return
	}

	entries, err := entrySvc.ListEntries(ctx, ownerID)
	if err != nil {
		log.Printf("[GetEntries] failed for owner %s: %v", ownerID, err)
		writeError(w, apperr.StatusOf(err), "Failed to fetch entries.", apperr.DetailsOf(err))
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// DeleteEntry handles DELETE /api/entries?id=<id>.
func DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	entryID := r.URL.Query().Get("id")
	if entryID == "" {
		writeError(w, http.StatusBadRequest, "Entry ID is required", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entry, err := entrySvc.DeleteEntry(ctx, ownerID, entryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteEntryResponse{
		Message: "Entry deleted successfully",
		ID:      entry.ID.Hex(),
	})
}
