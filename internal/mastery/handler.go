package mastery

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/studygarden/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// GetPassChance recomputes the subject's pass chance on demand. Read-only:
// decay since the last quiz counts, but nothing is written back, so repeated
// reads return the same number.
func (h *Handler) GetPassChance(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	subjectID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid subject ID"})
		return
	}

	percent, err := h.service.ComputePassChance(userID, subjectID)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Pass chance temporarily unavailable"})
		return
	}

	concepts, err := h.service.MasteryBreakdown(userID, subjectID)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Pass chance temporarily unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, models.PassChanceResponse{
		SubjectID:         subjectID,
		PassChancePercent: percent,
		ConceptCount:      len(concepts),
		ComputedAt:        time.Now().UTC(),
	})
}

// GetMasteryBreakdown returns the per-concept mastery view for a subject.
func (h *Handler) GetMasteryBreakdown(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	subjectID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid subject ID"})
		return
	}

	concepts, err := h.service.MasteryBreakdown(userID, subjectID)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load mastery"})
		return
	}
	if concepts == nil {
		concepts = []models.ConceptMasteryView{}
	}

	writeJSON(w, http.StatusOK, models.MasteryBreakdownResponse{SubjectID: subjectID, Concepts: concepts})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
