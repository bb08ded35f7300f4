package garden

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/studygarden/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// GetGarden returns the user's garden state and all plants.
func (h *Handler) GetGarden(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	gar, err := h.store.GetOrCreateGarden(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load garden"})
		return
	}

	plants, err := h.store.ListPlants(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load plants"})
		return
	}
	if plants == nil {
		plants = []models.GardenPlant{}
	}

	writeJSON(w, http.StatusOK, models.GardenResponse{Garden: *gar, Plants: plants})
}

// GetXPEvents returns recent XP events, newest first. Capped at 100.
func (h *Handler) GetXPEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	events, err := h.store.ListXPEvents(userID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load XP events"})
		return
	}
	if events == nil {
		events = []models.XPEvent{}
	}

	writeJSON(w, http.StatusOK, models.XPEventListResponse{Events: events, Total: len(events)})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
