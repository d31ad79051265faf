package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/tracking"
	"github.com/sirupsen/logrus"
)

// TrackingHandler exposes the watched and watchlist lists
type TrackingHandler struct {
	tracking *controllers.TrackingController
	logger   *logrus.Logger
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(tracking *controllers.TrackingController, logger *logrus.Logger) *TrackingHandler {
	return &TrackingHandler{tracking: tracking, logger: logger}
}

// ToggleResponse is returned after a toggle
type ToggleResponse struct {
	List    models.List `json:"list"`
	Key     string      `json:"key"`
	Tracked bool        `json:"tracked"`
}

// MembershipResponse is returned by membership lookups
type MembershipResponse struct {
	Key     string `json:"key"`
	Tracked bool   `json:"tracked"`
	tracking.Membership
}

// List handles GET /api/{list}
func (h *TrackingHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := models.ParseList(r.PathValue("list"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	records, err := h.tracking.List(list)
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Toggle handles POST /api/{list}/toggle with a media item body
func (h *TrackingHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	list, err := models.ParseList(r.PathValue("list"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var view models.MediaView
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&view); err != nil {
		h.logger.WithError(err).Debug("Failed to decode toggle payload")
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	item, err := view.Item()
	if err != nil {
		writeError(w, http.StatusBadRequest, "media_type must be movie or tv")
		return
	}

	tracked, err := h.tracking.Toggle(r.Context(), list, item)
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{
		List:    list,
		Key:     models.KeyOf(item).String(),
		Tracked: tracked,
	})
}

// Membership handles GET /api/{list}/{kind}/{id}
func (h *TrackingHandler) Membership(w http.ResponseWriter, r *http.Request) {
	list, key, ok := h.target(w, r)
	if !ok {
		return
	}
	m, err := h.tracking.MembershipOf(r.Context(), key)
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	tracked := m.Watched
	if list == models.ListWatchlist {
		tracked = m.Watchlist
	}
	writeJSON(w, http.StatusOK, MembershipResponse{Key: key.String(), Tracked: tracked, Membership: m})
}

// Delete handles DELETE /api/{list}/{kind}/{id}
func (h *TrackingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	list, key, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.tracking.Remove(r.Context(), list, key); err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// target parses the list and key path values, writing the error response on failure
func (h *TrackingHandler) target(w http.ResponseWriter, r *http.Request) (models.List, models.Key, bool) {
	list, err := models.ParseList(r.PathValue("list"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", models.Key{}, false
	}
	kind, err := models.ParseMediaKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", models.Key{}, false
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 0 {
		writeError(w, http.StatusBadRequest, "id must be a non-negative integer")
		return "", models.Key{}, false
	}
	return list, models.Key{ID: id, Kind: kind}, true
}
