package handlers

import (
	"net/http"

	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler reports tracking counts and the search session
type StatusHandler struct {
	tracking *controllers.TrackingController
	search   *controllers.SearchController
	logger   *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(tracking *controllers.TrackingController, search *controllers.SearchController, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		tracking: tracking,
		search:   search,
		logger:   logger,
	}
}

// ListStatus counts the records of one tracking list
type ListStatus struct {
	Total  int            `json:"total"`
	ByKind map[string]int `json:"by_kind"`
}

// StatusResponse represents the status response
type StatusResponse struct {
	Lists       map[string]ListStatus `json:"lists"`
	SearchPhase models.SearchPhase    `json:"search_phase"`
	SearchQuery string                `json:"search_query"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Lists: make(map[string]ListStatus, len(models.Lists)),
	}

	for _, list := range models.Lists {
		records, err := h.tracking.List(list)
		if err != nil {
			writeFailure(w, h.logger, err)
			return
		}
		status := ListStatus{
			Total:  len(records),
			ByKind: map[string]int{string(models.MediaKindMovie): 0, string(models.MediaKindTV): 0},
		}
		// Count by kind
		for _, rec := range records {
			status.ByKind[string(rec.MediaKind)]++
		}
		response.Lists[string(list)] = status
	}

	state := h.search.State()
	response.SearchPhase = state.Phase
	response.SearchQuery = state.Query

	writeJSON(w, http.StatusOK, response)
}
