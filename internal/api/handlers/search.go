package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/sirupsen/logrus"
)

// SearchHandler runs search cycles on behalf of clients
type SearchHandler struct {
	search *controllers.SearchController
	logger *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search *controllers.SearchController, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger}
}

// ServeHTTP handles GET /api/search?q=<query>[&kind=movie|tv]
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var (
		state controllers.SearchState
		err   error
	)
	if kindParam := r.URL.Query().Get("kind"); kindParam != "" {
		kind, perr := models.ParseMediaKind(kindParam)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		state, err = h.search.SearchKind(r.Context(), query, kind)
	} else {
		state, err = h.search.Search(r.Context(), query)
	}

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, state)
	case errors.Is(err, context.Canceled):
		// Superseded by a newer search
		writeJSON(w, http.StatusConflict, state)
	case models.IsCatalogError(err):
		h.logger.WithError(err).WithField("query", query).Warn("Search failed")
		writeJSON(w, http.StatusBadGateway, state)
	default:
		writeFailure(w, h.logger, err)
	}
}
