package handlers

import (
	"net/http"

	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/sirupsen/logrus"
)

// PopularHandler serves the popular movie and series lists
type PopularHandler struct {
	popular *controllers.PopularController
	logger  *logrus.Logger
}

// NewPopularHandler creates a new popular handler
func NewPopularHandler(popular *controllers.PopularController, logger *logrus.Logger) *PopularHandler {
	return &PopularHandler{popular: popular, logger: logger}
}

// Movies handles GET /api/popular/movies
func (h *PopularHandler) Movies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.popular.Movies(r.Context())
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(movies))
}

// Series handles GET /api/popular/tv
func (h *PopularHandler) Series(w http.ResponseWriter, r *http.Request) {
	series, err := h.popular.Series(r.Context())
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(series))
}

func viewsOf[T models.MediaItem](items []T) []models.MediaView {
	views := make([]models.MediaView, 0, len(items))
	for _, item := range items {
		views = append(views, models.ViewOf(item))
	}
	return views
}
