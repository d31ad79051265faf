package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/sirupsen/logrus"
)

// errorResponse is the body of every non-2xx JSON response
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps domain errors onto HTTP statuses
func writeFailure(w http.ResponseWriter, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidRecord), errors.Is(err, models.ErrInvalidKind), errors.Is(err, models.ErrInvalidList):
		writeError(w, http.StatusBadRequest, err.Error())
	case models.IsCatalogError(err):
		logger.WithError(err).Warn("Catalog request failed")
		writeError(w, http.StatusBadGateway, "Catalog unavailable")
	default:
		logger.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
