package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/export"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/predict"
	"github.com/richard-senior/rfef/pkg/service"
	"github.com/richard-senior/rfef/pkg/store"
)

// Response is the envelope every JSON endpoint answers with
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", err)
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Success: false, Error: msg})
}

// writeFailure maps domain errors onto status codes
func writeFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, league.ErrUnknownMatch),
		errors.Is(err, league.ErrUnknownTeam),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, league.ErrInvalidInput),
		errors.Is(err, league.ErrInvalidMatchday),
		errors.Is(err, league.ErrInvalidResult),
		errors.Is(err, league.ErrInvalidImport),
		errors.Is(err, league.ErrInvalidShare),
		errors.Is(err, predict.ErrInvalidScenario),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, service.ErrInvalidHistorical):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDatabaseUnavailable),
		errors.Is(err, service.ErrNoUploader):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
