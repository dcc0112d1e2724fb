package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/services"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Warnw("encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

type userMessager interface {
	UserMessage() string
}

// writeServiceError maps service errors onto HTTP statuses. Upstream
// failures keep the backend's message; unexpected errors are logged and
// hidden from the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var um userMessager
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrTooFewScenarios),
		errors.Is(err, domain.ErrTooManyScenarios):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotOptimized):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.As(err, &um):
		writeError(w, r, http.StatusBadGateway, um.UserMessage())
	default:
		zap.S().Errorw("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads exactly one JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
