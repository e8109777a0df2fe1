package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finquiz-service/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps a domain error onto the wire contract. Anything outside
// the taxonomy is an infrastructure failure: logged, surfaced as a 500 with
// the operation-specific fallback message and no internal detail.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInsufficientQuestions):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Session not found."})
	case errors.Is(err, domain.ErrAlreadySubmitted):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Session already submitted."})
	case errors.Is(err, domain.ErrExpired):
		writeJSON(w, http.StatusGone, errorBody{Error: "Session expired."})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Invalid admin token."})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: fallback})
	}
}

func parseJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}
