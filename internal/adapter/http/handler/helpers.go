package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/revrec/internal/adapter/feed"
	"github.com/iho/revrec/internal/adapter/http/dto"
	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedEventKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidContractID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidNature):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidFeedFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTooManyEvents):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrContractNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrContractAlreadyPosted):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrInconsistentLedger):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// requestFormat picks the feed format from the Content-Type header.
func requestFormat(r *http.Request) (feed.Format, error) {
	return feed.ParseFormat(r.Header.Get("Content-Type"))
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
