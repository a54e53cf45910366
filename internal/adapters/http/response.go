package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
)

type apiError struct {
	Status    string `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	writeJSON(w, statusCode, map[string]any{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, statusCode int, code, message, requestID string) {
	writeJSON(w, statusCode, apiError{
		Status:    "error",
		Code:      code,
		Message:   message,
		RequestID: requestID,
	})
}

// mapDomainError translates domain sentinels into HTTP status and error code.
// Guard-clause failures on holds are conflicts the caller can recover from by
// requesting a fresh hold; expiry gets 410 to distinguish TTL loss from races.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrIdempotencyRequired):
		return http.StatusBadRequest, "idempotency_key_required"
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return http.StatusConflict, "idempotency_conflict"
	case errors.Is(err, domain.ErrInsufficientInventory):
		return http.StatusConflict, "insufficient_inventory"
	case errors.Is(err, domain.ErrReservationNotPending):
		return http.StatusConflict, "reservation_not_pending"
	case errors.Is(err, domain.ErrAlreadyFinalized):
		return http.StatusConflict, "already_finalized"
	case errors.Is(err, domain.ErrReservationExpired):
		return http.StatusGone, "reservation_expired"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
