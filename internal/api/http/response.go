package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps domain errors onto HTTP statuses. Validation failures are
// 400, missing records 404, business-rule conflicts 409. An over-release is an
// internal invariant violation and is reported as 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		rateErr       *domain.InvalidRateTypeError
		lineErr       *domain.InvalidLineInputError
		availErr      *domain.InsufficientAvailabilityError
		releaseErr    *domain.OverReleaseError
		transitionErr *domain.InvalidStateTransitionError
		adjustErr     *domain.InvalidStockAdjustmentError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrCustomerRequired),
		errors.Is(err, domain.ErrEmptyRental),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidReturnTime),
		errors.As(err, &rateErr),
		errors.As(err, &lineErr):
		status = http.StatusBadRequest
	case errors.As(err, &availErr), errors.As(err, &transitionErr), errors.As(err, &adjustErr):
		status = http.StatusConflict
	case errors.As(err, &releaseErr):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
