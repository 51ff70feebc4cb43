package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/checkout"
	"github.com/arwoh/storefront-go/internal/clients"
	"github.com/arwoh/storefront-go/internal/middleware"
	"github.com/arwoh/storefront-go/internal/model"
)

const maxBodyBytes = 1 << 16

// statusClientClosedRequest is logged when the browser went away mid-call.
const statusClientClosedRequest = 499

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeStoreError maps cart, checkout and upstream failures onto HTTP.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *clients.APIError
	switch {
	case errors.Is(err, cart.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, cart.ErrForbiddenRole):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, cart.ErrStaleResponse):
		writeError(w, r, http.StatusConflict, cart.ErrStaleResponse.Error())
	case errors.As(err, &apiErr):
		writeError(w, r, http.StatusBadGateway, apiErr.Service+": "+apiErr.Message)
	case errors.Is(err, clients.ErrUnavailable),
		errors.Is(err, cart.ErrInvalidSnapshot),
		errors.Is(err, checkout.ErrInvalidPaymentURL):
		writeError(w, r, http.StatusBadGateway, "upstream request failed")
	case errors.Is(err, context.Canceled):
		writeError(w, r, statusClientClosedRequest, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "upstream request timed out")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
