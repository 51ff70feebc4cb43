package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/checkout"
	"github.com/arwoh/storefront-go/internal/clients"
	"github.com/arwoh/storefront-go/internal/model"
)

func TestWriteStoreError(t *testing.T) {
	tests := map[string]struct {
		err     error
		status  int
		message string
	}{
		"unauthenticated":   {cart.ErrUnauthenticated, http.StatusUnauthorized, cart.ErrUnauthenticated.Error()},
		"wrong role":        {cart.ErrForbiddenRole, http.StatusForbidden, cart.ErrForbiddenRole.Error()},
		"bad quantity":      {cart.ErrInvalidQuantity, http.StatusBadRequest, cart.ErrInvalidQuantity.Error()},
		"empty cart":        {checkout.ErrEmptyCart, http.StatusConflict, checkout.ErrEmptyCart.Error()},
		"stale":             {cart.ErrStaleResponse, http.StatusConflict, cart.ErrStaleResponse.Error()},
		"rejected":          {&clients.APIError{Service: "cart-service", StatusCode: 200, Message: "Image already purchased"}, http.StatusBadGateway, "cart-service: Image already purchased"},
		"unreachable":       {fmt.Errorf("%w: dial tcp", clients.ErrUnavailable), http.StatusBadGateway, "upstream request failed"},
		"browser went away": {fmt.Errorf("get cart: %w", context.Canceled), statusClientClosedRequest, "request cancelled"},
		"timeout":           {context.DeadlineExceeded, http.StatusGatewayTimeout, "upstream request timed out"},
		"unknown":           {errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeStoreError(rr, httptest.NewRequest(http.MethodGet, "/me/cart", nil), tc.err)

			assert.Equal(t, tc.status, rr.Code)
			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.message, body.Error)
		})
	}
}
