package handlers

import (
	"mime"
	"net/http"
	"strings"

	"github.com/arwoh/storefront-go/internal/checkout"
	"github.com/arwoh/storefront-go/internal/http/dto"
	"github.com/arwoh/storefront-go/internal/middleware"
)

type CheckoutHandler struct{ t *checkout.Trigger }

func NewCheckoutHandler(t *checkout.Trigger) *CheckoutHandler { return &CheckoutHandler{t: t} }

// Start hands the browser the payment page. A plain form post gets 303 so the
// whole page navigates. Script callers asking for JSON get 200 with paymentUrl
// and navigate themselves; fetch would otherwise follow the redirect
// cross-origin and never see the body.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	link, err := h.t.Start(r.Context(), middleware.GetStore(r.Context()))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if acceptsJSON(r) {
		writeJSON(w, http.StatusOK, dto.CheckoutResponse{PaymentURL: link})
		return
	}
	w.Header().Set("Location", link)
	writeJSON(w, http.StatusSeeOther, dto.CheckoutResponse{PaymentURL: link})
}

func acceptsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == "application/json" {
			return true
		}
	}
	return false
}
