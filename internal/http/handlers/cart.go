package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/http/dto"
	"github.com/arwoh/storefront-go/internal/middleware"
)

// CartHandler is the drawer API. It only dispatches intents to the
// request's store and renders what the store holds afterwards.
type CartHandler struct{}

func NewCartHandler() *CartHandler { return &CartHandler{} }

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	store := middleware.GetStore(r.Context())
	writeJSON(w, http.StatusOK, dto.NewCartView(store.View()))
}

func (h *CartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, s *cart.Store) error {
		_, err := s.Fetch(ctx)
		return err
	})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ImageID <= 0 {
		writeError(w, r, http.StatusBadRequest, "imageId is required")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	h.run(w, r, func(ctx context.Context, s *cart.Store) error {
		_, err := s.AddItem(ctx, req.ImageID, qty)
		return err
	})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := cartItemID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		writeError(w, r, http.StatusBadRequest, "quantity is required")
		return
	}
	h.run(w, r, func(ctx context.Context, s *cart.Store) error {
		_, err := s.UpdateQuantity(ctx, id, *req.Quantity)
		return err
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := cartItemID(w, r)
	if !ok {
		return
	}
	h.run(w, r, func(ctx context.Context, s *cart.Store) error {
		_, err := s.RemoveItem(ctx, id)
		return err
	})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, s *cart.Store) error {
		_, err := s.Clear(ctx)
		return err
	})
}

func (h *CartHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	open, err := middleware.GetStore(r.Context()).ToggleVisibility(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToggleResponse{Open: open})
}

func (h *CartHandler) run(w http.ResponseWriter, r *http.Request, op func(context.Context, *cart.Store) error) {
	store := middleware.GetStore(r.Context())
	if err := op(r.Context(), store); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewCartView(store.View()))
}

func cartItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "cartItemId"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid cartItemId")
		return 0, false
	}
	return id, true
}
