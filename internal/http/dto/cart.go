package dto

import (
	"github.com/shopspring/decimal"

	"github.com/arwoh/storefront-go/internal/cart"
)

type CartLine struct {
	CartItemID int64           `json:"cartItemId"`
	ImageID    int64           `json:"imageId"`
	Title      string          `json:"title"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
}

// CartView is everything the drawer renders.
type CartView struct {
	Open       bool            `json:"open"`
	IsLoading  bool            `json:"isLoading"`
	UserID     int64           `json:"userId"`
	Items      []CartLine      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	ItemCount  int             `json:"itemCount"`
}

func NewCartView(v cart.View) CartView {
	out := CartView{
		Open:       v.Open,
		IsLoading:  v.IsLoading,
		UserID:     v.Snapshot.UserID,
		Items:      make([]CartLine, 0, len(v.Snapshot.Items)),
		TotalPrice: v.Snapshot.TotalPrice,
		ItemCount:  v.Snapshot.ItemCount(),
	}
	for _, l := range v.Snapshot.Items {
		out.Items = append(out.Items, CartLine{
			CartItemID: l.CartItemID,
			ImageID:    l.ImageID,
			Title:      l.Title,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
		})
	}
	return out
}

type AddCartItemRequest struct {
	ImageID int64 `json:"imageId"`
	// Defaults to 1 when omitted.
	Quantity *int `json:"quantity,omitempty"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type ToggleResponse struct {
	Open bool `json:"open"`
}
