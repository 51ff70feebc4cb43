package clients

import (
	"context"
	"net/http"
	"strconv"

	"github.com/arwoh/storefront-go/internal/cart"
)

// CartClient talks to the remote cart service. Every mutation answers with
// the full cart.
type CartClient struct{ c *Client }

var _ cart.Remote = (*CartClient)(nil)

func NewCartClient(c *Client) *CartClient { return &CartClient{c: c} }

type addCartItemRequest struct {
	ImageID  int64 `json:"imageId"`
	Quantity int   `json:"quantity"`
}

type updateCartItemRequest struct {
	CartItemID int64 `json:"cartItemId"`
	Quantity   int   `json:"quantity"`
}

func (cc *CartClient) GetCart(ctx context.Context) (cart.Snapshot, error) {
	var out cart.Snapshot
	err := cc.c.DoJSON(ctx, http.MethodGet, "/carts/me", nil, &out)
	return out, err
}

func (cc *CartClient) AddItem(ctx context.Context, imageID int64, quantity int) (cart.Snapshot, error) {
	var out cart.Snapshot
	err := cc.c.DoJSON(ctx, http.MethodPost, "/carts", addCartItemRequest{ImageID: imageID, Quantity: quantity}, &out)
	return out, err
}

func (cc *CartClient) UpdateItem(ctx context.Context, cartItemID int64, quantity int) (cart.Snapshot, error) {
	var out cart.Snapshot
	err := cc.c.DoJSON(ctx, http.MethodPut, "/carts/me", updateCartItemRequest{CartItemID: cartItemID, Quantity: quantity}, &out)
	return out, err
}

func (cc *CartClient) RemoveItem(ctx context.Context, cartItemID int64) (cart.Snapshot, error) {
	var out cart.Snapshot
	err := cc.c.DoJSON(ctx, http.MethodDelete, "/carts/me/"+strconv.FormatInt(cartItemID, 10), nil, &out)
	return out, err
}
