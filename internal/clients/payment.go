package clients

import (
	"context"
	"net/http"
)

type PaymentClient struct{ c *Client }

func NewPaymentClient(c *Client) *PaymentClient { return &PaymentClient{c: c} }

// CreateLink asks the payment service for a checkout redirect URL.
func (pc *PaymentClient) CreateLink(ctx context.Context) (string, error) {
	var url string
	err := pc.c.DoJSON(ctx, http.MethodGet, "/payments/create-link", nil, &url)
	return url, err
}
