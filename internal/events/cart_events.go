package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arwoh/storefront-go/internal/cart"
)

const (
	EventTypeCartSnapshotReplaced  = "CartSnapshotReplaced"
	EventTypeCheckoutLinkRequested = "CheckoutLinkRequested"

	cartSnapshotReplacedSchema  = "contracts/events/storefront/CartSnapshotReplaced.v1.payload.schema.json"
	checkoutLinkRequestedSchema = "contracts/events/storefront/CheckoutLinkRequested.v1.payload.schema.json"
)

type SnapshotLine struct {
	CartItemID int64           `json:"cartItemId"`
	ImageID    int64           `json:"imageId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

type CartSnapshotReplacedPayload struct {
	UserID     int64           `json:"userId"`
	Operation  string          `json:"operation"`
	Items      []SnapshotLine  `json:"items"`
	ItemCount  int             `json:"itemCount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Timestamp  time.Time       `json:"timestamp"`
}

type CheckoutLinkRequestedPayload struct {
	UserID      int64           `json:"userId"`
	ItemCount   int             `json:"itemCount"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	PaymentHost string          `json:"paymentHost"`
	Timestamp   time.Time       `json:"timestamp"`
}

func snapshotPayload(op string, userID int64, s cart.Snapshot, at time.Time) CartSnapshotReplacedPayload {
	p := CartSnapshotReplacedPayload{
		UserID:     userID,
		Operation:  op,
		Items:      make([]SnapshotLine, 0, len(s.Items)),
		ItemCount:  s.ItemCount(),
		TotalPrice: s.TotalPrice,
		Timestamp:  at,
	}
	for _, l := range s.Items {
		p.Items = append(p.Items, SnapshotLine{
			CartItemID: l.CartItemID,
			ImageID:    l.ImageID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
		})
	}
	return p
}
