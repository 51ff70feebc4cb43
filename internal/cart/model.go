package cart

import "github.com/shopspring/decimal"

// Line is one purchasable image entry in a cart.
type Line struct {
	CartItemID int64           `json:"cartItemId"`
	ImageID    int64           `json:"imageId"`
	Title      string          `json:"title"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
}

// Snapshot is the full cart state as last returned by the remote cart service.
// It is replaced wholesale, never patched or recomputed locally.
type Snapshot struct {
	UserID     int64           `json:"userId"`
	Items      []Line          `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func (s Snapshot) IsEmpty() bool { return len(s.Items) == 0 }

// ItemCount is the number of units across all lines.
func (s Snapshot) ItemCount() int {
	n := 0
	for _, l := range s.Items {
		n += l.Quantity
	}
	return n
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Items != nil {
		out.Items = make([]Line, len(s.Items))
		copy(out.Items, s.Items)
	}
	return out
}

// Principal is the identity a store is bound to.
type Principal struct {
	UserID int64
	Role   string
	Token  string
}

func (p Principal) Authenticated() bool { return p.Token != "" && p.UserID != 0 }

// View is what the drawer renders.
type View struct {
	Open      bool
	IsLoading bool
	Snapshot  Snapshot
}
