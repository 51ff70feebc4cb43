package session

import (
	"errors"
	"time"

	"github.com/arwoh/storefront-go/internal/cart"
)

var ErrNotFound = errors.New("session not found")

// Session ties a browser to the credentials it signed in with.
type Session struct {
	ID        string
	UserID    int64
	Role      string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s Session) Principal() cart.Principal {
	return cart.Principal{UserID: s.UserID, Role: s.Role, Token: s.Token}
}
