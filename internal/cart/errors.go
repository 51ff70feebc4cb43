package cart

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("sign in to use the cart")
	ErrForbiddenRole   = errors.New("your account cannot hold a cart")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrStaleResponse   = errors.New("cart session changed while the request was in flight")
	ErrInvalidSnapshot = errors.New("cart service returned an invalid snapshot")
)

// ClearError reports how far Clear got before a remove failed.
type ClearError struct {
	Removed   int
	Remaining int
	Err       error
}

func (e *ClearError) Error() string {
	return fmt.Sprintf("clear cart: removed %d, %d remaining: %v", e.Removed, e.Remaining, e.Err)
}

func (e *ClearError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err was raised before any remote call.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrForbiddenRole) ||
		errors.Is(err, ErrInvalidQuantity)
}
