package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// ErrNoUser is returned for events that cannot be tied to a signed-in user.
var ErrNoUser = errors.New("event has no user")

// Sequencer numbers a user's cart events so consumers can order them.
type Sequencer interface {
	NextSequence(ctx context.Context, userID int64) (int64, error)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CartSequences keeps one counter per user in cart_event_sequences. The upsert
// is a single statement, so concurrent replicas never hand out the same number.
type CartSequences struct {
	db rowQuerier
}

func NewCartSequences(db *sql.DB) *CartSequences {
	return &CartSequences{db: db}
}

const nextCartSequence = `
INSERT INTO cart_event_sequences AS s (user_id, last_sequence, updated_at)
VALUES ($1, 1, NOW())
ON CONFLICT (user_id) DO UPDATE
SET last_sequence = s.last_sequence + 1,
    updated_at = NOW()
RETURNING s.last_sequence
`

func (c *CartSequences) NextSequence(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("%w: user %d", ErrNoUser, userID)
	}
	var seq int64
	if err := c.db.QueryRowContext(ctx, nextCartSequence, userID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next cart sequence for user %d: %w", userID, err)
	}
	return seq, nil
}

// cartPartition is the envelope partition key for a user's cart events.
func cartPartition(userID int64) string {
	return "cart-user-" + strconv.FormatInt(userID, 10)
}
