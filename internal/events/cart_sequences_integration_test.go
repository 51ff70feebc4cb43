//go:build integration

package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arwoh/storefront-go/internal/db"
	"github.com/arwoh/storefront-go/internal/events"
	"github.com/arwoh/storefront-go/internal/testutil"
)

func TestCartSequencesPostgres(t *testing.T) {
	dsn := testutil.StartPostgres(t)
	ctx := context.Background()

	sqlDB, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	seqs := events.NewCartSequences(sqlDB)
	for want := int64(1); want <= 3; want++ {
		got, err := seqs.NextSequence(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := seqs.NextSequence(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}
