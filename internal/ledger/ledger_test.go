package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	require.NoError(t, db.Ping(ctx))

	first := Entry{ID: "a", Fingerprint: "deadbeefcafefeed", Timestamp: 1, Meta: "{}", Width: 64, Height: 64, Bits: 800}
	second := Entry{ID: "b", Fingerprint: "deadbeefcafefeed", Timestamp: 2, Meta: `{"k":"v"}`, Width: 64, Height: 64, Bits: 880}
	other := Entry{ID: "c", Fingerprint: "0000000000000000", Timestamp: 3, Meta: "{}", Width: 8, Height: 8, Bits: 8}
	for _, e := range []Entry{first, second, other} {
		require.NoError(t, db.Record(ctx, e))
	}

	t.Run("lookup", func(t *testing.T) {
		got, err := db.Lookup(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := db.Lookup(ctx, "zzz")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("duplicate id", func(t *testing.T) {
		assert.Error(t, db.Record(ctx, first))
	})

	t.Run("by fingerprint", func(t *testing.T) {
		got, err := db.ByFingerprint(ctx, "deadbeefcafefeed")
		require.NoError(t, err)
		assert.Equal(t, []Entry{second, first}, got)

		none, err := db.ByFingerprint(ctx, "ffffffffffffffff")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Record(ctx, Entry{ID: "x", Fingerprint: "fp", Meta: "{}"}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Lookup(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "fp", got.Fingerprint)
}
