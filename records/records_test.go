package records_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"clientbook/db"
	"clientbook/records"
	"clientbook/store"
)

// forEachStore runs fn once against a fresh file store and once against a
// fresh SQLite store.
func forEachStore(t *testing.T, fn func(t *testing.T, st store.Store)) {
	t.Helper()
	t.Run("csv", func(t *testing.T) {
		fn(t, store.NewFileStore(t.TempDir(), zerolog.Nop()))
	})
	t.Run("sqlite", func(t *testing.T) {
		gdb, err := db.Open(db.Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "test.db")})
		require.NoError(t, err)
		st := store.NewSQLStore(gdb, zerolog.Nop())
		t.Cleanup(func() { _ = st.Close() })
		fn(t, st)
	})
}

// session opens a session that is closed when the test ends.
func session(t *testing.T, st store.Store) store.Session {
	t.Helper()
	sess, err := st.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func fixedClock(day string) func() time.Time {
	d, err := time.Parse(time.DateOnly, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return d }
}

func newRepo(t *testing.T, st store.Store, opts ...records.Option) *records.Repository {
	t.Helper()
	opts = append([]records.Option{records.WithClock(fixedClock("2024-03-10"))}, opts...)
	return records.NewRepository(session(t, st), opts...)
}
