package store_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientbook/db"
	"clientbook/model"
	"clientbook/store"
)

func openSQL(t *testing.T) *store.SQLStore {
	t.Helper()
	gdb, err := db.Open(db.Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "store.db")})
	require.NoError(t, err)
	st := store.NewSQLStore(gdb, zerolog.Nop())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLSessionCommitAssignsIds(t *testing.T) {
	ctx := context.Background()
	st := openSQL(t)
	sess, err := st.Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	c := &model.Customer{FullName: "Ann", ContactInfo: "ann@mail.com", RegistrationDate: date("2024-01-02")}
	sess.AddCustomer(c)
	assert.Zero(t, c.ID)

	customers, err := sess.Customers(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers, "queued writes are not visible before commit")

	require.NoError(t, sess.Commit(ctx))
	assert.NotZero(t, c.ID)

	got, err := sess.Customer(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ann", got.FullName)

	missing, err := sess.Customer(ctx, c.ID+1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLSessionCloseDiscardsPending(t *testing.T) {
	ctx := context.Background()
	st := openSQL(t)

	sess, err := st.Open(ctx)
	require.NoError(t, err)
	sess.AddCustomer(&model.Customer{FullName: "Lost", ContactInfo: "x"})
	require.NoError(t, sess.Close())
	assert.ErrorIs(t, sess.Commit(ctx), store.ErrClosed)

	other, err := st.Open(ctx)
	require.NoError(t, err)
	defer other.Close()
	customers, err := other.Customers(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestSQLSessionCommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := openSQL(t)
	sess, err := st.Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	sess.SaveCustomer(&model.Customer{ID: 3, FullName: "Three", ContactInfo: "3"})
	require.NoError(t, sess.Commit(ctx))

	// the second insert collides with id 3 and takes the first one down with it
	sess.AddCustomer(&model.Customer{FullName: "New", ContactInfo: "n"})
	sess.AddCustomer(&model.Customer{ID: 3, FullName: "Dup", ContactInfo: "d"})
	require.ErrorIs(t, sess.Commit(ctx), model.ErrIO)

	customers, err := sess.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Three", customers[0].FullName)
}

func TestSQLSessionRemoveOrdersOf(t *testing.T) {
	ctx := context.Background()
	st := openSQL(t)
	sess, err := st.Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	for _, cid := range []uint{1, 2, 1} {
		sess.AddOrder(&model.Order{CustomerID: cid, Description: "item", Amount: 2})
	}
	require.NoError(t, sess.Commit(ctx))

	sess.RemoveOrdersOf(1)
	require.NoError(t, sess.Commit(ctx))

	orders, err := sess.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, uint(2), orders[0].CustomerID)
}

func TestSQLSessionCustomerWithOrders(t *testing.T) {
	ctx := context.Background()
	st := openSQL(t)
	sess, err := st.Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	c := &model.Customer{FullName: "Buyer", ContactInfo: "b"}
	sess.AddCustomer(c)
	require.NoError(t, sess.Commit(ctx))
	for _, d := range []string{"Desk", "Lamp"} {
		sess.AddOrder(&model.Order{CustomerID: c.ID, Description: d, Amount: 3})
	}
	sess.AddOrder(&model.Order{CustomerID: c.ID + 1, Description: "Other", Amount: 1})
	require.NoError(t, sess.Commit(ctx))

	got, err := sess.CustomerWithOrders(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Buyer", got.FullName)
	require.Len(t, got.Orders, 2)
	assert.Equal(t, "Desk", got.Orders[0].Description)
	assert.Equal(t, "Lamp", got.Orders[1].Description)

	missing, err := sess.CustomerWithOrders(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLSessionLogsCommitAndRollback(t *testing.T) {
	ctx := context.Background()
	gdb, err := db.Open(db.Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "log.db")})
	require.NoError(t, err)
	var buf bytes.Buffer
	st := store.NewSQLStore(gdb, zerolog.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { _ = st.Close() })

	sess, err := st.Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	sess.SaveCustomer(&model.Customer{ID: 1, FullName: "One", ContactInfo: "1"})
	require.NoError(t, sess.Commit(ctx))
	assert.Contains(t, buf.String(), "sql session committed")
	assert.NotContains(t, buf.String(), "rolled back")

	buf.Reset()
	sess.AddCustomer(&model.Customer{ID: 1, FullName: "Dup", ContactInfo: "d"})
	require.ErrorIs(t, sess.Commit(ctx), model.ErrIO)
	assert.Contains(t, buf.String(), "sql session rolled back")
	assert.NotContains(t, buf.String(), "committed")
}
