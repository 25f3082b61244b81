// Package store is the storage gateway. A Store hands out Sessions; a Session
// is the scoped handle one logical operation works through. Writes queued on a
// Session become visible only after Commit, which applies all of them or none.
package store

import (
	"context"
	"errors"

	"clientbook/model"
)

// ErrClosed is returned by a Session used after Close.
var ErrClosed = errors.New("session is closed")

// Store opens sessions on a backing store.
type Store interface {
	Open(ctx context.Context) (Session, error)
	Close() error
}

// Session is a scoped handle on the backing store. Reads always reflect the
// last committed state; queued writes do not show up in reads until Commit.
// New ids are assigned to the passed pointers during Commit.
type Session interface {
	Customers(ctx context.Context) ([]model.Customer, error)
	// Customer returns nil, nil when id does not exist.
	Customer(ctx context.Context, id uint) (*model.Customer, error)
	Orders(ctx context.Context) ([]model.Order, error)
	// Order returns nil, nil when id does not exist.
	Order(ctx context.Context, id uint) (*model.Order, error)
	OrdersOf(ctx context.Context, customerID uint) ([]model.Order, error)
	// CustomerWithOrders loads a customer with Orders filled in id order.
	// It returns nil, nil when id does not exist.
	CustomerWithOrders(ctx context.Context, id uint) (*model.Customer, error)

	AddCustomer(c *model.Customer)
	// SaveCustomer writes c under its own id, inserting it if absent.
	SaveCustomer(c *model.Customer)
	RemoveCustomer(c *model.Customer)
	AddOrder(o *model.Order)
	SaveOrder(o *model.Order)
	RemoveOrder(o *model.Order)
	RemoveOrdersOf(customerID uint)

	Commit(ctx context.Context) error
	// Close discards uncommitted work.
	Close() error
}

// Within opens a session, runs fn and closes the session whatever fn returns.
func Within(ctx context.Context, st Store, fn func(Session) error) (err error) {
	sess, err := st.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return fn(sess)
}
