package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"clientbook/db"
	"clientbook/model"
	"clientbook/tracker"
)

var _ Store = (*SQLStore)(nil)

// SQLStore keeps records in relational tables through GORM.
type SQLStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewSQLStore wraps an open, migrated connection (see db.Open).
func NewSQLStore(gdb *gorm.DB, log zerolog.Logger) *SQLStore {
	return &SQLStore{db: gdb, log: log}
}

// Open starts a session backed by a fresh unit of work.
func (s *SQLStore) Open(ctx context.Context) (Session, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: ping database: %v", model.ErrIO, err)
	}
	return &sqlSession{uow: tracker.New(s.db), log: s.log}, nil
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error { return db.Close(s.db) }

type sqlSession struct {
	uow    *tracker.UnitOfWork
	log    zerolog.Logger
	closed bool
}

func (s *sqlSession) Customers(ctx context.Context) ([]model.Customer, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var out []model.Customer
	if err := s.uow.Find(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: list customers: %v", model.ErrIO, err)
	}
	return out, nil
}

func (s *sqlSession) Customer(ctx context.Context, id uint) (*model.Customer, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var c model.Customer
	if err := s.uow.First(ctx, &c, id); err != nil {
		if tracker.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get customer %d: %v", model.ErrIO, id, err)
	}
	return &c, nil
}

func (s *sqlSession) Orders(ctx context.Context) ([]model.Order, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var out []model.Order
	if err := s.uow.Find(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", model.ErrIO, err)
	}
	return out, nil
}

func (s *sqlSession) Order(ctx context.Context, id uint) (*model.Order, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var o model.Order
	if err := s.uow.First(ctx, &o, id); err != nil {
		if tracker.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get order %d: %v", model.ErrIO, id, err)
	}
	return &o, nil
}

func (s *sqlSession) OrdersOf(ctx context.Context, customerID uint) ([]model.Order, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var out []model.Order
	if err := s.uow.Find(ctx, &out, "customer_id = ?", customerID); err != nil {
		return nil, fmt.Errorf("%w: list orders of customer %d: %v", model.ErrIO, customerID, err)
	}
	return out, nil
}

func (s *sqlSession) CustomerWithOrders(ctx context.Context, id uint) (*model.Customer, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var c model.Customer
	if err := s.uow.PreloadFirst(ctx, &c, id, "Orders"); err != nil {
		if tracker.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get customer %d with orders: %v", model.ErrIO, id, err)
	}
	return &c, nil
}

func (s *sqlSession) AddCustomer(c *model.Customer)    { s.uow.Add(c) }
func (s *sqlSession) SaveCustomer(c *model.Customer)   { s.uow.Update(c) }
func (s *sqlSession) RemoveCustomer(c *model.Customer) { s.uow.RegisterDelete(c) }
func (s *sqlSession) AddOrder(o *model.Order)          { s.uow.Add(o) }
func (s *sqlSession) SaveOrder(o *model.Order)         { s.uow.Update(o) }
func (s *sqlSession) RemoveOrder(o *model.Order)       { s.uow.RegisterDelete(o) }

func (s *sqlSession) RemoveOrdersOf(customerID uint) {
	s.uow.Do(func(tx tracker.Tx) error {
		return tx.Delete(&model.Order{}, "customer_id = ?", customerID)
	})
}

func (s *sqlSession) Commit(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if !s.uow.HasPending() {
		return nil
	}
	s.uow.AfterCommit(func() { s.log.Debug().Msg("sql session committed") })
	s.uow.AfterRollback(func() { s.log.Warn().Msg("sql session rolled back") })
	if err := s.uow.SaveChanges(ctx); err != nil {
		s.uow.Clear()
		return fmt.Errorf("%w: commit: %v", model.ErrIO, err)
	}
	return nil
}

func (s *sqlSession) Close() error {
	s.uow.Clear()
	s.closed = true
	return nil
}
