package tracker

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tx is a minimal transaction interface that hides GORM from callers.
// It offers basic data operations used by this project.
type Tx interface {
	Create(value any) error
	Save(value any) error
	Delete(value any, conds ...any) error
}

type gormTx struct{ db *gorm.DB }

func (r gormTx) Create(value any) error { return r.db.Omit(clause.Associations).Create(value).Error }
func (r gormTx) Save(value any) error   { return r.db.Omit(clause.Associations).Save(value).Error }
func (r gormTx) Delete(value any, conds ...any) error {
	return r.db.Delete(value, conds...).Error
}

// Operation represents a deferred operation to be executed inside the transaction.
// It receives an abstract Tx to avoid leaking GORM to the outside world.
type Operation func(tx Tx) error

// UnitOfWork collects changes and applies them in a single transaction on
// SaveChanges. Add/Update/RegisterDelete track entities; Do queues arbitrary
// operations that run after them. Reads are served from the root connection
// and never see queued changes.
type UnitOfWork struct {
	root *gorm.DB

	ops      []Operation
	toCreate []any
	toUpdate []any
	toDelete []any

	// afterCommit contains callbacks to run after a successful commit (outside tx)
	afterCommit []func()
	// afterRollback contains callbacks to run after a rollback (outside tx)
	afterRollback []func()

	mu sync.Mutex
}

// New creates a new UnitOfWork on an open GORM connection. No transaction is
// started until SaveChanges.
func New(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{root: db}
}

// AutoMigrate runs auto-migrations for the given models without exposing GORM.
func (r *UnitOfWork) AutoMigrate(models ...any) error { return r.root.AutoMigrate(models...) }

// Do queue a custom operation to be executed inside the transaction at commit time.
func (r *UnitOfWork) Do(op Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

// Add tracks an entity to be created on commit.
func (r *UnitOfWork) Add(entity any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toCreate = append(r.toCreate, entity)
}

// Update tracks an entity to be saved on commit. Save inserts when the
// primary key does not exist yet, which import relies on.
func (r *UnitOfWork) Update(entity any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toUpdate = append(r.toUpdate, entity)
}

// RegisterDelete tracks an entity to be deleted on commit.
func (r *UnitOfWork) RegisterDelete(entity any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toDelete = append(r.toDelete, entity)
}

// AfterCommit registers a callback to be executed after a successful commit (outside transaction).
func (r *UnitOfWork) AfterCommit(cb func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterCommit = append(r.afterCommit, cb)
}

// AfterRollback registers a callback to be executed after a rollback (outside transaction).
func (r *UnitOfWork) AfterRollback(cb func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterRollback = append(r.afterRollback, cb)
}

// SaveChanges commits all tracked changes in a single transaction.
func (r *UnitOfWork) SaveChanges(ctx context.Context) error { return r.Commit(ctx) }

// Commit begins a transaction and applies all pending operations.
// On error, the transaction is rolled back and the pending operations remain queued
// so the caller can inspect or retry if desired. Use Clear() to discard them.
func (r *UnitOfWork) Commit(ctx context.Context) error {
	r.mu.Lock()
	deferredOps := make([]Operation, len(r.ops))
	copy(deferredOps, r.ops)
	creates := append([]any(nil), r.toCreate...)
	updates := append([]any(nil), r.toUpdate...)
	deletes := append([]any(nil), r.toDelete...)
	afterCommit := append([]func(){}, r.afterCommit...)
	afterRollback := append([]func(){}, r.afterRollback...)
	r.mu.Unlock()

	txErr := r.root.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := gormTx{db: tx}
		// 1. Apply creates
		for _, e := range creates {
			if err := t.Create(e); err != nil {
				return err
			}
		}
		// 2. Apply updates
		for _, e := range updates {
			if err := t.Save(e); err != nil {
				return err
			}
		}
		// 3. Apply deletes
		for _, e := range deletes {
			if err := t.Delete(e); err != nil {
				return err
			}
		}
		// 4. Apply custom operations
		for _, op := range deferredOps {
			if err := op(t); err != nil {
				return err
			}
		}
		return nil
	})

	if txErr != nil {
		for _, cb := range afterRollback {
			// best-effort and safe do not shadow txErr if callback fails
			func() { defer func() { _ = recover() }(); cb() }()
		}
		return txErr
	}

	// On success, clear pending items and run after-commit callbacks
	r.Clear()
	for _, cb := range afterCommit {
		func() { defer func() { _ = recover() }(); cb() }()
	}
	return nil
}

// Clear discards all pending operations and tracked entities.
func (r *UnitOfWork) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
	r.toCreate = nil
	r.toUpdate = nil
	r.toDelete = nil
	r.afterCommit = nil
	r.afterRollback = nil
}

// HasPending returns true if there are any queued operations or tracked changes.
func (r *UnitOfWork) HasPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops) > 0 || len(r.toCreate) > 0 || len(r.toUpdate) > 0 || len(r.toDelete) > 0
}

// First fetches the first record that matches the conditions into out, without exposing GORM.
// A missing row is reported through IsNotFound.
func (r *UnitOfWork) First(ctx context.Context, out any, conds ...any) error {
	return r.root.WithContext(ctx).First(out, conds...).Error
}

// Find loads every matching record into out, ordered by primary key.
func (r *UnitOfWork) Find(ctx context.Context, out any, conds ...any) error {
	return r.root.WithContext(ctx).Order("id").Find(out, conds...).Error
}

// PreloadFirst preloads associations and fetches the first record by primary key.
func (r *UnitOfWork) PreloadFirst(ctx context.Context, out any, id any, preloads ...string) error {
	db := r.root.WithContext(ctx)
	for _, p := range preloads {
		db = db.Preload(p, func(tx *gorm.DB) *gorm.DB { return tx.Order("id") })
	}
	return db.First(out, id).Error
}

// IsNotFound reports whether err means First matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
