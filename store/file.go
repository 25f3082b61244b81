package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"clientbook/model"
)

const (
	tableCustomers = "customers"
	tableOrders    = "orders"

	// CustomersFile, OrdersFile and SequenceFile live in the FileStore directory.
	CustomersFile = "customers.csv"
	OrdersFile    = "orders.csv"
	SequenceFile  = "sequence.csv"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps records in CSV files inside one directory. Opening a
// session parses every file; committing rewrites every file. There is no
// locking, so two processes writing the same directory will lose updates.
type FileStore struct {
	dir string
	log zerolog.Logger
}

// NewFileStore returns a store over dir. Missing files read as empty tables.
func NewFileStore(dir string, log zerolog.Logger) *FileStore {
	return &FileStore{dir: dir, log: log}
}

// Open loads the whole data set into memory.
func (s *FileStore) Open(_ context.Context) (Session, error) {
	st := &fileState{seq: map[string]uint{}}
	var err error
	if st.customers, err = loadFile(s.path(CustomersFile), ReadCustomers); err != nil {
		return nil, err
	}
	if st.orders, err = loadFile(s.path(OrdersFile), readOrders); err != nil {
		return nil, err
	}
	seq, err := loadFile(s.path(SequenceFile), readSequence)
	if err != nil {
		return nil, err
	}
	if seq != nil {
		st.seq = seq
	}
	s.log.Debug().
		Str("dir", s.dir).
		Int("customers", len(st.customers)).
		Int("orders", len(st.orders)).
		Msg("file store loaded")
	return &fileSession{store: s, state: st}, nil
}

// Close is a no-op; sessions hold no open files.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(name string) string { return filepath.Join(s.dir, name) }

func loadFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, nil
		}
		return zero, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	defer f.Close()
	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %v", model.ErrIO, filepath.Base(path), err)
	}
	return v, nil
}

// day truncates t to its UTC calendar date, the precision the files keep.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fileState struct {
	customers []model.Customer
	orders    []model.Order
	seq       map[string]uint
}

func (st *fileState) clone() *fileState {
	seq := make(map[string]uint, len(st.seq))
	for k, v := range st.seq {
		seq[k] = v
	}
	return &fileState{
		customers: slices.Clone(st.customers),
		orders:    slices.Clone(st.orders),
		seq:       seq,
	}
}

// nextID is one past both the stored high-water mark and the largest id in
// use, so ids are never reused after a delete.
func (st *fileState) nextID(table string, inUse func(yield func(uint) bool)) uint {
	high := st.seq[table]
	for id := range inUse {
		high = max(high, id)
	}
	high++
	st.seq[table] = high
	return high
}

func (st *fileState) customerIDs(yield func(uint) bool) {
	for _, c := range st.customers {
		if !yield(c.ID) {
			return
		}
	}
}

func (st *fileState) orderIDs(yield func(uint) bool) {
	for _, o := range st.orders {
		if !yield(o.ID) {
			return
		}
	}
}

// fileOp applies one queued write to a state copy. Ids for new records are
// recorded in assign and only copied to the caller's pointers after the
// files are written.
type fileOp func(st *fileState, assign func(ptr *uint, id uint))

type fileSession struct {
	store   *FileStore
	state   *fileState
	pending []fileOp
	closed  bool
}

func (s *fileSession) Customers(context.Context) ([]model.Customer, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return slices.Clone(s.state.customers), nil
}

func (s *fileSession) Customer(_ context.Context, id uint) (*model.Customer, error) {
	if s.closed {
		return nil, ErrClosed
	}
	for _, c := range s.state.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fileSession) Orders(context.Context) ([]model.Order, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return slices.Clone(s.state.orders), nil
}

func (s *fileSession) Order(_ context.Context, id uint) (*model.Order, error) {
	if s.closed {
		return nil, ErrClosed
	}
	for _, o := range s.state.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, nil
}

func (s *fileSession) OrdersOf(_ context.Context, customerID uint) ([]model.Order, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var out []model.Order
	for _, o := range s.state.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fileSession) CustomerWithOrders(ctx context.Context, id uint) (*model.Customer, error) {
	c, err := s.Customer(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	c.Orders, err = s.OrdersOf(ctx, id)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(c.Orders, func(a, b model.Order) int { return cmp.Compare(a.ID, b.ID) })
	return c, nil
}

func (s *fileSession) AddCustomer(c *model.Customer) {
	s.pending = append(s.pending, func(st *fileState, assign func(*uint, uint)) {
		rec := *c
		rec.Orders = nil
		rec.RegistrationDate = day(rec.RegistrationDate)
		rec.ID = st.nextID(tableCustomers, st.customerIDs)
		st.customers = append(st.customers, rec)
		assign(&c.ID, rec.ID)
	})
}

func (s *fileSession) SaveCustomer(c *model.Customer) {
	rec := *c
	rec.Orders = nil
	rec.RegistrationDate = day(rec.RegistrationDate)
	s.pending = append(s.pending, func(st *fileState, _ func(*uint, uint)) {
		st.seq[tableCustomers] = max(st.seq[tableCustomers], rec.ID)
		if i := slices.IndexFunc(st.customers, func(x model.Customer) bool { return x.ID == rec.ID }); i >= 0 {
			st.customers[i] = rec
			return
		}
		st.customers = append(st.customers, rec)
	})
}

func (s *fileSession) RemoveCustomer(c *model.Customer) {
	id := c.ID
	s.pending = append(s.pending, func(st *fileState, _ func(*uint, uint)) {
		st.customers = slices.DeleteFunc(st.customers, func(x model.Customer) bool { return x.ID == id })
	})
}

func (s *fileSession) AddOrder(o *model.Order) {
	s.pending = append(s.pending, func(st *fileState, assign func(*uint, uint)) {
		rec := *o
		rec.OrderDate = day(rec.OrderDate)
		rec.ID = st.nextID(tableOrders, st.orderIDs)
		st.orders = append(st.orders, rec)
		assign(&o.ID, rec.ID)
	})
}

func (s *fileSession) SaveOrder(o *model.Order) {
	rec := *o
	rec.OrderDate = day(rec.OrderDate)
	s.pending = append(s.pending, func(st *fileState, _ func(*uint, uint)) {
		st.seq[tableOrders] = max(st.seq[tableOrders], rec.ID)
		if i := slices.IndexFunc(st.orders, func(x model.Order) bool { return x.ID == rec.ID }); i >= 0 {
			st.orders[i] = rec
			return
		}
		st.orders = append(st.orders, rec)
	})
}

func (s *fileSession) RemoveOrder(o *model.Order) {
	id := o.ID
	s.pending = append(s.pending, func(st *fileState, _ func(*uint, uint)) {
		st.orders = slices.DeleteFunc(st.orders, func(x model.Order) bool { return x.ID == id })
	})
}

func (s *fileSession) RemoveOrdersOf(customerID uint) {
	s.pending = append(s.pending, func(st *fileState, _ func(*uint, uint)) {
		st.orders = slices.DeleteFunc(st.orders, func(x model.Order) bool { return x.CustomerID == customerID })
	})
}

func (s *fileSession) Commit(context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if len(s.pending) == 0 {
		return nil
	}
	next := s.state.clone()
	type assignment struct {
		ptr *uint
		id  uint
	}
	var assigned []assignment
	for _, op := range s.pending {
		op(next, func(ptr *uint, id uint) { assigned = append(assigned, assignment{ptr, id}) })
	}
	s.pending = nil

	err := ReplaceFiles(
		FileWrite{Path: s.store.path(CustomersFile), Write: func(w io.Writer) error { return WriteCustomers(w, next.customers) }},
		FileWrite{Path: s.store.path(OrdersFile), Write: func(w io.Writer) error { return writeOrders(w, next.orders) }},
		FileWrite{Path: s.store.path(SequenceFile), Write: func(w io.Writer) error { return writeSequence(w, next.seq) }},
	)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", model.ErrIO, s.store.dir, err)
	}
	s.state = next
	for _, a := range assigned {
		*a.ptr = a.id
	}
	s.store.log.Debug().
		Str("dir", s.store.dir).
		Int("customers", len(next.customers)).
		Int("orders", len(next.orders)).
		Msg("file store committed")
	return nil
}

func (s *fileSession) Close() error {
	s.pending = nil
	s.closed = true
	return nil
}
