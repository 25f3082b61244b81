// Package records holds the customer and order repository and the search
// functions layered on it. Every method works through one store.Session;
// not-found comes back as a nil record or false, never as an error.
package records

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"clientbook/model"
	"clientbook/store"
)

// Repository performs CRUD on customers and orders.
type Repository struct {
	sess   store.Session
	policy DeletePolicy
	log    zerolog.Logger
	now    func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithDeletePolicy sets what happens to orders when their customer is deleted.
func WithDeletePolicy(p DeletePolicy) Option {
	return func(r *Repository) { r.policy = p }
}

// WithLogger sets the logger for mutation events.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Repository) { r.log = l }
}

// WithClock overrides the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// NewRepository binds a repository to sess. The default delete policy is Restrict.
func NewRepository(sess store.Session, opts ...Option) *Repository {
	r := &Repository{
		sess:   sess,
		policy: Restrict,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", model.Invalid(field, "must not be empty")
	}
	return v, nil
}

// ValidateAmount accepts finite amounts greater than zero.
func ValidateAmount(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return model.Invalid("amount", "must be a finite number")
	}
	if a <= 0 {
		return model.Invalid("amount", "must be greater than zero")
	}
	return nil
}

func validateCustomer(c *model.Customer) error {
	var err error
	if c.FullName, err = requireText("full_name", c.FullName); err != nil {
		return err
	}
	if c.ContactInfo, err = requireText("contact_info", c.ContactInfo); err != nil {
		return err
	}
	return nil
}

func validateOrder(o *model.Order) error {
	var err error
	if o.Description, err = requireText("description", o.Description); err != nil {
		return err
	}
	return ValidateAmount(o.Amount)
}

// CreateCustomer stores a new customer registered now.
func (r *Repository) CreateCustomer(ctx context.Context, fullName, contact, notes string) (*model.Customer, error) {
	c := &model.Customer{
		FullName:         fullName,
		ContactInfo:      contact,
		Notes:            notes,
		RegistrationDate: r.now().UTC(),
	}
	if err := validateCustomer(c); err != nil {
		return nil, err
	}
	r.sess.AddCustomer(c)
	if err := r.sess.Commit(ctx); err != nil {
		return nil, err
	}
	r.log.Debug().Uint("customer_id", c.ID).Msg("customer created")
	return c, nil
}

// GetCustomers returns every customer.
func (r *Repository) GetCustomers(ctx context.Context) ([]model.Customer, error) {
	return r.sess.Customers(ctx)
}

// GetCustomerByID returns nil, nil when id is unknown.
func (r *Repository) GetCustomerByID(ctx context.Context, id uint) (*model.Customer, error) {
	return r.sess.Customer(ctx, id)
}

// GetCustomerWithOrders returns customer id with its orders attached, or
// nil, nil when id is unknown.
func (r *Repository) GetCustomerWithOrders(ctx context.Context, id uint) (*model.Customer, error) {
	return r.sess.CustomerWithOrders(ctx, id)
}

// GetCustomerOrders returns the orders placed by customer id.
func (r *Repository) GetCustomerOrders(ctx context.Context, id uint) ([]model.Order, error) {
	return r.sess.OrdersOf(ctx, id)
}

// UpdateCustomer merges upd into the stored customer and returns the result,
// or nil, nil when id is unknown.
func (r *Repository) UpdateCustomer(ctx context.Context, id uint, upd model.CustomerUpdate) (*model.Customer, error) {
	c, err := r.sess.Customer(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	if upd.FullName != nil && strings.TrimSpace(*upd.FullName) != "" {
		c.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.ContactInfo != nil && strings.TrimSpace(*upd.ContactInfo) != "" {
		c.ContactInfo = strings.TrimSpace(*upd.ContactInfo)
	}
	if upd.Notes != nil {
		c.Notes = *upd.Notes
	}
	r.sess.SaveCustomer(c)
	if err := r.sess.Commit(ctx); err != nil {
		return nil, err
	}
	r.log.Debug().Uint("customer_id", id).Msg("customer updated")
	return c, nil
}

// DeleteCustomer removes customer id and reports whether it existed. The
// repository's DeletePolicy decides what happens to the customer's orders.
func (r *Repository) DeleteCustomer(ctx context.Context, id uint) (bool, error) {
	c, err := r.sess.Customer(ctx, id)
	if err != nil || c == nil {
		return false, err
	}
	switch r.policy {
	case Restrict:
		orders, err := r.sess.OrdersOf(ctx, id)
		if err != nil {
			return false, err
		}
		if len(orders) > 0 {
			return false, fmt.Errorf("%w: customer %d has %d orders", model.ErrHasOrders, id, len(orders))
		}
	case Cascade:
		r.sess.RemoveOrdersOf(id)
	case Orphan:
	default:
		return false, fmt.Errorf("unknown delete policy %q", r.policy)
	}
	r.sess.RemoveCustomer(c)
	if err := r.sess.Commit(ctx); err != nil {
		return false, err
	}
	r.log.Debug().Uint("customer_id", id).Str("policy", string(r.policy)).Msg("customer deleted")
	return true, nil
}

// RestoreCustomers writes customers under their own ids, replacing records
// that already exist. Either every customer is valid and stored, or none is.
func (r *Repository) RestoreCustomers(ctx context.Context, customers []model.Customer) error {
	for i := range customers {
		c := &customers[i]
		if c.ID == 0 {
			return model.Invalid("id", fmt.Sprintf("record %d has no id", i+1))
		}
		if err := validateCustomer(c); err != nil {
			return fmt.Errorf("customer %d: %w", c.ID, err)
		}
		if c.RegistrationDate.IsZero() {
			c.RegistrationDate = r.now().UTC()
		}
	}
	for i := range customers {
		r.sess.SaveCustomer(&customers[i])
	}
	if err := r.sess.Commit(ctx); err != nil {
		return err
	}
	r.log.Debug().Int("rows", len(customers)).Msg("customers restored")
	return nil
}

// CreateOrder stores a new order dated now for an existing customer.
func (r *Repository) CreateOrder(ctx context.Context, customerID uint, description string, amount float64) (*model.Order, error) {
	o := &model.Order{
		CustomerID:  customerID,
		Description: description,
		Amount:      amount,
		OrderDate:   r.now().UTC(),
	}
	if err := r.CreateOrders(ctx, []*model.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// CreateOrders stores new orders in one commit. A zero OrderDate defaults to
// now. Every order must be valid and reference an existing customer.
func (r *Repository) CreateOrders(ctx context.Context, orders []*model.Order) error {
	known := map[uint]bool{}
	for _, o := range orders {
		if err := validateOrder(o); err != nil {
			return err
		}
		if _, seen := known[o.CustomerID]; !seen {
			c, err := r.sess.Customer(ctx, o.CustomerID)
			if err != nil {
				return err
			}
			known[o.CustomerID] = c != nil
		}
		if !known[o.CustomerID] {
			return fmt.Errorf("%w: customer %d does not exist", model.ErrMissingReference, o.CustomerID)
		}
		if o.OrderDate.IsZero() {
			o.OrderDate = r.now().UTC()
		}
	}
	for _, o := range orders {
		r.sess.AddOrder(o)
	}
	if err := r.sess.Commit(ctx); err != nil {
		return err
	}
	for _, o := range orders {
		r.log.Debug().Uint("order_id", o.ID).Uint("customer_id", o.CustomerID).Msg("order created")
	}
	return nil
}

// GetOrders returns every order.
func (r *Repository) GetOrders(ctx context.Context) ([]model.Order, error) {
	return r.sess.Orders(ctx)
}

// GetOrderByID returns nil, nil when id is unknown.
func (r *Repository) GetOrderByID(ctx context.Context, id uint) (*model.Order, error) {
	return r.sess.Order(ctx, id)
}

// UpdateOrder merges upd into the stored order, or returns nil, nil when id
// is unknown.
func (r *Repository) UpdateOrder(ctx context.Context, id uint, upd model.OrderUpdate) (*model.Order, error) {
	o, err := r.sess.Order(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}
	if upd.Description != nil && strings.TrimSpace(*upd.Description) != "" {
		o.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Amount != nil {
		if err := ValidateAmount(*upd.Amount); err != nil {
			return nil, err
		}
		o.Amount = *upd.Amount
	}
	r.sess.SaveOrder(o)
	if err := r.sess.Commit(ctx); err != nil {
		return nil, err
	}
	r.log.Debug().Uint("order_id", id).Msg("order updated")
	return o, nil
}

// DeleteOrder removes order id and reports whether it existed.
func (r *Repository) DeleteOrder(ctx context.Context, id uint) (bool, error) {
	o, err := r.sess.Order(ctx, id)
	if err != nil || o == nil {
		return false, err
	}
	r.sess.RemoveOrder(o)
	if err := r.sess.Commit(ctx); err != nil {
		return false, err
	}
	r.log.Debug().Uint("order_id", id).Msg("order deleted")
	return true, nil
}
