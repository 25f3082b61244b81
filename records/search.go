package records

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"clientbook/model"
	"clientbook/store"
)

// Search filters customers on a single field. Every call rescans the full
// customer set; a query that matches nothing yields an empty slice.
type Search struct {
	sess store.Session
}

// NewSearch binds a search to sess.
func NewSearch(sess store.Session) *Search {
	return &Search{sess: sess}
}

// ByName matches customers whose full name contains q, ignoring case.
func (s *Search) ByName(ctx context.Context, q string) ([]model.Customer, error) {
	return s.matchText(ctx, q, func(c model.Customer) string { return c.FullName })
}

// ByContact matches customers whose contact info contains q, ignoring case.
func (s *Search) ByContact(ctx context.Context, q string) ([]model.Customer, error) {
	return s.matchText(ctx, q, func(c model.Customer) string { return c.ContactInfo })
}

// ByNotes matches customers whose notes contain q, ignoring case. Customers
// without notes never match.
func (s *Search) ByNotes(ctx context.Context, q string) ([]model.Customer, error) {
	return s.matchText(ctx, q, func(c model.Customer) string { return c.Notes })
}

// ByRegistrationDate returns customers registered within r, bounds included.
func (s *Search) ByRegistrationDate(ctx context.Context, r model.DateRange) ([]model.Customer, error) {
	return s.filter(ctx, func(c model.Customer) bool { return r.Contains(c.RegistrationDate) })
}

func (s *Search) matchText(ctx context.Context, q string, field func(model.Customer) string) ([]model.Customer, error) {
	fold := cases.Fold()
	needle := fold.String(q)
	return s.filter(ctx, func(c model.Customer) bool {
		v := field(c)
		return v != "" && strings.Contains(fold.String(v), needle)
	})
}

func (s *Search) filter(ctx context.Context, keep func(model.Customer) bool) ([]model.Customer, error) {
	all, err := s.sess.Customers(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.Customer{}
	for _, c := range all {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out, nil
}
