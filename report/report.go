// Package report writes flat CSV exports of customers and orders. Each report
// replaces its destination file; a failed report leaves the old file alone.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"clientbook/model"
	"clientbook/records"
	"clientbook/store"
)

// Destination file names inside the report directory.
const (
	CustomersFile       = "customer_report.csv"
	OrdersFile          = "orders_report.csv"
	CustomersByDateFile = "customers_by_date_report.csv"
)

var (
	customerColumns = []string{"id", "full_name", "contact_info", "registration_date", "notes"}
	orderColumns    = []string{"id", "customer_name", "description", "amount", "order_date"}
)

// Generator produces the three reports from one session.
type Generator struct {
	repo   *records.Repository
	search *records.Search
	dir    string
	log    zerolog.Logger
}

// NewGenerator writes reports into dir.
func NewGenerator(repo *records.Repository, search *records.Search, dir string, log zerolog.Logger) *Generator {
	return &Generator{repo: repo, search: search, dir: dir, log: log}
}

// Customers writes every customer and returns the file path.
func (g *Generator) Customers(ctx context.Context) (string, error) {
	customers, err := g.repo.GetCustomers(ctx)
	if err != nil {
		return "", err
	}
	return g.write(CustomersFile, len(customers), func(w io.Writer) error {
		return WriteCustomers(w, customers)
	})
}

// CustomersByDate writes customers registered within r, bounds included.
func (g *Generator) CustomersByDate(ctx context.Context, r model.DateRange) (string, error) {
	customers, err := g.search.ByRegistrationDate(ctx, r)
	if err != nil {
		return "", err
	}
	return g.write(CustomersByDateFile, len(customers), func(w io.Writer) error {
		return WriteCustomers(w, customers)
	})
}

// Orders writes every order with its customer's name. An order whose
// customer no longer exists aborts the report with model.ErrMissingReference.
func (g *Generator) Orders(ctx context.Context) (string, error) {
	orders, err := g.repo.GetOrders(ctx)
	if err != nil {
		return "", err
	}
	customers, err := g.repo.GetCustomers(ctx)
	if err != nil {
		return "", err
	}
	names := make(map[uint]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.FullName
	}
	rows, err := OrderRows(orders, names)
	if err != nil {
		return "", err
	}
	return g.write(OrdersFile, len(orders), func(w io.Writer) error {
		return writeRows(w, orderColumns, rows)
	})
}

func (g *Generator) write(name string, n int, fn func(io.Writer) error) (string, error) {
	path := filepath.Join(g.dir, name)
	if err := store.ReplaceFiles(store.FileWrite{Path: path, Write: fn}); err != nil {
		return "", fmt.Errorf("%w: write report %s: %v", model.ErrIO, path, err)
	}
	g.log.Debug().Str("path", path).Int("rows", n).Msg("report written")
	return path, nil
}

// WriteCustomers writes the customer report layout.
func WriteCustomers(w io.Writer, customers []model.Customer) error {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(c.ID), 10),
			c.FullName,
			c.ContactInfo,
			c.RegistrationDate.UTC().Format(model.DateLayout),
			c.Notes,
		})
	}
	return writeRows(w, customerColumns, rows)
}

// OrderRows joins orders with customer names. It fails on the first order
// whose customer id is missing from names.
func OrderRows(orders []model.Order, names map[uint]string) ([][]string, error) {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		name, ok := names[o.CustomerID]
		if !ok {
			return nil, fmt.Errorf("%w: order %d references customer %d", model.ErrMissingReference, o.ID, o.CustomerID)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(o.ID), 10),
			name,
			o.Description,
			decimal.NewFromFloat(o.Amount).StringFixed(2),
			o.OrderDate.UTC().Format(model.DateLayout),
		})
	}
	return rows, nil
}

func writeRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
