// Package exchange moves customers and orders in and out of CSV files.
//
// Customer files use the same layout as the file-backed store, so an export
// can be imported again with ids and text preserved. Order files carry the
// customer's full name instead of an id:
//
//	customer_name,order_date,description,amount
package exchange

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"clientbook/model"
	"clientbook/records"
	"clientbook/store"
)

// Exchange imports and exports through a repository.
type Exchange struct {
	repo *records.Repository
	log  zerolog.Logger
}

// New returns an Exchange bound to repo.
func New(repo *records.Repository, log zerolog.Logger) *Exchange {
	return &Exchange{repo: repo, log: log}
}

// OrdersResult counts the outcome of an orders import.
type OrdersResult struct {
	Imported int
	Skipped  int
}

// ExportCustomers writes every customer to path, replacing the file.
func (e *Exchange) ExportCustomers(ctx context.Context, path string) (int, error) {
	customers, err := e.repo.GetCustomers(ctx)
	if err != nil {
		return 0, err
	}
	err = store.ReplaceFiles(store.FileWrite{Path: path, Write: func(w io.Writer) error {
		return store.WriteCustomers(w, customers)
	}})
	if err != nil {
		return 0, fmt.Errorf("%w: export %s: %v", model.ErrIO, path, err)
	}
	e.log.Info().Str("path", path).Int("rows", len(customers)).Msg("customers exported")
	return len(customers), nil
}

// ImportCustomers reads path and stores every customer under its own id.
// One bad row rejects the whole file.
func (e *Exchange) ImportCustomers(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	defer f.Close()
	customers, err := store.ReadCustomers(f)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", model.ErrValidation, path, err)
	}
	if err := e.repo.RestoreCustomers(ctx, customers); err != nil {
		return 0, err
	}
	e.log.Info().Str("path", path).Int("rows", len(customers)).Msg("customers imported")
	return len(customers), nil
}

// ImportOrders reads path and creates one order per row whose customer_name
// matches a customer's full name exactly. Rows naming an unknown customer are
// skipped; a malformed row rejects the whole file.
func (e *Exchange) ImportOrders(ctx context.Context, path string) (OrdersResult, error) {
	var res OrdersResult
	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	defer f.Close()
	t, err := store.ReadTable(f, "customer_name", "order_date", "description", "amount")
	if err != nil {
		return res, fmt.Errorf("%w: %s: %v", model.ErrValidation, path, err)
	}

	customers, err := e.repo.GetCustomers(ctx)
	if err != nil {
		return res, err
	}
	byName := make(map[string]uint, len(customers))
	for _, c := range customers {
		if _, dup := byName[c.FullName]; !dup {
			byName[c.FullName] = c.ID
		}
	}

	var orders []*model.Order
	for i, row := range t.Rows {
		line := i + 2
		id, ok := byName[strings.TrimSpace(t.Get(row, "customer_name"))]
		if !ok {
			e.log.Warn().Int("line", line).Str("customer_name", t.Get(row, "customer_name")).Msg("no such customer, row skipped")
			res.Skipped++
			continue
		}
		date, err := model.ParseDate(strings.TrimSpace(t.Get(row, "order_date")))
		if err != nil {
			return OrdersResult{}, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(t.Get(row, "amount")))
		if err != nil {
			return OrdersResult{}, fmt.Errorf("%s line %d: %w", path, line, model.Invalid("amount", fmt.Sprintf("%q is not a number", t.Get(row, "amount"))))
		}
		orders = append(orders, &model.Order{
			CustomerID:  id,
			OrderDate:   date,
			Description: t.Get(row, "description"),
			Amount:      amount.InexactFloat64(),
		})
	}
	if len(orders) > 0 {
		if err := e.repo.CreateOrders(ctx, orders); err != nil {
			return OrdersResult{}, err
		}
	}
	res.Imported = len(orders)
	e.log.Info().Str("path", path).Int("imported", res.Imported).Int("skipped", res.Skipped).Msg("orders imported")
	return res, nil
}
