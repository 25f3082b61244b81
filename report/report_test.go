package report_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientbook/model"
	"clientbook/records"
	"clientbook/report"
	"clientbook/store"
)

type fixture struct {
	gen  *report.Generator
	repo *records.Repository
	sess store.Session
	dir  string
}

func setup(t *testing.T) fixture {
	t.Helper()
	sess, err := store.NewFileStore(t.TempDir(), zerolog.Nop()).Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	repo := records.NewRepository(sess, records.WithClock(func() time.Time { return day }))
	dir := t.TempDir()
	return fixture{
		gen:  report.NewGenerator(repo, records.NewSearch(sess), dir, zerolog.Nop()),
		repo: repo,
		sess: sess,
		dir:  dir,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCustomersReport(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.repo.CreateCustomer(ctx, "Ivan, Petrov", "ivan@mail.com", "")
	require.NoError(t, err)
	_, err = f.repo.CreateCustomer(ctx, "Maria", "+7 900", "VIP")
	require.NoError(t, err)

	path, err := f.gen.Customers(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.dir, report.CustomersFile), path)

	assert.Equal(t, [][]string{
		{"id", "full_name", "contact_info", "registration_date", "notes"},
		{"1", "Ivan, Petrov", "ivan@mail.com", "2024-01-15", ""},
		{"2", "Maria", "+7 900", "2024-01-15", "VIP"},
	}, readCSV(t, path))
}

func TestCustomersReportEmpty(t *testing.T) {
	f := setup(t)
	path, err := f.gen.Customers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "full_name", "contact_info", "registration_date", "notes"}}, readCSV(t, path))
}

func TestCustomersByDateReport(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.sess.SaveCustomer(&model.Customer{ID: 1, FullName: "Early", ContactInfo: "e", RegistrationDate: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)})
	f.sess.SaveCustomer(&model.Customer{ID: 2, FullName: "Inside", ContactInfo: "i", RegistrationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	f.sess.SaveCustomer(&model.Customer{ID: 3, FullName: "Edge", ContactInfo: "g", RegistrationDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, f.sess.Commit(ctx))

	r, err := model.ParseDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	path, err := f.gen.CustomersByDate(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, report.CustomersByDateFile, filepath.Base(path))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "Inside", rows[1][1])
	assert.Equal(t, "Edge", rows[2][1])
}

func TestOrdersReport(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c, err := f.repo.CreateCustomer(ctx, "Buyer", "b@mail.com", "")
	require.NoError(t, err)
	_, err = f.repo.CreateOrder(ctx, c.ID, "Chair", 49.5)
	require.NoError(t, err)
	_, err = f.repo.CreateOrder(ctx, c.ID, "Table", 120)
	require.NoError(t, err)

	path, err := f.gen.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "customer_name", "description", "amount", "order_date"},
		{"1", "Buyer", "Chair", "49.50", "2024-01-15"},
		{"2", "Buyer", "Table", "120.00", "2024-01-15"},
	}, readCSV(t, path))
}

func TestOrdersReportAbortsOnOrphan(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.sess.SaveOrder(&model.Order{ID: 4, CustomerID: 99, Description: "lost", Amount: 1, OrderDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, f.sess.Commit(ctx))

	dest := filepath.Join(f.dir, report.OrdersFile)
	require.NoError(t, os.WriteFile(dest, []byte("previous report\n"), 0o644))

	_, err := f.gen.Orders(ctx)
	require.ErrorIs(t, err, model.ErrMissingReference)
	assert.Contains(t, err.Error(), "order 4")

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous report\n", string(raw))
}

func TestReportFailsOnUnwritableDirectory(t *testing.T) {
	f := setup(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	gen := report.NewGenerator(f.repo, records.NewSearch(f.sess), filepath.Join(blocker, "sub"), zerolog.Nop())
	_, err := gen.Customers(context.Background())
	assert.ErrorIs(t, err, model.ErrIO)
}

func TestOrderForUnknownCustomerNeverReachesReport(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.repo.CreateOrder(ctx, 999, "Book", 10.0)
	require.ErrorIs(t, err, model.ErrMissingReference)

	path, err := f.gen.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "customer_name", "description", "amount", "order_date"}}, readCSV(t, path))
}
