package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"clientbook/model"
)

// CustomerHeader is the column layout of the customers file. email and phone
// are legacy columns that are always written empty.
var CustomerHeader = []string{"id", "full_name", "contact_info", "email", "phone", "registration_date", "notes"}

// OrderHeader is the column layout of the orders file.
var OrderHeader = []string{"id", "customer_id", "order_date", "description", "amount"}

// NewCSVReader returns a csv.Reader that tolerates a leading UTF-8 byte order mark.
func NewCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	return cr
}

// Table is a parsed CSV file whose columns are addressed by header name.
type Table struct {
	cols map[string]int
	Rows [][]string
}

// ReadTable reads a header row and the records after it. Every name in
// required must appear in the header.
func ReadTable(r io.Reader, required ...string) (*Table, error) {
	records, err := NewCSVReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{cols: map[string]int{}}, nil
	}
	t := &Table{cols: make(map[string]int, len(records[0])), Rows: records[1:]}
	for i, name := range records[0] {
		t.cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := t.cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return t, nil
}

// Get returns the named column of row, or "" when the row is short.
func (t *Table) Get(row []string, name string) string {
	i, ok := t.cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// ReadCustomers parses the customers layout.
func ReadCustomers(r io.Reader) ([]model.Customer, error) {
	t, err := ReadTable(r, "id", "full_name", "contact_info", "registration_date")
	if err != nil {
		return nil, err
	}
	out := make([]model.Customer, 0, len(t.Rows))
	for i, row := range t.Rows {
		line := i + 2
		id, err := strconv.ParseUint(strings.TrimSpace(t.Get(row, "id")), 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("line %d: bad id %q", line, t.Get(row, "id"))
		}
		reg, err := model.ParseDate(strings.TrimSpace(t.Get(row, "registration_date")))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, model.Customer{
			ID:               uint(id),
			FullName:         t.Get(row, "full_name"),
			ContactInfo:      t.Get(row, "contact_info"),
			RegistrationDate: reg,
			Notes:            t.Get(row, "notes"),
		})
	}
	return out, nil
}

// WriteCustomers writes the header and one row per customer.
func WriteCustomers(w io.Writer, customers []model.Customer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CustomerHeader); err != nil {
		return err
	}
	for _, c := range customers {
		err := cw.Write([]string{
			strconv.FormatUint(uint64(c.ID), 10),
			c.FullName,
			c.ContactInfo,
			"",
			"",
			c.RegistrationDate.UTC().Format(model.DateLayout),
			c.Notes,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readOrders(r io.Reader) ([]model.Order, error) {
	t, err := ReadTable(r, OrderHeader...)
	if err != nil {
		return nil, err
	}
	out := make([]model.Order, 0, len(t.Rows))
	for i, row := range t.Rows {
		line := i + 2
		id, err := strconv.ParseUint(t.Get(row, "id"), 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("line %d: bad id %q", line, t.Get(row, "id"))
		}
		cid, err := strconv.ParseUint(t.Get(row, "customer_id"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad customer_id %q", line, t.Get(row, "customer_id"))
		}
		date, err := model.ParseDate(t.Get(row, "order_date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		amount, err := strconv.ParseFloat(t.Get(row, "amount"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad amount %q", line, t.Get(row, "amount"))
		}
		out = append(out, model.Order{
			ID:          uint(id),
			CustomerID:  uint(cid),
			OrderDate:   date,
			Description: t.Get(row, "description"),
			Amount:      amount,
		})
	}
	return out, nil
}

func writeOrders(w io.Writer, orders []model.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OrderHeader); err != nil {
		return err
	}
	for _, o := range orders {
		err := cw.Write([]string{
			strconv.FormatUint(uint64(o.ID), 10),
			strconv.FormatUint(uint64(o.CustomerID), 10),
			o.OrderDate.UTC().Format(model.DateLayout),
			o.Description,
			strconv.FormatFloat(o.Amount, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readSequence(r io.Reader) (map[string]uint, error) {
	t, err := ReadTable(r, "table", "last_id")
	if err != nil {
		return nil, err
	}
	seq := make(map[string]uint, len(t.Rows))
	for _, row := range t.Rows {
		n, err := strconv.ParseUint(t.Get(row, "last_id"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad last_id %q", t.Get(row, "last_id"))
		}
		seq[t.Get(row, "table")] = uint(n)
	}
	return seq, nil
}

func writeSequence(w io.Writer, seq map[string]uint) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"table", "last_id"},
		{tableCustomers, strconv.FormatUint(uint64(seq[tableCustomers]), 10)},
		{tableOrders, strconv.FormatUint(uint64(seq[tableOrders]), 10)},
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// FileWrite is one file to be replaced by ReplaceFiles.
type FileWrite struct {
	Path  string
	Write func(io.Writer) error
}

// ReplaceFiles writes every file to a temporary sibling and only then renames
// each over its destination. If any write fails no destination is touched.
func ReplaceFiles(files ...FileWrite) error {
	tmps := make([]string, 0, len(files))
	cleanup := func() {
		for _, t := range tmps {
			_ = os.Remove(t)
		}
	}
	for _, f := range files {
		tmp, err := writeTemp(f)
		if tmp != "" {
			tmps = append(tmps, tmp)
		}
		if err != nil {
			cleanup()
			return err
		}
	}
	for i, f := range files {
		if err := os.Rename(tmps[i], f.Path); err != nil {
			cleanup()
			return err
		}
	}
	return nil
}

func writeTemp(f FileWrite) (string, error) {
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	tmp := f.Path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return tmp, err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return tmp, err
	}
	return tmp, out.Close()
}
