package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"clientbook/model"
)

func renderCustomers(w io.Writer, customers []model.Customer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Full name", "Contact info", "Registered", "Notes"})
	for _, c := range customers {
		t.AppendRow(table.Row{c.ID, c.FullName, c.ContactInfo, c.RegistrationDate.UTC().Format(model.DateLayout), c.Notes})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(customers)})
	t.Render()
}

// renderOrders shows the customer name next to each order; orders whose
// customer is gone show an empty name.
func renderOrders(w io.Writer, orders []model.Order, names map[uint]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Customer", "Description", "Amount", "Date"})
	for _, o := range orders {
		t.AppendRow(table.Row{
			o.ID,
			names[o.CustomerID],
			o.Description,
			decimal.NewFromFloat(o.Amount).StringFixed(2),
			o.OrderDate.UTC().Format(model.DateLayout),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(orders)})
	t.Render()
}

func customerNames(customers []model.Customer) map[uint]string {
	names := make(map[uint]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.FullName
	}
	return names
}
