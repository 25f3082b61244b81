package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"clientbook/exchange"
)

func (a *App) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export records to CSV",
	}
	var file string
	customers := &cobra.Command{
		Use:   "customers",
		Short: "Export every customer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.within(cmd.Context(), func(s scope) error {
				n, err := exchange.New(s.repo, a.log.Zerolog()).ExportCustomers(cmd.Context(), file)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d customers exported to %s\n", n, file)
				return nil
			})
		},
	}
	customers.Flags().StringVar(&file, "file", "", "destination CSV file")
	_ = customers.MarkFlagRequired("file")
	cmd.AddCommand(customers)
	return cmd
}

func (a *App) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import records from CSV",
	}

	var customersFile string
	customers := &cobra.Command{
		Use:   "customers",
		Short: "Import customers exported earlier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.within(cmd.Context(), func(s scope) error {
				n, err := exchange.New(s.repo, a.log.Zerolog()).ImportCustomers(cmd.Context(), customersFile)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d customers imported\n", n)
				return nil
			})
		},
	}
	customers.Flags().StringVar(&customersFile, "file", "", "source CSV file")
	_ = customers.MarkFlagRequired("file")

	var ordersFile string
	orders := &cobra.Command{
		Use:   "orders",
		Short: "Import orders keyed by customer name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.within(cmd.Context(), func(s scope) error {
				res, err := exchange.New(s.repo, a.log.Zerolog()).ImportOrders(cmd.Context(), ordersFile)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d orders imported, %d skipped\n", res.Imported, res.Skipped)
				return nil
			})
		},
	}
	orders.Flags().StringVar(&ordersFile, "file", "", "source CSV file")
	_ = orders.MarkFlagRequired("file")

	cmd.AddCommand(customers, orders)
	return cmd
}
