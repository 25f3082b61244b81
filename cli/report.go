package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clientbook/model"
	"clientbook/report"
)

func (a *App) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write CSV reports",
	}
	cmd.AddCommand(
		a.reportRun("customers", "All customers", func(ctx context.Context, g *report.Generator) (string, error) {
			return g.Customers(ctx)
		}),
		a.reportRun("orders", "All orders with customer names", func(ctx context.Context, g *report.Generator) (string, error) {
			return g.Orders(ctx)
		}),
		a.reportByDateCmd(),
	)
	return cmd
}

func (a *App) reportRun(use, short string, run func(context.Context, *report.Generator) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd, run)
		},
	}
}

func (a *App) reportByDateCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "customers-by-date",
		Short: "Customers registered within a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dates, err := model.ParseDateRange(start, end)
			if err != nil {
				return err
			}
			return a.generate(cmd, func(ctx context.Context, g *report.Generator) (string, error) {
				return g.CustomersByDate(ctx, dates)
			})
		},
	}
	cmd.Flags().StringVar(&start, "start-date", "", "first registration day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end-date", "", "last registration day (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("start-date")
	_ = cmd.MarkFlagRequired("end-date")
	return cmd
}

func (a *App) generate(cmd *cobra.Command, run func(context.Context, *report.Generator) (string, error)) error {
	return a.within(cmd.Context(), func(s scope) error {
		g := report.NewGenerator(s.repo, s.search, a.cfg.Report.Dir, a.log.Zerolog())
		path, err := run(cmd.Context(), g)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", path)
		return nil
	})
}
