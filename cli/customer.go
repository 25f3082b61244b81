package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"clientbook/form"
	"clientbook/model"
)

func (a *App) customerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage customers",
	}
	cmd.AddCommand(
		a.customerAddCmd(),
		a.customerListCmd(),
		a.customerGetCmd(),
		a.customerUpdateCmd(),
		a.customerDeleteCmd(),
		a.customerSearchCmd(),
	)
	return cmd
}

func (a *App) customerAddCmd() *cobra.Command {
	var name, contact, notes string
	var interactive bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a customer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := map[string]string{"full_name": name, "contact_info": contact, "notes": notes}
			if interactive {
				var err error
				if values, err = form.Ask(form.Customer); err != nil {
					return err
				}
			}
			if err := form.Customer.Validate(values); err != nil {
				return err
			}
			return a.within(cmd.Context(), func(s scope) error {
				c, err := s.repo.CreateCustomer(cmd.Context(), values["full_name"], values["contact_info"], values["notes"])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "customer added with id %d\n", c.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&contact, "contact", "", "contact info (phone, email, address)")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for every field")
	return cmd
}

func (a *App) customerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all customers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.within(cmd.Context(), func(s scope) error {
				customers, err := s.repo.GetCustomers(cmd.Context())
				if err != nil {
					return err
				}
				renderCustomers(cmd.OutOrStdout(), customers)
				return nil
			})
		},
	}
}

func (a *App) customerGetCmd() *cobra.Command {
	var id uint
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show one customer and their orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.within(cmd.Context(), func(s scope) error {
				c, err := s.repo.GetCustomerWithOrders(cmd.Context(), id)
				if err != nil {
					return err
				}
				if c == nil {
					return fmt.Errorf("customer %d: %w", id, model.ErrNotFound)
				}
				renderCustomers(cmd.OutOrStdout(), []model.Customer{*c})
				if len(c.Orders) > 0 {
					renderOrders(cmd.OutOrStdout(), c.Orders, map[uint]string{c.ID: c.FullName})
				}
				return nil
			})
		},
	}
	cmd.Flags().UintVar(&id, "id", 0, "customer id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *App) customerUpdateCmd() *cobra.Command {
	var id uint
	var name, contact, notes string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change fields of a customer",
		Long:  "Change fields of a customer. Omitted flags keep their value; --notes \"\" clears the notes.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var upd model.CustomerUpdate
			if cmd.Flags().Changed("name") {
				upd.FullName = &name
			}
			if cmd.Flags().Changed("contact") {
				upd.ContactInfo = &contact
			}
			if cmd.Flags().Changed("notes") {
				upd.Notes = &notes
			}
			return a.within(cmd.Context(), func(s scope) error {
				c, err := s.repo.UpdateCustomer(cmd.Context(), id, upd)
				if err != nil {
					return err
				}
				if c == nil {
					return fmt.Errorf("customer %d: %w", id, model.ErrNotFound)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "customer %d updated\n", c.ID)
				return nil
			})
		},
	}
	cmd.Flags().UintVar(&id, "id", 0, "customer id")
	cmd.Flags().StringVar(&name, "name", "", "new full name")
	cmd.Flags().StringVar(&contact, "contact", "", "new contact info")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *App) customerDeleteCmd() *cobra.Command {
	var id uint
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a customer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.within(cmd.Context(), func(s scope) error {
				ok, err := s.repo.DeleteCustomer(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("customer %d: %w", id, model.ErrNotFound)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "customer %d deleted\n", id)
				return nil
			})
		},
	}
	cmd.Flags().UintVar(&id, "id", 0, "customer id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *App) customerSearchCmd() *cobra.Command {
	var name, contact, notes, start, end string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find customers by one field",
		Long:  "Find customers by name, contact or notes substring (case-insensitive) or by registration date range. Without a filter every customer is listed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters := 0
			for _, f := range []string{"name", "contact", "notes"} {
				if cmd.Flags().Changed(f) {
					filters++
				}
			}
			byDate := cmd.Flags().Changed("start-date") || cmd.Flags().Changed("end-date")
			if byDate {
				filters++
			}
			if filters > 1 {
				return model.Invalid("search", "use only one of --name, --contact, --notes or a date range")
			}
			var dates model.DateRange
			if byDate {
				if start == "" || end == "" {
					return model.Invalid("search", "--start-date and --end-date go together")
				}
				var err error
				if dates, err = model.ParseDateRange(start, end); err != nil {
					return err
				}
			}

			return a.within(cmd.Context(), func(s scope) error {
				ctx := cmd.Context()
				var (
					found []model.Customer
					err   error
				)
				switch {
				case cmd.Flags().Changed("name"):
					found, err = s.search.ByName(ctx, name)
				case cmd.Flags().Changed("contact"):
					found, err = s.search.ByContact(ctx, contact)
				case cmd.Flags().Changed("notes"):
					found, err = s.search.ByNotes(ctx, notes)
				case byDate:
					found, err = s.search.ByRegistrationDate(ctx, dates)
				default:
					found, err = s.repo.GetCustomers(ctx)
				}
				if err != nil {
					return err
				}
				renderCustomers(cmd.OutOrStdout(), found)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name contains")
	cmd.Flags().StringVar(&contact, "contact", "", "contact info contains")
	cmd.Flags().StringVar(&notes, "notes", "", "notes contain")
	cmd.Flags().StringVar(&start, "start-date", "", "registered on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end-date", "", "registered on or before (YYYY-MM-DD)")
	return cmd
}
