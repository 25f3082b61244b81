package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"clientbook/form"
	"clientbook/model"
)

func (a *App) orderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Manage orders",
	}
	cmd.AddCommand(
		a.orderAddCmd(),
		a.orderListCmd(),
		a.orderGetCmd(),
		a.orderUpdateCmd(),
		a.orderDeleteCmd(),
	)
	return cmd
}

// parseAmount reads a decimal amount the way it is typed on the command line.
func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, model.Invalid("amount", fmt.Sprintf("%q is not a number", s))
	}
	return d.InexactFloat64(), nil
}

func (a *App) orderAddCmd() *cobra.Command {
	var customerID uint
	var description, amount string
	var interactive bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an order for a customer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := map[string]string{"description": description, "amount": amount}
			if cmd.Flags().Changed("customer-id") {
				values["customer_id"] = strconv.FormatUint(uint64(customerID), 10)
			}
			if interactive {
				var err error
				if values, err = form.Ask(form.Order); err != nil {
					return err
				}
			}
			if err := form.Order.Validate(values); err != nil {
				return err
			}
			id, err := strconv.ParseUint(values["customer_id"], 10, 64)
			if err != nil {
				return model.Invalid("customer_id", err.Error())
			}
			amt, err := parseAmount(values["amount"])
			if err != nil {
				return err
			}
			return a.within(cmd.Context(), func(s scope) error {
				o, err := s.repo.CreateOrder(cmd.Context(), uint(id), values["description"], amt)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "order added with id %d\n", o.ID)
				return nil
			})
		},
	}
	cmd.Flags().UintVar(&customerID, "customer-id", 0, "id of the ordering customer")
	cmd.Flags().StringVar(&description, "description", "", "what was ordered")
	cmd.Flags().StringVar(&amount, "amount", "", "order amount, greater than zero")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for every field")
	return cmd
}

func (a *App) orderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.within(cmd.Context(), func(s scope) error {
				orders, err := s.repo.GetOrders(cmd.Context())
				if err != nil {
					return err
				}
				customers, err := s.repo.GetCustomers(cmd.Context())
				if err != nil {
					return err
				}
				renderOrders(cmd.OutOrStdout(), orders, customerNames(customers))
				return nil
			})
		},
	}
}

func (a *App) orderGetCmd() *cobra.Command {
	var id uint
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show one order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.within(cmd.Context(), func(s scope) error {
				o, err := s.repo.GetOrderByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if o == nil {
					return fmt.Errorf("order %d: %w", id, model.ErrNotFound)
				}
				names := map[uint]string{}
				c, err := s.repo.GetCustomerByID(cmd.Context(), o.CustomerID)
				if err != nil {
					return err
				}
				if c != nil {
					names[c.ID] = c.FullName
				}
				renderOrders(cmd.OutOrStdout(), []model.Order{*o}, names)
				return nil
			})
		},
	}
	cmd.Flags().UintVar(&id, "id", 0, "order id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *App) orderUpdateCmd() *cobra.Command {
	var id uint
	var description, amount string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change the description or amount of an order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var upd model.OrderUpdate
			if cmd.Flags().Changed("description") {
				upd.Description = &description
			}
			if cmd.Flags().Changed("amount") {
				amt, err := parseAmount(amount)
				if err != nil {
					return err
				}
				upd.Amount = &amt
			}
			return a.within(cmd.Context(), func(s scope) error {
				o, err := s.repo.UpdateOrder(cmd.Context(), id, upd)
				if err != nil {
					return err
				}
				if o == nil {
					return fmt.Errorf("order %d: %w", id, model.ErrNotFound)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "order %d updated\n", o.ID)
				return nil
			})
		},
	}
	cmd.Flags().UintVar(&id, "id", 0, "order id")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *App) orderDeleteCmd() *cobra.Command {
	var id uint
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.within(cmd.Context(), func(s scope) error {
				ok, err := s.repo.DeleteOrder(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("order %d: %w", id, model.ErrNotFound)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "order %d deleted\n", id)
				return nil
			})
		},
	}
	cmd.Flags().UintVar(&id, "id", 0, "order id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
