package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
)

// orderFlags содержит поля заказа для add и update.
type orderFlags struct {
	Customer string
	NbDays   int
	TJM      float64
	TauxTVA  float64
}

func (f *orderFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Customer, "customer", "", "customer name")
	cmd.Flags().IntVar(&f.NbDays, "days", 1, "number of billable days")
	cmd.Flags().Float64Var(&f.TJM, "tjm", 0, "daily rate")
	cmd.Flags().Float64Var(&f.TauxTVA, "tva", 20, "VAT rate in percent")
}

// NewListCommand создаёт `orderctl list`.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orders := rootOpts.newStore()
			defer orders.Close()

			orders.LoadOrders(cmd.Context())
			state := orders.State()
			if err := storeFailure(state); err != nil {
				return err
			}
			return rootOpts.printer(cmd).orders(state.Orders)
		},
	}
}

// NewShowCommand создаёт `orderctl show <id>`.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}

			orders := rootOpts.newStore()
			defer orders.Close()

			orders.SelectOrder(cmd.Context(), id)
			state := orders.State()
			if err := storeFailure(state); err != nil {
				return err
			}
			if state.Selected == nil {
				return NewExitError(ExitFailure, fmt.Sprintf("order %d not found", id))
			}
			return rootOpts.printer(cmd).order(*state.Selected)
		},
	}
}

// NewAddCommand создаёт `orderctl add --customer ... --days ... --tjm ... --tva ...`.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &orderFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an order",
		Long: `Create an order. Totals are computed from days, daily rate and VAT.

Examples:
  orderctl add --customer Acme --days 5 --tjm 650 --tva 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orders := rootOpts.newStore()
			defer orders.Close()

			orders.AddOrder(cmd.Context(), domain.CreateOrderRequest{
				Customer: flags.Customer,
				NbDays:   flags.NbDays,
				TJM:      flags.TJM,
				TauxTVA:  flags.TauxTVA,
			})
			state := orders.State()
			if err := storeFailure(state); err != nil {
				return err
			}
			// Новый заказ добавляется в конец коллекции.
			if len(state.Orders) == 0 {
				return NewExitError(ExitFailure, "order was not created")
			}
			return rootOpts.printer(cmd).order(state.Orders[len(state.Orders)-1])
		},
	}
	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("customer")

	return cmd
}

// NewUpdateCommand создаёт `orderctl update <id> ...`. Незаданные флаги берутся из текущего заказа.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &orderFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}

			orders := rootOpts.newStore()
			defer orders.Close()
			ctx := cmd.Context()

			orders.SelectOrder(ctx, id)
			state := orders.State()
			if err := storeFailure(state); err != nil {
				return err
			}
			if state.Selected == nil {
				return NewExitError(ExitFailure, fmt.Sprintf("order %d not found", id))
			}

			req := domain.UpdateOrderRequest{
				ID:       id,
				Customer: state.Selected.Customer,
				NbDays:   state.Selected.NbDays,
				TJM:      state.Selected.TJM,
				TauxTVA:  state.Selected.TauxTVA,
			}
			changed := cmd.Flags().Changed
			if changed("customer") {
				req.Customer = flags.Customer
			}
			if changed("days") {
				req.NbDays = flags.NbDays
			}
			if changed("tjm") {
				req.TJM = flags.TJM
			}
			if changed("tva") {
				req.TauxTVA = flags.TauxTVA
			}

			orders.UpdateOrder(ctx, req)
			state = orders.State()
			if err := storeFailure(state); err != nil {
				return err
			}
			updated, ok := state.Find(id)
			if !ok {
				return NewExitError(ExitFailure, fmt.Sprintf("order %d not found", id))
			}
			return rootOpts.printer(cmd).order(updated)
		},
	}
	flags.bind(cmd)

	return cmd
}

// NewDeleteCommand создаёт `orderctl delete <id>`.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}

			orders := rootOpts.newStore()
			defer orders.Close()

			orders.DeleteOrder(cmd.Context(), id)
			if err := storeFailure(orders.State()); err != nil {
				return err
			}
			return rootOpts.printer(cmd).message("order %d deleted", id)
		},
	}
}

func parseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid order id %q", raw))
	}
	return id, nil
}
