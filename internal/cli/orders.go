package cli

import (
	"fmt"
	"slices"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/spf13/cobra"
)

func newOrdersCommand(a *app) *cobra.Command {
	ordersCmd := requireGuard(&cobra.Command{
		Use:   "orders",
		Short: "Inspect orders and move them through fulfilment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}, guardAuth)

	var params adminapi.ListParams
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.api.Orders.List(cmd.Context(), params)
			if err != nil {
				return describe(err)
			}
			return a.print(cmd.OutOrStdout(), page)
		},
	}
	addListFlags(listCmd, &params, "Filter by order status")

	var stats adminapi.StatsParams
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Order totals by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.api.Orders.Stats(cmd.Context(), stats)
			if err != nil {
				return describe(err)
			}
			return a.print(cmd.OutOrStdout(), s)
		},
	}
	statsCmd.Flags().StringVar(&stats.From, "from", "", "From date (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&stats.To, "to", "", "To date (YYYY-MM-DD), inclusive")

	ordersCmd.AddCommand(
		listCmd,
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show an order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				o, err := a.api.Orders.Get(cmd.Context(), args[0])
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), o)
			},
		},
		&cobra.Command{
			Use:   "status <id> <status>",
			Short: "Move an order to a new status",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				status := adminapi.OrderStatus(args[1])
				if !slices.Contains(adminapi.OrderStatuses, status) {
					return fmt.Errorf("unknown order status %q, expected one of %v", args[1], adminapi.OrderStatuses)
				}
				o, err := a.api.Orders.UpdateStatus(cmd.Context(), args[0], status)
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), o)
			},
		},
		&cobra.Command{
			Use:   "statuses",
			Short: "List order statuses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				statuses, err := a.api.Orders.Statuses(cmd.Context())
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), statuses)
			},
		},
		statsCmd,
	)
	return ordersCmd
}
