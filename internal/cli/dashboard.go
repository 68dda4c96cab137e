package cli

import (
	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type dashboard struct {
	Products      int                  `json:"products"`
	OutOfStock    []adminapi.Product   `json:"outOfStock,omitempty"`
	Orders        *adminapi.OrderStats `json:"orders"`
	PendingOrders []adminapi.Order     `json:"pendingOrders"`
	Users         *adminapi.UserStats  `json:"users,omitempty"`
}

const dashboardPreview = 5

func newDashboardCommand(a *app) *cobra.Command {
	var stats adminapi.StatsParams
	cmd := requireGuard(&cobra.Command{
		Use:   "dashboard",
		Short: "Summarise products, orders and users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var d dashboard
			g, ctx := errgroup.WithContext(cmd.Context())

			g.Go(func() error {
				page, err := a.api.Products.List(ctx, adminapi.ListParams{Limit: 100, Sort: "stock"})
				if err != nil {
					return err
				}
				d.Products = page.Total
				for _, p := range page.Items {
					if p.Stock == 0 {
						d.OutOfStock = append(d.OutOfStock, p)
					}
				}
				return nil
			})
			g.Go(func() error {
				s, err := a.api.Orders.Stats(ctx, stats)
				d.Orders = s
				return err
			})
			g.Go(func() error {
				page, err := a.api.Orders.List(ctx, adminapi.ListParams{
					Status: string(adminapi.OrderPending),
					Limit:  dashboardPreview,
					Sort:   "-createdAt",
				})
				if err != nil {
					return err
				}
				d.PendingOrders = page.Items
				return nil
			})
			// User statistics are admin only
			if a.principal.IsAdmin() {
				g.Go(func() error {
					s, err := a.api.Users.Stats(ctx)
					d.Users = s
					return err
				})
			}

			if err := g.Wait(); err != nil {
				return describe(err)
			}
			return a.print(cmd.OutOrStdout(), d)
		},
	}, guardAuth)
	cmd.Flags().StringVar(&stats.From, "from", "", "Order statistics from date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&stats.To, "to", "", "Order statistics to date (YYYY-MM-DD)")
	return cmd
}
