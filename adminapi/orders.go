package adminapi

import (
	"context"

	"github.com/jrsteele09/go-store-admin/apiclient"
)

const PathOrders = "/admin/orders"

type OrdersService struct {
	c *apiclient.Client
}

func (s *OrdersService) List(ctx context.Context, params ListParams) (*Page[Order], error) {
	var page Page[Order]
	if err := s.c.Get(ctx, PathOrders, params.Query(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *OrdersService) Get(ctx context.Context, id string) (*Order, error) {
	var o Order
	if err := s.c.Get(ctx, resourcePath(PathOrders, id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus moves an order to status. The backend rejects transitions not allowed by
// OrderStatus.NextStatuses with 409.
func (s *OrdersService) UpdateStatus(ctx context.Context, id string, status OrderStatus) (*Order, error) {
	var o Order
	body := map[string]OrderStatus{"status": status}
	if err := s.c.Patch(ctx, resourcePath(PathOrders, id, "status"), body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *OrdersService) Statuses(ctx context.Context) ([]OrderStatus, error) {
	var statuses []OrderStatus
	if err := s.c.Get(ctx, PathOrders+"/statuses", nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (s *OrdersService) Stats(ctx context.Context, params StatsParams) (*OrderStats, error) {
	var stats OrderStats
	if err := s.c.Get(ctx, PathOrders+"/stats", params.Query(), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
