package adminapi

import (
	"context"

	"github.com/jrsteele09/go-store-admin/apiclient"
)

const PathProducts = "/admin/products"

type ProductsService struct {
	c *apiclient.Client
}

func (s *ProductsService) List(ctx context.Context, params ListParams) (*Page[Product], error) {
	var page Page[Product]
	if err := s.c.Get(ctx, PathProducts, params.Query(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *ProductsService) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := s.c.Get(ctx, resourcePath(PathProducts, id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductsService) Create(ctx context.Context, p Product) (*Product, error) {
	var created Product
	if err := s.c.Post(ctx, PathProducts, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *ProductsService) Update(ctx context.Context, id string, p Product) (*Product, error) {
	var updated Product
	if err := s.c.Put(ctx, resourcePath(PathProducts, id), p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ProductsService) Delete(ctx context.Context, id string) error {
	return s.c.Delete(ctx, resourcePath(PathProducts, id), nil)
}

func (s *ProductsService) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.c.Get(ctx, PathProducts+"/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// UpdateStock sets the absolute stock level of a product
func (s *ProductsService) UpdateStock(ctx context.Context, id string, stock int) (*Product, error) {
	var updated Product
	if err := s.c.Patch(ctx, resourcePath(PathProducts, id, "stock"), map[string]int{"stock": stock}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
