// Package adminapi wraps the store admin REST resources on top of an authenticated apiclient.Client.
package adminapi

import (
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-store-admin/apiclient"
)

// API groups the resource services. All of them share one Client, and so one session.
type API struct {
	Client   *apiclient.Client
	Auth     *AuthService
	Products *ProductsService
	Orders   *OrdersService
	Users    *UsersService
	Settings *SettingsService
}

func New(c *apiclient.Client) *API {
	return &API{
		Client:   c,
		Auth:     &AuthService{c: c},
		Products: &ProductsService{c: c},
		Orders:   &OrdersService{c: c},
		Users:    &UsersService{c: c},
		Settings: &SettingsService{c: c},
	}
}

// ListParams filter a list endpoint. Zero fields are omitted.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Status string
	Sort   string
}

func (p ListParams) Query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	return q
}

// StatsParams bound a statistics query to a date range (YYYY-MM-DD)
type StatsParams struct {
	From string
	To   string
}

func (p StatsParams) Query() url.Values {
	q := url.Values{}
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}
	return q
}

func resourcePath(collection, id string, sub ...string) string {
	p := collection + "/" + url.PathEscape(id)
	for _, s := range sub {
		p += "/" + s
	}
	return p
}
