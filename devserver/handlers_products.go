package devserver

import (
	"net/http"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

func (s *Server) ListProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.ListProducts(parseListQuery(r)))
	}
}

func (s *Server) GetProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.data.Product(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) CreateProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p adminapi.Product
		if err := decodeBody(r, &p); err != nil {
			writeError(w, err)
			return
		}
		if err := s.check(p); err != nil {
			writeError(w, err)
			return
		}
		created := s.data.CreateProduct(p)
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "product_created", created.Name, clientIP(r))
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) UpdateProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p adminapi.Product
		if err := decodeBody(r, &p); err != nil {
			writeError(w, err)
			return
		}
		if err := s.check(p); err != nil {
			writeError(w, err)
			return
		}
		updated, err := s.data.UpdateProduct(r.PathValue("id"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "product_updated", updated.Name, clientIP(r))
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) DeleteProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.data.DeleteProduct(id); err != nil {
			writeError(w, err)
			return
		}
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "product_deleted", id, clientIP(r))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) CategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.Categories())
	}
}

func (s *Server) UpdateStockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stock *int `json:"stock"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Stock == nil || *req.Stock < 0 {
			writeError(w, errors.Wrapf(errors.ErrInvalidRequest, "stock must be zero or more"))
			return
		}
		p, err := s.data.UpdateStock(r.PathValue("id"), *req.Stock)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
