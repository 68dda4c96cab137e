package devserver

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

const statsDateLayout = "2006-01-02"

func (s *Server) ListOrdersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.ListOrders(parseListQuery(r)))
	}
}

func (s *Server) GetOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := s.data.Order(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}

// UpdateOrderStatusHandler answers 409 for a transition the current status does not allow
func (s *Server) UpdateOrderStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status adminapi.OrderStatus `json:"status"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		o, err := s.data.UpdateOrderStatus(r.PathValue("id"), req.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "order_status", o.Number+" -> "+string(o.Status), clientIP(r))
		writeJSON(w, http.StatusOK, o)
	}
}

func (s *Server) OrderStatusesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, adminapi.OrderStatuses)
	}
}

// OrderStatsHandler takes optional from and to dates (YYYY-MM-DD); to is inclusive
func (s *Server) OrderStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var from, to time.Time
		var err error
		if v := r.URL.Query().Get("from"); v != "" {
			if from, err = time.Parse(statsDateLayout, v); err != nil {
				writeError(w, errors.Wrapf(errors.ErrInvalidRequest, "invalid from date %q", v))
				return
			}
		}
		if v := r.URL.Query().Get("to"); v != "" {
			if to, err = time.Parse(statsDateLayout, v); err != nil {
				writeError(w, errors.Wrapf(errors.ErrInvalidRequest, "invalid to date %q", v))
				return
			}
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		writeJSON(w, http.StatusOK, s.data.OrderStats(from, to))
	}
}
