package devserver

import (
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 20
)

var codec = sonic.ConfigStd

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = codec.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":   errorCode,
		"message": description,
	})
}

// writeError maps a domain error to a status code
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		writeJSONError(w, "not_found", err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition):
		writeJSONError(w, "conflict", err.Error(), http.StatusConflict)
	case errors.Is(err, errors.ErrInvalidRequest):
		writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
	case errors.Is(err, errors.ErrForbidden):
		writeJSONError(w, "forbidden", err.Error(), http.StatusForbidden)
	case errors.Is(err, errors.ErrInvalidCredentials):
		writeJSONError(w, "invalid_credentials", "Invalid email or password", http.StatusUnauthorized)
	default:
		writeJSONError(w, "server_error", "internal server error", http.StatusInternalServerError)
	}
}

func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "read body: %v", err)
	}
	if err := codec.Unmarshal(data, v); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "invalid JSON body: %v", err)
	}
	return nil
}

func parseListQuery(r *http.Request) listQuery {
	q := r.URL.Query()
	lq := listQuery{
		page:   1,
		limit:  defaultPageLimit,
		search: q.Get("search"),
		status: q.Get("status"),
		sort:   q.Get("sort"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		lq.page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		lq.limit = min(limit, maxPageLimit)
	}
	return lq
}

// clientIP returns the remote address without port
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
