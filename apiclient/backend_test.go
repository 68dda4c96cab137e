package apiclient_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-store-admin/apiclient"
	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/credentials/memstore"
	"github.com/stretchr/testify/require"
)

type hit struct {
	Path  string
	Token string
}

// backend is a fake admin API. Access tokens are accepted only when listed in valid.
type backend struct {
	server *httptest.Server

	mu      sync.Mutex
	valid   map[string]bool
	refresh map[string]bool
	hits    []hit
	issued  int
	header  http.Header

	rotate             bool
	failRefresh        bool
	alwaysUnauthorized bool
	gate               chan struct{}
	entered            chan struct{}
	onRequest          func(r *http.Request)

	refreshCalls atomic.Int32
	requests     atomic.Int32
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		valid:   map[string]bool{},
		refresh: map[string]bool{"R1": true},
		entered: make(chan struct{}, 16),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/refresh-token", b.handleRefresh)
	mux.HandleFunc("/api/", b.handleResource)
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) baseURL() string {
	return b.server.URL + "/api"
}

// hold makes refresh calls block until release is called
func (b *backend) hold() {
	b.gate = make(chan struct{})
}

func (b *backend) release() {
	close(b.gate)
}

func (b *backend) accept(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.valid[token] = true
}

func (b *backend) successfulHits() []hit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]hit(nil), b.hits...)
}

func (b *backend) lastHeader() http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.header == nil {
		return http.Header{}
	}
	return b.header
}

func (b *backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	b.entered <- struct{}{}
	if b.gate != nil {
		<-b.gate
	}

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failRefresh || !b.refresh[body.RefreshToken] {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid refresh token"})
		return
	}

	b.issued++
	access := fmt.Sprintf("A%d", b.issued+1)
	b.valid[access] = true
	resp := map[string]any{"access_token": access, "token_type": "Bearer", "expires_in": 900}
	if b.rotate {
		next := fmt.Sprintf("R%d", b.issued+1)
		delete(b.refresh, body.RefreshToken)
		b.refresh[next] = true
		resp["refresh_token"] = next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *backend) handleResource(w http.ResponseWriter, r *http.Request) {
	b.requests.Add(1)
	b.mu.Lock()
	b.header = r.Header.Clone()
	b.mu.Unlock()
	if b.onRequest != nil {
		b.onRequest(r)
	}

	path := strings.TrimPrefix(r.URL.Path, "/api")
	switch path {
	case "/missing":
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "product not found"})
		return
	case "/broken":
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
		return
	case "/large":
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":"` + strings.Repeat("x", 10<<20) + `"}`))
		return
	case "/public":
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	ok := b.valid[token] && !b.alwaysUnauthorized
	if ok {
		b.hits = append(b.hits, hit{Path: path, Token: token})
	}
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path, "request_id": r.Header.Get(apiclient.HeaderRequestID)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sessionFixture holds a client logged in with A1/R1 against b
type sessionFixture struct {
	client *apiclient.Client
	store  *memstore.Store
	ended  *endedRecorder
}

type endedRecorder struct {
	mu      sync.Mutex
	reasons []apiclient.EndReason
}

func (e *endedRecorder) record(ev apiclient.SessionEndedEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reasons = append(e.reasons, ev.Reason)
}

func (e *endedRecorder) all() []apiclient.EndReason {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]apiclient.EndReason(nil), e.reasons...)
}

func newSession(t *testing.T, b *backend, creds credentials.Credentials, opts ...apiclient.Option) *sessionFixture {
	t.Helper()
	store := memstore.New()
	client, err := apiclient.New(b.baseURL(), store, opts...)
	require.NoError(t, err)
	if !creds.IsZero() {
		require.NoError(t, client.StartSession(t.Context(), creds))
	}
	ended := &endedRecorder{}
	require.NoError(t, client.OnSessionEnded(ended.record))
	return &sessionFixture{client: client, store: store, ended: ended}
}

func (f *sessionFixture) creds(t *testing.T) credentials.Credentials {
	t.Helper()
	creds, err := f.client.Credentials(t.Context())
	require.NoError(t, err)
	return creds
}
