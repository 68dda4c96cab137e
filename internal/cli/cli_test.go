package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/credentials/memstore"
	"github.com/jrsteele09/go-store-admin/devserver"
	"github.com/jrsteele09/go-store-admin/internal/cli"
	"github.com/jrsteele09/go-store-admin/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type cliFixture struct {
	baseURL   string
	store     credentials.Store
	srv       *devserver.Server
	refreshes *atomic.Int32
	advance   func(time.Duration)
	stdin     string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	current := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	devserver.NowTimeFunc = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return current
	}
	t.Cleanup(func() { devserver.NowTimeFunc = time.Now })

	srv, err := devserver.New(config.New(), devserver.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	refreshes := &atomic.Int32{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == devserver.RouteRefreshToken {
			refreshes.Add(1)
		}
		srv.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	return &cliFixture{
		baseURL:   ts.URL + devserver.APIPrefix,
		store:     memstore.New(),
		srv:       srv,
		refreshes: refreshes,
		advance: func(d time.Duration) {
			clockMu.Lock()
			defer clockMu.Unlock()
			current = current.Add(d)
		},
	}
}

// run executes one storeadmin invocation against the fixture backend
func (f *cliFixture) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCommand(cli.WithStore(f.store))
	cmd.SetArgs(append(args, "--base-url", f.baseURL))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(f.stdin))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (f *cliFixture) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := f.run(t, args...)
	require.NoError(t, err, stderr)
	return out
}

func (f *cliFixture) login(t *testing.T, email, password string) {
	t.Helper()
	f.mustRun(t, "login", "--email", email, "--password", password)
}

func TestVersion(t *testing.T) {
	f := newCLIFixture(t)
	require.Equal(t, cli.BuildVersion+"\n", f.mustRun(t, "version"))
}

func TestLoginWhoamiLogout(t *testing.T) {
	f := newCLIFixture(t)

	out := f.mustRun(t, "login", "--email", "admin@example.com", "--password", "admin123")
	require.Contains(t, out, "Logged in as admin@example.com (admin)")

	var me map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "whoami")), &me))
	require.Equal(t, "admin@example.com", me["email"])
	require.Equal(t, "admin", me["role"])
	require.NotEmpty(t, me["tokenExpiresAt"])

	require.Contains(t, f.mustRun(t, "logout"), "Logged out")
	creds, err := credentials.Load(context.Background(), f.store)
	require.NoError(t, err)
	require.True(t, creds.IsZero())

	_, _, err = f.run(t, "whoami")
	require.ErrorContains(t, err, "not logged in")
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	f := newCLIFixture(t)
	f.stdin = "admin123\n"

	out, stderr, err := f.run(t, "login", "--email", "admin@example.com")
	require.NoError(t, err)
	require.Contains(t, stderr, "Password: ")
	require.Contains(t, out, "Logged in as admin@example.com")
}

func TestLogin_Rejected(t *testing.T) {
	f := newCLIFixture(t)

	_, _, err := f.run(t, "login", "--email", "not-an-email", "--password", "x")
	require.ErrorContains(t, err, "email: Please enter a valid email")

	_, _, err = f.run(t, "login", "--email", "admin@example.com", "--password", "wrong")
	require.ErrorContains(t, err, "Invalid email or password")

	creds, err := credentials.Load(context.Background(), f.store)
	require.NoError(t, err)
	require.True(t, creds.IsZero())
}

func TestGuard_AdminCommands(t *testing.T) {
	f := newCLIFixture(t)
	f.login(t, "editor@example.com", "Editor123")

	_, _, err := f.run(t, "users", "list")
	require.ErrorContains(t, err, "needs the admin role")
	_, _, err = f.run(t, "settings", "get")
	require.ErrorContains(t, err, "needs the admin role")

	var page adminapi.Page[adminapi.Product]
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "products", "list")), &page))
	require.Equal(t, 3, page.Total)
}

func TestProducts_CreateAndUpdate(t *testing.T) {
	f := newCLIFixture(t)
	f.login(t, "editor@example.com", "Editor123")

	_, _, err := f.run(t, "products", "create", "--name", "Sander", "--price", "0")
	require.ErrorContains(t, err, "images: Images must be at least 1 items")
	require.ErrorContains(t, err, "price: Price must be greater than 0")

	out := f.mustRun(t, "products", "create",
		"--name", "Orbital Sander",
		"--category", "Sanders",
		"--price", "59.9",
		"--stock", "12",
		"--image", "https://example.com/images/sander.jpg",
		"--spec", "Pad=125mm",
	)
	var created adminapi.Product
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, []adminapi.Specification{{Key: "Pad", Value: "125mm"}}, created.Specifications)

	out = f.mustRun(t, "products", "update", created.ID, "--price", "49.5")
	var updated adminapi.Product
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	require.Equal(t, 49.5, updated.Price)
	require.Equal(t, "Orbital Sander", updated.Name)

	out = f.mustRun(t, "products", "stock", created.ID, "3")
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	require.Equal(t, 3, updated.Stock)

	require.Contains(t, f.mustRun(t, "products", "delete", created.ID), "Deleted product")
	_, _, err = f.run(t, "products", "get", created.ID)
	require.ErrorContains(t, err, "HTTP 404")
}

func TestOrders_Status(t *testing.T) {
	f := newCLIFixture(t)
	f.login(t, "editor@example.com", "Editor123")

	var page adminapi.Page[adminapi.Order]
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "orders", "list", "--status", "pending")), &page))
	require.Len(t, page.Items, 1)
	id := page.Items[0].ID

	_, _, err := f.run(t, "orders", "status", id, "lost")
	require.ErrorContains(t, err, "unknown order status")

	var order adminapi.Order
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "orders", "status", id, "processing")), &order))
	require.Equal(t, adminapi.OrderProcessing, order.Status)

	_, _, err = f.run(t, "orders", "status", id, "completed")
	require.ErrorContains(t, err, "HTTP 409")
}

func TestDashboard_SharesOneRefresh(t *testing.T) {
	f := newCLIFixture(t)
	f.login(t, "admin@example.com", "admin123")
	f.advance(30 * time.Minute)

	out := f.mustRun(t, "dashboard", "-o", "yaml")
	var d map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &d))
	require.Equal(t, 3, d["products"])
	require.Contains(t, d, "users")
	require.Len(t, d["outOfStock"], 1)
	require.EqualValues(t, 1, f.refreshes.Load())
}

func TestSessionEndedMessage(t *testing.T) {
	f := newCLIFixture(t)
	f.login(t, "admin@example.com", "admin123")
	f.advance(8 * 24 * time.Hour)

	_, stderr, err := f.run(t, "products", "list")
	require.ErrorContains(t, err, "not authorized")
	require.Contains(t, stderr, cli.SessionEndedMessage)

	_, _, err = f.run(t, "products", "list")
	require.ErrorContains(t, err, "not logged in")
}

func TestUsers(t *testing.T) {
	f := newCLIFixture(t)
	f.login(t, "admin@example.com", "admin123")

	_, _, err := f.run(t, "users", "create", "--name", "Vic", "--email", "vic@example.com", "--password", "Vendor1234", "--confirm-password", "nope")
	require.ErrorContains(t, err, "confirmPassword: Passwords do not match")

	var user adminapi.User
	out := f.mustRun(t, "users", "create", "--name", "Vic", "--email", "vic@example.com", "--role", "vendor", "--password", "Vendor1234")
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	require.Equal(t, adminapi.RoleVendor, user.Role)

	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "users", "role", user.ID, "editor")), &user))
	require.Equal(t, adminapi.RoleEditor, user.Role)

	_, _, err = f.run(t, "users", "status", user.ID, "gone")
	require.ErrorContains(t, err, "unknown user status")

	var stats adminapi.UserStats
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "users", "stats")), &stats))
	require.Equal(t, 4, stats.Total)
}

func TestUsers_PasswordResetWithoutSession(t *testing.T) {
	f := newCLIFixture(t)

	require.Contains(t, f.mustRun(t, "users", "forgot-password", "editor@example.com"), "reset link")
	token, ok := f.srv.Data().PendingResetToken("editor@example.com")
	require.True(t, ok)

	require.Contains(t, f.mustRun(t, "users", "reset-password", token, "--password", "Changed123"), "Password has been reset")
	f.login(t, "editor@example.com", "Changed123")
}

func TestSettings(t *testing.T) {
	f := newCLIFixture(t)
	f.login(t, "admin@example.com", "admin123")

	var all map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "settings", "get")), &all))
	require.Contains(t, all, "general")
	require.Contains(t, all, "email")
	require.Contains(t, all, "payment-gateways")

	_, _, err := f.run(t, "settings", "get", "shipping")
	require.Error(t, err)

	var general adminapi.GeneralSettings
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "settings", "set-general", "--store-name", "Tool Depot", "--maintenance")), &general))
	require.Equal(t, "Tool Depot", general.StoreName)
	require.True(t, general.MaintenanceMode)
	require.Equal(t, "USD", general.Currency)

	_, _, err = f.run(t, "settings", "set-general", "--store-email", "nope")
	require.ErrorContains(t, err, "storeEmail: Please enter a valid email")

	out := f.mustRun(t, "settings", "test-gateway", "stripe",
		"--set", "publishableKey=pk_test", "--set", "secretKey=sk_test", "--set", "webhookSecret=whsec")
	require.Contains(t, out, `"success": true`)

	_, _, err = f.run(t, "settings", "test-gateway", "paypal")
	require.ErrorContains(t, err, "gateway test failed")
}
