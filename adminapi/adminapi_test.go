package adminapi_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/apiclient"
	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/credentials/memstore"
	"github.com/jrsteele09/go-store-admin/devserver"
	"github.com/jrsteele09/go-store-admin/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api       *adminapi.API
	store     credentials.Store
	srv       *devserver.Server
	refreshes *atomic.Int32
	advance   func(time.Duration)
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
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

	store := memstore.New()
	client, err := apiclient.New(ts.URL+devserver.APIPrefix, store)
	require.NoError(t, err)

	return &harness{
		api:       adminapi.New(client),
		store:     store,
		srv:       srv,
		refreshes: refreshes,
		advance: func(d time.Duration) {
			clockMu.Lock()
			defer clockMu.Unlock()
			current = current.Add(d)
		},
	}
}

func (h *harness) login(t *testing.T, email, password string) *adminapi.LoginResult {
	t.Helper()
	result, err := h.api.Auth.Login(context.Background(), email, password)
	require.NoError(t, err)
	return result
}

func TestAuth_LoginStoresSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	result := h.login(t, "admin@example.com", "admin123")
	require.Equal(t, "admin@example.com", result.User.Email)

	creds, err := credentials.Load(ctx, h.store)
	require.NoError(t, err)
	require.Equal(t, result.Token, creds.AccessToken)
	require.Equal(t, result.RefreshToken, creds.RefreshToken)

	profile, err := h.api.Auth.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, adminapi.RoleAdmin, profile.Role)
}

func TestAuth_BadLoginKeepsStoreEmpty(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.api.Auth.Login(ctx, "admin@example.com", "nope")
	require.Error(t, err)
	require.True(t, apiclient.IsStatus(err, http.StatusUnauthorized))

	creds, err := credentials.Load(ctx, h.store)
	require.NoError(t, err)
	require.True(t, creds.IsZero())
}

func TestAuth_LogoutEndsSessionWhenBackendFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	var logs bytes.Buffer
	store := memstore.New()
	client, err := apiclient.New(ts.URL, store, apiclient.WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)
	require.NoError(t, client.StartSession(t.Context(), credentials.Credentials{AccessToken: "A1", RefreshToken: "R1"}))

	require.NoError(t, adminapi.New(client).Auth.Logout(t.Context()))
	creds, err := credentials.Load(t.Context(), store)
	require.NoError(t, err)
	require.True(t, creds.IsZero())
	require.Contains(t, logs.String(), "backend logout failed")
}

func TestAuth_Logout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	result := h.login(t, "admin@example.com", "admin123")

	ended := make(chan apiclient.SessionEndedEvent, 1)
	require.NoError(t, h.api.Client.OnSessionEnded(func(ev apiclient.SessionEndedEvent) { ended <- ev }))

	require.NoError(t, h.api.Auth.Logout(ctx))
	creds, err := credentials.Load(ctx, h.store)
	require.NoError(t, err)
	require.True(t, creds.IsZero())

	select {
	case ev := <-ended:
		require.Equal(t, apiclient.ReasonLogout, ev.Reason)
	case <-time.After(time.Second):
		t.Fatal("session ended event not published")
	}

	// The backend revoked the refresh token too
	_, err = apiclient.NewJSONRefresher(h.api.Client.BaseURL()+adminapi.PathRefreshToken, nil).
		Refresh(ctx, result.RefreshToken)
	require.ErrorIs(t, err, apiclient.ErrStatus)

	_, err = h.api.Auth.Profile(ctx)
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
}

func TestSession_ExpiredAccessTokenIsRefreshed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	result := h.login(t, "admin@example.com", "admin123")

	h.advance(20 * time.Minute)

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.api.Products.List(ctx, adminapi.ListParams{})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, h.refreshes.Load())

	creds, err := credentials.Load(ctx, h.store)
	require.NoError(t, err)
	require.NotEqual(t, result.Token, creds.AccessToken)
	require.Equal(t, result.RefreshToken, creds.RefreshToken)
}

func TestSession_ExpiredRefreshTokenEndsSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t, "admin@example.com", "admin123")

	ended := make(chan apiclient.SessionEndedEvent, 4)
	require.NoError(t, h.api.Client.OnSessionEnded(func(ev apiclient.SessionEndedEvent) { ended <- ev }))

	h.advance(8 * 24 * time.Hour)
	_, err := h.api.Orders.List(ctx, adminapi.ListParams{})
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	select {
	case ev := <-ended:
		require.Equal(t, apiclient.ReasonRefreshFailed, ev.Reason)
	case <-time.After(time.Second):
		t.Fatal("session ended event not published")
	}
	creds, err := credentials.Load(ctx, h.store)
	require.NoError(t, err)
	require.True(t, creds.IsZero())
}

func TestProducts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t, "editor@example.com", "Editor123")

	page, err := h.api.Products.List(ctx, adminapi.ListParams{Sort: "-price", Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	require.Equal(t, "18V Cordless Drill", page.Items[0].Name)

	page, err = h.api.Products.List(ctx, adminapi.ListParams{Search: "knipex"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	created, err := h.api.Products.Create(ctx, adminapi.Product{
		Name:     "Impact Driver",
		Category: "Drivers",
		Price:    99,
		Stock:    4,
		Images:   []string{"https://example.com/images/driver.jpg"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = h.api.Products.Create(ctx, adminapi.Product{Name: "No images", Price: 10})
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))

	updated, err := h.api.Products.UpdateStock(ctx, created.ID, 40)
	require.NoError(t, err)
	require.Equal(t, 40, updated.Stock)

	created.Price = 89
	updated, err = h.api.Products.Update(ctx, created.ID, *created)
	require.NoError(t, err)
	require.Equal(t, 89.0, updated.Price)

	categories, err := h.api.Products.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Drills", "Drivers", "Hand Tools", "Saws"}, categories)

	require.NoError(t, h.api.Products.Delete(ctx, created.ID))
	_, err = h.api.Products.Get(ctx, created.ID)
	require.True(t, apiclient.IsNotFound(err))
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t, "editor@example.com", "Editor123")

	page, err := h.api.Orders.List(ctx, adminapi.ListParams{Status: string(adminapi.OrderPending)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	order := page.Items[0]

	got, err := h.api.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.Number, got.Number)

	updated, err := h.api.Orders.UpdateStatus(ctx, order.ID, adminapi.OrderProcessing)
	require.NoError(t, err)
	require.Equal(t, adminapi.OrderProcessing, updated.Status)

	_, err = h.api.Orders.UpdateStatus(ctx, order.ID, adminapi.OrderCompleted)
	require.True(t, apiclient.IsStatus(err, http.StatusConflict))

	statuses, err := h.api.Orders.Statuses(ctx)
	require.NoError(t, err)
	require.Equal(t, adminapi.OrderStatuses, statuses)

	stats, err := h.api.Orders.Stats(ctx, adminapi.StatsParams{})
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalOrders)
	require.Equal(t, 1, stats.ByStatus[adminapi.OrderCancelled])

	stats, err = h.api.Orders.Stats(ctx, adminapi.StatsParams{From: "2026-03-01"})
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalOrders)

	_, err = h.api.Orders.Stats(ctx, adminapi.StatsParams{From: "yesterday"})
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t, "admin@example.com", "admin123")

	roles, err := h.api.Users.Roles(ctx)
	require.NoError(t, err)
	require.Equal(t, adminapi.Roles, roles)

	created, err := h.api.Users.Create(ctx, adminapi.UserInput{
		Name:            "Vera Vendor",
		Email:           "vera@example.com",
		Role:            adminapi.RoleVendor,
		Password:        "Vendor1234",
		ConfirmPassword: "Vendor1234",
	})
	require.NoError(t, err)
	require.Equal(t, adminapi.UserActive, created.Status)

	_, err = h.api.Users.Create(ctx, adminapi.UserInput{
		Name: "Mismatch", Email: "m@example.com", Role: adminapi.RoleEditor,
		Password: "Password1", ConfirmPassword: "Password2",
	})
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))

	updated, err := h.api.Users.UpdateRole(ctx, created.ID, adminapi.RoleEditor)
	require.NoError(t, err)
	require.Equal(t, adminapi.RoleEditor, updated.Role)

	updated, err = h.api.Users.UpdateStatus(ctx, created.ID, adminapi.UserSuspended)
	require.NoError(t, err)
	require.Equal(t, adminapi.UserSuspended, updated.Status)

	stats, err := h.api.Users.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, stats.Total)
	require.Equal(t, 1, stats.ByStatus[adminapi.UserSuspended])

	page, err := h.api.Users.List(ctx, adminapi.ListParams{Search: "vera"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	logs, err := h.api.Users.ActivityLogs(ctx, page.Items[0].ID, adminapi.ListParams{})
	require.NoError(t, err)
	require.Empty(t, logs.Items)

	require.NoError(t, h.api.Users.Delete(ctx, created.ID))
	_, err = h.api.Users.Get(ctx, created.ID)
	require.True(t, apiclient.IsNotFound(err))
}

func TestUsers_PasswordReset(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.api.Users.SendPasswordReset(ctx, "editor@example.com"))
	token, ok := h.srv.Data().PendingResetToken("editor@example.com")
	require.True(t, ok)

	require.NoError(t, h.api.Users.ResetPassword(ctx, token, "Fresh1234"))
	h.login(t, "editor@example.com", "Fresh1234")
}

func TestUsers_EditorIsForbidden(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t, "editor@example.com", "Editor123")

	_, err := h.api.Users.List(ctx, adminapi.ListParams{})
	require.True(t, apiclient.IsStatus(err, http.StatusForbidden))

	// A 403 is not a session problem
	creds, err := credentials.Load(ctx, h.store)
	require.NoError(t, err)
	require.False(t, creds.IsZero())
	require.Zero(t, h.refreshes.Load())
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t, "admin@example.com", "admin123")

	general, err := h.api.Settings.General(ctx)
	require.NoError(t, err)
	general.StoreName = "Tool Depot"
	general, err = h.api.Settings.UpdateGeneral(ctx, *general)
	require.NoError(t, err)
	require.Equal(t, "Tool Depot", general.StoreName)

	general.StoreEmail = "not-an-email"
	_, err = h.api.Settings.UpdateGeneral(ctx, *general)
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))

	email, err := h.api.Settings.Email(ctx)
	require.NoError(t, err)
	email.SMTPPort = 2525
	email, err = h.api.Settings.UpdateEmail(ctx, *email)
	require.NoError(t, err)
	require.Equal(t, 2525, email.SMTPPort)

	gateways, err := h.api.Settings.PaymentGateways(ctx)
	require.NoError(t, err)
	gateways.Stripe.Enabled = true
	_, err = h.api.Settings.UpdatePaymentGateways(ctx, *gateways)
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))

	result, err := h.api.Settings.TestPaymentGateway(ctx, adminapi.GatewayStripe, adminapi.StripeSettings{})
	require.NoError(t, err)
	require.False(t, result.Success)

	result, err = h.api.Settings.TestPaymentGateway(ctx, adminapi.GatewayStripe, adminapi.StripeSettings{
		PublishableKey: "pk_test", SecretKey: "sk_test", WebhookSecret: "whsec_test",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	_, err = h.api.Settings.TestPaymentGateway(ctx, "bitcoin", nil)
	require.True(t, apiclient.IsNotFound(err))
}
