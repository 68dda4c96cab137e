package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-store-admin/apiclient"
	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/credentials/memstore"
	apperrors "github.com/jrsteele09/go-store-admin/internal/errors"
	"github.com/stretchr/testify/require"
)

var loggedIn = credentials.Credentials{AccessToken: "A1", RefreshToken: "R1"}

func TestNew_Validation(t *testing.T) {
	_, err := apiclient.New("ftp://example.com", memstore.New())
	require.Error(t, err)

	_, err = apiclient.New("http://example.com/api", nil)
	require.Error(t, err)

	c, err := apiclient.New("http://example.com/api/", memstore.New())
	require.NoError(t, err)
	require.Equal(t, "http://example.com/api", c.BaseURL())
}

func TestDo_SendsBearerAndRequestID(t *testing.T) {
	b := newBackend(t)
	b.accept("A1")
	f := newSession(t, b, loggedIn)

	resp, err := f.client.Do(t.Context(), http.MethodGet, "/admin/products", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Bearer A1", b.lastHeader().Get("Authorization"))
	require.NotEmpty(t, resp.RequestID)
	require.Equal(t, resp.RequestID, b.lastHeader().Get(apiclient.HeaderRequestID))

	var out struct {
		Path string `json:"path"`
	}
	require.NoError(t, resp.Decode(&out))
	require.Equal(t, "/admin/products", out.Path)
	require.Zero(t, b.refreshCalls.Load())
}

func TestDo_NoTokenStored(t *testing.T) {
	b := newBackend(t)
	f := newSession(t, b, credentials.Credentials{})

	err := f.client.Get(t.Context(), "/admin/profile", nil, nil)
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	require.Empty(t, b.lastHeader().Get("Authorization"))
	require.Zero(t, b.refreshCalls.Load())
	require.Equal(t, []apiclient.EndReason{apiclient.ReasonRefreshFailed}, f.ended.all())
}

func TestDo_StatusErrorsAreReturnedVerbatim(t *testing.T) {
	b := newBackend(t)
	b.accept("A1")
	f := newSession(t, b, loggedIn)

	err := f.client.Get(t.Context(), "/missing", nil, nil)
	require.ErrorIs(t, err, apiclient.ErrStatus)
	require.True(t, apiclient.IsNotFound(err))

	var httpErr *apiclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, "product not found", httpErr.Message())

	err = f.client.Get(t.Context(), "/broken", nil, nil)
	require.True(t, apiclient.IsStatus(err, http.StatusInternalServerError))
	require.Zero(t, b.refreshCalls.Load())
}

func TestDo_WithoutAuthTreats401AsStatus(t *testing.T) {
	b := newBackend(t)
	f := newSession(t, b, loggedIn)

	err := f.client.Post(t.Context(), "/public", map[string]string{"email": "a@b.c"}, nil, apiclient.WithoutAuth())
	require.True(t, apiclient.IsStatus(err, http.StatusUnauthorized))
	require.Empty(t, b.lastHeader().Get("Authorization"))
	require.Equal(t, "application/json", b.lastHeader().Get("Content-Type"))
	require.Zero(t, b.refreshCalls.Load())
	require.Empty(t, f.ended.all())
}

func TestDo_NetworkErrorDoesNotRefresh(t *testing.T) {
	b := newBackend(t)
	f := newSession(t, b, loggedIn)
	b.server.Close()

	err := f.client.Get(t.Context(), "/admin/products", nil, nil)
	require.ErrorIs(t, err, apiclient.ErrNetwork)
	require.Zero(t, b.refreshCalls.Load())
	require.Equal(t, loggedIn, f.creds(t))
}

func TestDo_OversizedBodyIsAnError(t *testing.T) {
	b := newBackend(t)
	f := newSession(t, b, loggedIn)

	var out map[string]string
	err := f.client.Get(t.Context(), "/large", nil, &out)
	require.ErrorIs(t, err, apiclient.ErrNetwork)
	require.ErrorIs(t, err, apiclient.ErrResponseTooLarge)
	require.Nil(t, out)
}

func TestRefresh_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	b := newBackend(t)
	f := newSession(t, b, loggedIn)

	err := f.client.Get(t.Context(), "/admin/orders", nil, nil)
	require.NoError(t, err)

	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.Equal(t, credentials.Credentials{AccessToken: "A2", RefreshToken: "R1"}, f.creds(t))
	require.Equal(t, []hit{{Path: "/admin/orders", Token: "A2"}}, b.successfulHits())
}

func TestRefresh_StoresRotatedRefreshToken(t *testing.T) {
	b := newBackend(t)
	b.rotate = true
	f := newSession(t, b, loggedIn)

	require.NoError(t, f.client.Get(t.Context(), "/admin/orders", nil, nil))
	require.Equal(t, credentials.Credentials{AccessToken: "A2", RefreshToken: "R2"}, f.creds(t))
}

func TestRefresh_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	const n = 10
	b := newBackend(t)
	b.hold()
	f := newSession(t, b, loggedIn)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.client.Get(t.Context(), "/admin/users", nil, nil)
		}(i)
	}

	<-b.entered
	require.Eventually(t, func() bool {
		return f.client.PendingRefreshWaiters() == n
	}, 5*time.Second, time.Millisecond)
	b.release()
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, b.refreshCalls.Load())
	hits := b.successfulHits()
	require.Len(t, hits, n)
	for _, h := range hits {
		require.Equal(t, "A2", h.Token)
	}
	require.False(t, f.client.RefreshInFlight())
	require.Empty(t, f.ended.all())
}

func TestRefresh_FailureEndsSessionOnce(t *testing.T) {
	const n = 5
	b := newBackend(t)
	b.failRefresh = true
	b.hold()
	f := newSession(t, b, loggedIn)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.client.Get(t.Context(), "/admin/settings/general", nil, nil)
		}(i)
	}

	<-b.entered
	require.Eventually(t, func() bool {
		return f.client.PendingRefreshWaiters() == n
	}, 5*time.Second, time.Millisecond)
	b.release()
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	}
	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.True(t, f.creds(t).IsZero())
	require.Equal(t, []apiclient.EndReason{apiclient.ReasonRefreshFailed}, f.ended.all())
	require.Empty(t, b.successfulHits())
}

func TestRefresh_ReplaysInArrivalOrder(t *testing.T) {
	b := newBackend(t)
	b.hold()
	f := newSession(t, b, loggedIn)

	paths := []string{"/first", "/second", "/third"}
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.client.Get(context.Background(), path, nil, nil)
		}()
		if i == 0 {
			<-b.entered
		}
		require.Eventually(t, func() bool {
			return f.client.PendingRefreshWaiters() == i+1
		}, 5*time.Second, time.Millisecond)
	}
	b.release()
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.Equal(t, []hit{
		{Path: "/first", Token: "A2"},
		{Path: "/second", Token: "A2"},
		{Path: "/third", Token: "A2"},
	}, b.successfulHits())
}

func TestRefresh_AlwaysUnauthorizedTerminates(t *testing.T) {
	b := newBackend(t)
	b.alwaysUnauthorized = true
	f := newSession(t, b, loggedIn)

	err := f.client.Get(t.Context(), "/admin/products", nil, nil)
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.EqualValues(t, 2, b.requests.Load())
	require.True(t, f.creds(t).IsZero())
	require.Equal(t, []apiclient.EndReason{apiclient.ReasonUnauthorized}, f.ended.all())
}

func TestRefresh_TokenRotatedElsewhereReplaysWithoutRefresh(t *testing.T) {
	b := newBackend(t)
	b.accept("A9")
	f := newSession(t, b, loggedIn)

	var once sync.Once
	b.onRequest = func(r *http.Request) {
		once.Do(func() {
			_ = f.store.Set(r.Context(), credentials.KeyAccessToken, "A9")
		})
	}

	require.NoError(t, f.client.Get(t.Context(), "/admin/products", nil, nil))
	require.Zero(t, b.refreshCalls.Load())
	require.Equal(t, []hit{{Path: "/admin/products", Token: "A9"}}, b.successfulHits())
}

func TestRefresh_NoRefreshTokenFailsWithoutCallingEndpoint(t *testing.T) {
	b := newBackend(t)
	f := newSession(t, b, credentials.Credentials{AccessToken: "A1"})

	err := f.client.Get(t.Context(), "/admin/products", nil, nil)
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	require.Zero(t, b.refreshCalls.Load())
	require.True(t, f.creds(t).IsZero())
}

func TestLogout_DiscardsRefreshInFlight(t *testing.T) {
	b := newBackend(t)
	b.hold()
	f := newSession(t, b, loggedIn)

	done := make(chan error, 1)
	go func() {
		done <- f.client.Get(context.Background(), "/admin/orders", nil, nil)
	}()
	<-b.entered

	require.NoError(t, f.client.Logout(t.Context()))
	require.True(t, f.creds(t).IsZero())
	b.release()

	err := <-done
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	require.ErrorIs(t, err, apperrors.ErrSessionEnded)

	// The refresh finished after logout; its tokens must not be written back
	require.True(t, f.creds(t).IsZero())
	require.Equal(t, []apiclient.EndReason{apiclient.ReasonLogout}, f.ended.all())
	require.Empty(t, b.successfulHits())
}

func TestLogout_RefreshFailingAfterReloginKeepsNewSession(t *testing.T) {
	b := newBackend(t)
	b.failRefresh = true
	b.hold()
	f := newSession(t, b, loggedIn)

	done := make(chan error, 1)
	go func() {
		done <- f.client.Get(context.Background(), "/admin/orders", nil, nil)
	}()
	<-b.entered

	require.NoError(t, f.client.Logout(t.Context()))
	next := credentials.Credentials{AccessToken: "B1", RefreshToken: "S1"}
	require.NoError(t, f.client.StartSession(t.Context(), next))
	b.release()

	err := <-done
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	require.ErrorIs(t, err, apperrors.ErrSessionEnded)

	// Get returns after the old refresh was rejected; it must not end the new session
	require.Equal(t, next, f.creds(t))
	require.Equal(t, []apiclient.EndReason{apiclient.ReasonLogout}, f.ended.all())
}

func TestRefresh_FailingAfterReloginKeepsNewSession(t *testing.T) {
	b := newBackend(t)
	b.failRefresh = true
	b.hold()
	f := newSession(t, b, loggedIn)

	done := make(chan error, 1)
	go func() {
		done <- f.client.Get(context.Background(), "/admin/orders", nil, nil)
	}()
	<-b.entered

	next := credentials.Credentials{AccessToken: "B1", RefreshToken: "S1"}
	require.NoError(t, f.client.StartSession(t.Context(), next))
	b.release()

	require.ErrorIs(t, <-done, apperrors.ErrSessionEnded)
	require.Equal(t, next, f.creds(t))
	require.Empty(t, f.ended.all())
}

func TestSession_EndedSignalRearmedByStartSession(t *testing.T) {
	b := newBackend(t)
	f := newSession(t, b, loggedIn)

	require.NoError(t, f.client.Logout(t.Context()))
	require.NoError(t, f.client.Logout(t.Context()))
	require.Len(t, f.ended.all(), 1)

	require.NoError(t, f.client.StartSession(t.Context(), loggedIn))
	require.Equal(t, loggedIn, f.creds(t))
	require.NoError(t, f.client.Logout(t.Context()))
	require.Len(t, f.ended.all(), 2)

	require.ErrorIs(t, f.client.StartSession(t.Context(), credentials.Credentials{}), apperrors.ErrInvalidToken)
}

func TestRefresh_WaiterContextCancelled(t *testing.T) {
	b := newBackend(t)
	b.hold()
	f := newSession(t, b, loggedIn)

	leaderDone := make(chan error, 1)
	go func() {
		leaderDone <- f.client.Get(context.Background(), "/first", nil, nil)
	}()
	<-b.entered

	ctx, cancel := context.WithCancel(context.Background())
	waiterDone := make(chan error, 1)
	go func() {
		waiterDone <- f.client.Get(ctx, "/second", nil, nil)
	}()
	require.Eventually(t, func() bool {
		return f.client.PendingRefreshWaiters() == 2
	}, 5*time.Second, time.Millisecond)

	cancel()
	err := <-waiterDone
	require.ErrorIs(t, err, apiclient.ErrNetwork)
	require.ErrorIs(t, err, context.Canceled)

	b.release()
	require.NoError(t, <-leaderDone)
	require.Equal(t, []hit{{Path: "/first", Token: "A2"}}, b.successfulHits())
}
