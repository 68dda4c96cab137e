package guard_test

import (
	"context"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/credentials/memstore"
	"github.com/jrsteele09/go-store-admin/guard"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("not-known-to-the-client"))
	require.NoError(t, err)
	return token
}

func storeWith(t *testing.T, accessToken string) credentials.Store {
	t.Helper()
	store := memstore.New()
	require.NoError(t, credentials.Save(context.Background(), store, credentials.Credentials{
		AccessToken:  accessToken,
		RefreshToken: "R1",
	}))
	return store
}

func TestCheck(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	adminToken := signedToken(t, jwtlib.MapClaims{"sub": "u1", "email": "admin@example.com", "role": "admin", "exp": exp.Unix()})
	editorToken := signedToken(t, jwtlib.MapClaims{"sub": "u2", "email": "editor@example.com", "role": "editor", "exp": exp.Unix()})

	tests := []struct {
		name    string
		token   string
		req     guard.Requirement
		wantErr error
	}{
		{name: "admin passes admin check", token: adminToken, req: guard.Admin},
		{name: "editor passes authenticated check", token: editorToken, req: guard.Authenticated},
		{name: "editor fails admin check", token: editorToken, req: guard.Admin, wantErr: guard.ErrForbidden},
		{name: "no token", token: "", req: guard.Authenticated, wantErr: guard.ErrNotAuthenticated},
		{name: "garbage token", token: "not.a.jwt", req: guard.Authenticated, wantErr: guard.ErrNotAuthenticated},
		{
			name:    "token without subject",
			token:   signedToken(t, jwtlib.MapClaims{"role": "admin"}),
			req:     guard.Authenticated,
			wantErr: guard.ErrNotAuthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := guard.New(storeWith(t, tt.token))
			p, err := g.Check(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, p.Subject)
			require.Equal(t, exp, p.ExpiresAt.Truncate(time.Second))
		})
	}
}

func TestPrincipal_ExpiredTokenStillAuthenticates(t *testing.T) {
	exp := time.Now().Add(-time.Hour)
	token := signedToken(t, jwtlib.MapClaims{"sub": "u1", "email": "admin@example.com", "role": "admin", "exp": exp.Unix()})

	p, err := guard.New(storeWith(t, token)).Check(context.Background(), guard.Admin)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", p.Email)
	require.Equal(t, adminapi.RoleAdmin, p.Role)
	require.True(t, p.IsAdmin())
	require.True(t, p.Expired(time.Now()))
}

func TestCheck_AfterLogout(t *testing.T) {
	ctx := context.Background()
	token := signedToken(t, jwtlib.MapClaims{"sub": "u1", "role": "admin"})
	store := storeWith(t, token)
	g := guard.New(store)

	_, err := g.Check(ctx, guard.Authenticated)
	require.NoError(t, err)

	require.NoError(t, credentials.Clear(ctx, store))
	_, err = g.Check(ctx, guard.Authenticated)
	require.ErrorIs(t, err, guard.ErrNotAuthenticated)
}
