// Package cli implements the storeadmin command line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/apiclient"
	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/credentials/storefactory"
	"github.com/jrsteele09/go-store-admin/guard"
	"github.com/jrsteele09/go-store-admin/internal/config"
	"github.com/jrsteele09/go-store-admin/internal/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"
)

const (
	OutputJSON = "json"
	OutputYAML = "yaml"

	// annotationGuard marks a command that needs a session; the value is a guard requirement
	annotationGuard = "guard"
	guardAuth       = "authenticated"
	guardAdmin      = "admin"
)

// SessionEndedMessage is printed when the session ends while a command runs
const SessionEndedMessage = "session ended, please log in again"

// app is the state shared by every command of one invocation
type app struct {
	cfg    config.Config
	logger zerolog.Logger

	baseURL string
	output  string

	store      credentials.Store
	ownsStore  bool
	httpClient *http.Client
	api        *adminapi.API
	guard      *guard.Guard
	principal  *guard.Principal
}

type Option func(*app)

func WithConfig(cfg config.Config) Option {
	return func(a *app) {
		a.cfg = cfg
	}
}

// WithStore uses store instead of the configured credential store
func WithStore(store credentials.Store) Option {
	return func(a *app) {
		a.store = store
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *app) {
		a.logger = logger
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(a *app) {
		a.httpClient = hc
	}
}

// setup opens the credential store and builds the API client. It runs before every command.
func (a *app) setup(cmd *cobra.Command) error {
	if a.output != OutputJSON && a.output != OutputYAML {
		return fmt.Errorf("unsupported output %q, use %s or %s", a.output, OutputJSON, OutputYAML)
	}
	ctx := cmd.Context()

	if a.store == nil {
		store, err := storefactory.New(ctx, a.cfg, storefactory.Dependencies{})
		if err != nil {
			return fmt.Errorf("open credential store: %w", err)
		}
		a.store = store
		a.ownsStore = true
	}
	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: a.cfg.GetRequestTimeout()}
	}

	refresher, err := a.newRefresher(ctx)
	if err != nil {
		return err
	}
	client, err := apiclient.New(a.baseURL, a.store,
		apiclient.WithHTTPClient(a.httpClient),
		apiclient.WithRefresher(refresher),
		apiclient.WithRefreshTimeout(a.cfg.GetRefreshTimeout()),
		apiclient.WithLogger(a.logger),
		apiclient.WithUserAgent("storeadmin/"+BuildVersion),
	)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	if err := client.OnSessionEnded(func(ev apiclient.SessionEndedEvent) {
		if ev.Reason != apiclient.ReasonLogout {
			fmt.Fprintln(errOut, SessionEndedMessage)
		}
	}); err != nil {
		return fmt.Errorf("subscribe to session events: %w", err)
	}

	a.api = adminapi.New(client)
	a.guard = guard.New(a.store)
	return a.checkGuard(cmd)
}

func (a *app) newRefresher(ctx context.Context) (apiclient.Refresher, error) {
	switch a.cfg.GetRefreshMode() {
	case config.RefreshModeOAuth2:
		if issuer := a.cfg.GetOIDCIssuer(); issuer != "" {
			return apiclient.NewOIDCRefresher(ctx, issuer, a.cfg.GetOAuthClientID(), a.cfg.GetOAuthClientSecret(), a.httpClient)
		}
		if a.cfg.GetOAuthTokenURL() == "" {
			return nil, errors.New("REFRESH_MODE=oauth2 needs OIDC_ISSUER or OAUTH_TOKEN_URL")
		}
		return apiclient.NewOAuth2Refresher(&oauth2.Config{
			ClientID:     a.cfg.GetOAuthClientID(),
			ClientSecret: a.cfg.GetOAuthClientSecret(),
			Endpoint:     oauth2.Endpoint{TokenURL: a.cfg.GetOAuthTokenURL()},
		}, a.httpClient), nil
	default:
		path := a.cfg.GetRefreshPath()
		if path == "" {
			path = adminapi.PathRefreshToken
		}
		return apiclient.NewJSONRefresher(strings.TrimRight(a.baseURL, "/")+path, a.httpClient), nil
	}
}

func (a *app) checkGuard(cmd *cobra.Command) error {
	requirement, ok := guardOf(cmd)
	if !ok {
		return nil
	}
	p, err := a.guard.Check(cmd.Context(), requirement)
	switch {
	case errors.Is(err, guard.ErrNotAuthenticated):
		return fmt.Errorf("not logged in, run `storeadmin login` first")
	case errors.Is(err, guard.ErrForbidden):
		return fmt.Errorf("%s needs the admin role, you are signed in as %s", cmd.CommandPath(), p.Role)
	case err != nil:
		return err
	}
	a.principal = p
	return nil
}

// guardOf returns the requirement of cmd, inherited from the closest annotated ancestor
func guardOf(cmd *cobra.Command) (guard.Requirement, bool) {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Annotations[annotationGuard] {
		case guardAdmin:
			return guard.Admin, true
		case guardAuth:
			return guard.Authenticated, true
		}
	}
	return guard.Authenticated, false
}

func (a *app) teardown() error {
	if !a.ownsStore || a.store == nil {
		return nil
	}
	return storefactory.Close(a.store)
}

// print writes v to out in the selected output format
func (a *app) print(out io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if a.output == OutputJSON {
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	// Round trip through JSON so yaml keys match the API field names
	var doc any
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}

func requireGuard(cmd *cobra.Command, requirement string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationGuard] = requirement
	return cmd
}
