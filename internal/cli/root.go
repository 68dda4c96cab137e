package cli

import (
	"context"

	"github.com/jrsteele09/go-store-admin/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var BuildVersion = "dev"

// NewRootCommand builds the storeadmin command tree
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{
		cfg:    config.New(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:           "storeadmin",
		Short:         "Store admin CLI",
		Long:          "Command line client for the store admin REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.baseURL, "base-url", a.cfg.GetBaseURL(), "API root URL. Can also be set via API_BASE_URL.")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", OutputJSON, "Output format: json or yaml.")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of the storeadmin CLI",
			Args:  cobra.NoArgs,
			// No API client needed
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
			Run: func(cmd *cobra.Command, args []string) {
				cmd.Printf("%s\n", BuildVersion)
			},
		},
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newDashboardCommand(a),
		newProductsCommand(a),
		newOrdersCommand(a),
		newUsersCommand(a),
		newSettingsCommand(a),
	)
	return rootCmd
}

// Execute runs the CLI with os.Args
func Execute(ctx context.Context, opts ...Option) error {
	return NewRootCommand(opts...).ExecuteContext(ctx)
}
