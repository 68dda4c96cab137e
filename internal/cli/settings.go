package cli

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/spf13/cobra"
)

var settingsSections = []string{"general", "email", "payment-gateways"}

func newSettingsCommand(a *app) *cobra.Command {
	settingsCmd := requireGuard(&cobra.Command{
		Use:   "settings",
		Short: "View and change store settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}, guardAdmin)

	getCmd := &cobra.Command{
		Use:       "get [general|email|payment-gateways]",
		Short:     "Show settings, all sections when none is named",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: settingsSections,
		RunE: func(cmd *cobra.Command, args []string) error {
			sections := settingsSections
			if len(args) == 1 {
				sections = args
			}
			out := map[string]any{}
			for _, section := range sections {
				v, err := a.settingsSection(cmd.Context(), section)
				if err != nil {
					return describe(err)
				}
				out[section] = v
			}
			if len(args) == 1 {
				return a.print(cmd.OutOrStdout(), out[args[0]])
			}
			return a.print(cmd.OutOrStdout(), out)
		},
	}

	var (
		general      adminapi.GeneralSettings
		generalFlags fieldFlags
	)
	setGeneralCmd := &cobra.Command{
		Use:   "set-general",
		Short: "Change general store settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.api.Settings.General(cmd.Context())
			if err != nil {
				return describe(err)
			}
			return edit(cmd, *current, generalFlags, func(ctx context.Context, g adminapi.GeneralSettings) error {
				saved, err := a.api.Settings.UpdateGeneral(ctx, g)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), saved)
			})
		},
	}
	generalFlags = registerGeneralFlags(setGeneralCmd, &general)

	var data map[string]string
	testGatewayCmd := &cobra.Command{
		Use:   "test-gateway <gateway>",
		Short: "Test payment gateway credentials without saving them",
		Long: fmt.Sprintf("Test payment gateway credentials without saving them. Gateways: %s, %s, %s, %s.",
			adminapi.GatewayStripe, adminapi.GatewayPayPal, adminapi.GatewayBankTransfer, adminapi.GatewayCOD),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.api.Settings.TestPaymentGateway(cmd.Context(), args[0], gatewayPayload(data))
			if err != nil {
				return describe(err)
			}
			if err := a.print(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("gateway test failed: %s", result.Message)
			}
			return nil
		},
	}
	testGatewayCmd.Flags().StringToStringVar(&data, "set", nil, "Gateway setting key=value using API field names, e.g. secretKey=sk_test")

	settingsCmd.AddCommand(getCmd, setGeneralCmd, testGatewayCmd)
	return settingsCmd
}

func (a *app) settingsSection(ctx context.Context, section string) (any, error) {
	switch section {
	case "general":
		return a.api.Settings.General(ctx)
	case "email":
		return a.api.Settings.Email(ctx)
	default:
		return a.api.Settings.PaymentGateways(ctx)
	}
}

func registerGeneralFlags(cmd *cobra.Command, g *adminapi.GeneralSettings) fieldFlags {
	fs := cmd.Flags()
	fs.StringVar(&g.StoreName, "store-name", "", "Store name")
	fs.StringVar(&g.StoreEmail, "store-email", "", "Store contact email")
	fs.StringVar(&g.StorePhone, "store-phone", "", "Store phone")
	fs.StringVar(&g.StoreAddress, "store-address", "", "Store address")
	fs.StringVar(&g.Timezone, "timezone", "", "Timezone, e.g. Europe/London")
	fs.StringVar(&g.Currency, "currency", "", "Currency code, e.g. USD")
	fs.BoolVar(&g.MaintenanceMode, "maintenance", false, "Put the store in maintenance mode")
	fs.StringVar(&g.MaintenanceMessage, "maintenance-message", "", "Message shown during maintenance")

	return fieldFlags{
		"store-name":          {field: "storeName", value: func() any { return g.StoreName }},
		"store-email":         {field: "storeEmail", value: func() any { return g.StoreEmail }},
		"store-phone":         {field: "storePhone", value: func() any { return g.StorePhone }},
		"store-address":       {field: "storeAddress", value: func() any { return g.StoreAddress }},
		"timezone":            {field: "timezone", value: func() any { return g.Timezone }},
		"currency":            {field: "currency", value: func() any { return g.Currency }},
		"maintenance":         {field: "maintenanceMode", value: func() any { return g.MaintenanceMode }},
		"maintenance-message": {field: "maintenanceMessage", value: func() any { return g.MaintenanceMessage }},
	}
}

// gatewayPayload turns key=value pairs into a JSON object; "true" and "false" become booleans
func gatewayPayload(data map[string]string) map[string]any {
	payload := make(map[string]any, len(data))
	for k, v := range data {
		switch v {
		case "true", "false":
			payload[k] = v == "true"
		default:
			payload[k] = v
		}
	}
	return payload
}
