package cli

import (
	"context"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/form"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// fieldFlag binds a command flag to a form field addressed by json name
type fieldFlag struct {
	field string
	value func() any
}

type fieldFlags map[string]fieldFlag

// edit copies the flags the user set into a form over initial, validates it and calls save
func edit[T any](cmd *cobra.Command, initial T, flags fieldFlags, save func(context.Context, T) error) error {
	f := form.New(initial)

	var setErr error
	cmd.Flags().Visit(func(fl *pflag.Flag) {
		binding, ok := flags[fl.Name]
		if !ok || setErr != nil {
			return
		}
		setErr = f.SetFieldValue(binding.field, binding.value())
	})
	if setErr != nil {
		return setErr
	}

	result, err := f.Submit(cmd.Context(), save)
	if err != nil {
		return describe(err)
	}
	return validationError(result)
}

func addListFlags(cmd *cobra.Command, params *adminapi.ListParams, statusUsage string) {
	cmd.Flags().IntVar(&params.Page, "page", 0, "Page number, starting at 1")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Items per page")
	cmd.Flags().StringVar(&params.Search, "search", "", "Free text search")
	cmd.Flags().StringVar(&params.Sort, "sort", "", "Sort field, prefix with - for descending order")
	if statusUsage != "" {
		cmd.Flags().StringVar(&params.Status, "status", "", statusUsage)
	}
}
