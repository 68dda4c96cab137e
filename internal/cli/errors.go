package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jrsteele09/go-store-admin/apiclient"
	"github.com/jrsteele09/go-store-admin/form"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

// describe turns API errors into messages for a terminal
func describe(err error) error {
	var httpErr *apiclient.HTTPError
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		return fmt.Errorf("not authorized, run `storeadmin login`: %w", err)
	case errors.As(err, &httpErr) && httpErr.Kind == apiclient.KindStatus:
		if msg := httpErr.Message(); msg != "" {
			return fmt.Errorf("%s (HTTP %d): %w", msg, httpErr.StatusCode, err)
		}
		return err
	case errors.Is(err, apiclient.ErrNetwork):
		return fmt.Errorf("cannot reach the API: %w", err)
	}
	return err
}

// validationError reports the field errors of a failed form submit, one per line
func validationError(result form.Result) error {
	if result.Success {
		return nil
	}
	fields := make([]string, 0, len(result.Errors))
	for field := range result.Errors {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	var b strings.Builder
	b.WriteString("invalid input:")
	for _, field := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", field, result.Errors[field])
	}
	return errors.New(b.String())
}
