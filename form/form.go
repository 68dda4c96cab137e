// Package form holds the editable state of a form: the current values, per-field error messages and
// whether a submit is running. Fields are addressed by their json name, nested fields with dots
// ("stripe.secretKey").
package form

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

var (
	ErrUnknownField = errors.New("unknown form field")
	ErrInvalidValue = errors.New("invalid form value")
)

// Result is the outcome of Submit. Errors is set when validation failed.
type Result struct {
	Success bool
	Errors  map[string]string
}

// Form is safe for concurrent use. T must be a struct.
type Form[T any] struct {
	mu         sync.Mutex
	initial    T
	values     T
	errors     map[string]string
	submitting bool
	validate   *validator.Validate
}

func New[T any](initial T) *Form[T] {
	return &Form[T]{
		initial:  initial,
		values:   initial,
		errors:   map[string]string{},
		validate: newValidator(),
	}
}

func (f *Form[T]) Values() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Errors returns a copy of the field errors
func (f *Form[T]) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyErrors(f.errors)
}

func (f *Form[T]) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// SetFieldValue sets the field with json name name and clears its error. value must be assignable
// or convertible to the field's type.
func (f *Form[T]) SetFieldValue(name string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	field, err := fieldByJSONName(reflect.ValueOf(&f.values).Elem(), name)
	if err != nil {
		return err
	}
	if err := assign(field, value); err != nil {
		return fmt.Errorf("[form SetFieldValue] %s: %w", name, err)
	}
	delete(f.errors, name)
	return nil
}

func (f *Form[T]) SetFieldError(name, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if message == "" {
		delete(f.errors, name)
		return
	}
	f.errors[name] = message
}

func (f *Form[T]) SetValues(values T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = values
}

func (f *Form[T]) SetErrors(errs map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = copyErrors(errs)
}

// Reset restores the initial values and clears every error
func (f *Form[T]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = f.initial
	f.errors = map[string]string{}
}

// Submit validates every field and, if all are valid, calls onSubmit with the current values.
// Validation failures are reported in the Result, not as an error. An error from onSubmit is
// returned as is.
func (f *Form[T]) Submit(ctx context.Context, onSubmit func(context.Context, T) error) (Result, error) {
	f.mu.Lock()
	f.submitting = true
	values := f.values
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	errs, err := f.check(values)
	if err != nil {
		return Result{}, err
	}
	f.SetErrors(errs)
	if len(errs) > 0 {
		return Result{Success: false, Errors: errs}, nil
	}

	if err := onSubmit(ctx, values); err != nil {
		return Result{}, err
	}
	return Result{Success: true}, nil
}

func (f *Form[T]) check(values T) (map[string]string, error) {
	errs := map[string]string{}
	err := f.validate.Struct(values)
	if err == nil {
		return errs, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("[form Submit] %w", err)
	}
	for _, fe := range fieldErrs {
		path := fieldPath(fe)
		// First failure of a field wins
		if _, ok := errs[path]; !ok {
			errs[path] = message(fe)
		}
	}
	return errs, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// fieldPath drops the struct type name validator puts in front of the namespace
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}
	return path
}

func fieldByJSONName(v reflect.Value, name string) (reflect.Value, error) {
	for _, part := range strings.Split(name, ".") {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		found := false
		for i := 0; i < v.NumField(); i++ {
			sf := v.Type().Field(i)
			if sf.IsExported() && jsonName(sf) == part {
				v = v.Field(i)
				found = true
				break
			}
		}
		if !found {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
	}
	return v, nil
}

func assign(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Type().AssignableTo(field.Type()):
		field.Set(rv)
	case field.Kind() == reflect.String && rv.Kind() != reflect.String:
		// int -> string converts to a rune, never what a form means
		return fmt.Errorf("%w: cannot use %T as %s", ErrInvalidValue, value, field.Type())
	case rv.Type().ConvertibleTo(field.Type()):
		field.Set(rv.Convert(field.Type()))
	default:
		return fmt.Errorf("%w: cannot use %T as %s", ErrInvalidValue, value, field.Type())
	}
	return nil
}

func copyErrors(errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
