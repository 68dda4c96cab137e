package form

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

func message(fe validator.FieldError) string {
	label := labelFor(fe.Field())
	switch fe.Tag() {
	case "required", "required_if", "required_with", "required_unless":
		return label + " is required"
	case "email":
		return "Please enter a valid email"
	case "eqfield":
		if strings.Contains(strings.ToLower(fe.Param()), "password") {
			return "Passwords do not match"
		}
		return fmt.Sprintf("%s must match %s", label, labelFor(fe.Param()))
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", label, fe.Param(), unit(fe))
	case "max":
		return fmt.Sprintf("%s must be less than %s%s", label, fe.Param(), unit(fe))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", label, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "url", "http_url":
		return "Please enter a valid URL"
	}
	return label + " is invalid"
}

func unit(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}

// labelFor turns a json field name into a label: "storeEmail" -> "Store email"
func labelFor(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case r == '_':
			b.WriteRune(' ')
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
