package http

import (
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

// ---- helpers ----

var decimalType = reflect.TypeOf(decimal.Decimal{})

// shapeMessage is reported when a body field has the wrong JSON type.
func shapeMessage(name string, t reflect.Type) string {
	switch {
	case t == decimalType:
		return name + " must be a positive number."
	case t.Kind() == reflect.Bool:
		return name + " must be a boolean."
	case t.Kind() == reflect.String:
		return name + " must be a string."
	default:
		return name + " has an invalid type."
	}
}

func joinMessages(details []FieldError) string {
	msgs := make([]string, 0, len(details))
	for _, d := range details {
		msgs = append(msgs, d.Message)
	}
	return strings.Join(msgs, ", ")
}
