package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// requestError is a 400 raised before the use case runs.
type requestError struct {
	headline string
	details  []FieldError
}

func (e *requestError) Error() string { return e.headline }

// summarizer lets a request replace the collected messages with one fixed sentence.
type summarizer interface{ validationSummary() string }

// bind decodes the JSON object body field by field into req (a pointer to struct),
// then runs struct validation. Every failing field is reported once, in declaration order.
func bind(c echo.Context, req any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	raw := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return &requestError{headline: "Request body must be a JSON object."}
		}
	}

	rv := reflect.ValueOf(req).Elem()
	rt := rv.Type()
	failed := map[string]string{}

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := jsonName(f)
		msg, ok := raw[name]
		if name == "" || !ok {
			continue
		}
		if err := json.Unmarshal(msg, rv.Field(i).Addr().Interface()); err != nil {
			failed[name] = shapeMessage(name, f.Type)
		}
	}

	if err := c.Validate(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		for _, fe := range ToFieldErrors(ve) {
			if _, seen := failed[fe.Field]; !seen {
				failed[fe.Field] = fe.Message
			}
		}
	}
	if len(failed) == 0 {
		return nil
	}

	re := &requestError{}
	for i := 0; i < rt.NumField(); i++ {
		name := jsonName(rt.Field(i))
		if m, ok := failed[name]; ok {
			re.details = append(re.details, FieldError{Field: name, Message: m})
		}
	}
	if s, ok := req.(summarizer); ok {
		re.headline = s.validationSummary()
	} else {
		re.headline = "Validation failed: " + joinMessages(re.details)
	}
	return re
}
