// Package binding decodes and validates request bodies and writes JSON
// responses for the mounted route groups.
package binding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
	"github.com/leslieo2/hotel-booking-mock/internal/server/middleware"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator. Field errors are reported
// under their JSON names.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Bind decodes the request body into v and validates it. JSON bodies are
// decoded strictly. Urlencoded values decoded by the body parser are
// converted to the numeric and boolean field types of v first. Unknown
// fields and empty bodies are rejected as bad requests, failed rules as
// validation errors.
func Bind(r *http.Request, v interface{}) error {
	if err := decode(r, v); err != nil {
		return err
	}
	return Validate(v)
}

func decode(r *http.Request, v interface{}) error {
	var raw []byte
	if form := middleware.FormFromContext(r.Context()); form != nil {
		encoded, err := json.Marshal(coerceForm(form, reflect.TypeOf(v)))
		if err != nil {
			return apierror.Internal(err)
		}
		raw = encoded
	} else if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return apierror.Wrap(err, http.StatusBadRequest, constants.ErrorCodeBadRequest, "Failed to read request body")
		}
		raw = body
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return apierror.BadRequest("Request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	return nil
}

// coerceForm converts the string leaves of a decoded form to the kind of
// the field they will be decoded into. Values that do not parse are left
// as strings and reported by the JSON decoder as type errors.
func coerceForm(value interface{}, t reflect.Type) interface{} {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return value
	}

	switch v := value.(type) {
	case string:
		return coerceString(v, t)
	case []interface{}:
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
			return v
		}
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = coerceForm(item, t.Elem())
		}
		return out
	case map[string]interface{}:
		switch t.Kind() {
		case reflect.Struct:
			fields := jsonFields(t)
			out := make(map[string]interface{}, len(v))
			for key, item := range v {
				if ft, ok := fields[key]; ok {
					out[key] = coerceForm(item, ft)
				} else {
					out[key] = item
				}
			}
			return out
		case reflect.Map:
			out := make(map[string]interface{}, len(v))
			for key, item := range v {
				out[key] = coerceForm(item, t.Elem())
			}
			return out
		}
	}
	return value
}

func coerceString(s string, t reflect.Type) interface{} {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}

// jsonFields maps the JSON names of the exported fields of t to their types
func jsonFields(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		fields[name] = f.Type
	}
	return fields
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apierror.Validation(map[string]string{
			field: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
		})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apierror.Wrap(err, http.StatusBadRequest, constants.ErrorCodeInvalidJSON, "Malformed JSON request body")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return apierror.Validation(map[string]string{field: "is not allowed"})
	default:
		return apierror.Wrap(err, http.StatusBadRequest, constants.ErrorCodeBadRequest, "Invalid request body")
	}
}

// Validate checks v against its validate tags
func Validate(v interface{}) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierror.Internal(err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe)] = formatFieldError(fe)
	}
	return apierror.Validation(fields)
}

// fieldPath drops the top level struct name from the namespace, so
// LoginRequest.username becomes username and BookRequest.guest.email
// becomes guest.email
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "datetime":
		return fmt.Sprintf("must be a date in the format %s", dateHint(fe.Param()))
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

func dateHint(layout string) string {
	if layout == "2006-01-02" {
		return "YYYY-MM-DD"
	}
	return layout
}

// JSON writes v with status
func JSON(w http.ResponseWriter, status int, v interface{}) error {
	apierror.WriteJSON(w, status, v)
	return nil
}
