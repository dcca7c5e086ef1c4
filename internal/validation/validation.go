package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violations maps a field path (json names, e.g. "lineItems[0].description")
// to a short machine-readable code. Handlers report it verbatim with a 400
// before any persistence is attempted.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var validate = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so violations match the wire payload.
	vd.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return vd
}

// Struct checks every `validate` tag on s and returns the violations found.
// An empty map means the payload is well-formed.
func Struct(s any) Violations {
	v := Violations{}
	err := validate.Struct(s)
	if err == nil {
		return v
	}
	var ferrs validator.ValidationErrors
	if !errors.As(err, &ferrs) {
		v["_"] = "invalid_payload"
		return v
	}
	for _, fe := range ferrs {
		v[fieldPath(fe)] = code(fe)
	}
	return v
}

// Required flags empty strings; kept for ad hoc form checks outside tagged structs.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// fieldPath strips the root struct name from the error namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func code(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "invalid_email"
	case "uuid4":
		return "invalid_uuid"
	case "oneof":
		return "invalid_value"
	case "gt":
		return "must_be_positive"
	case "gte":
		return "must_not_be_negative"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "at_least_one_required"
		}
		return "min_length_" + fe.Param()
	default:
		return fe.Tag()
	}
}
