package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NormalizeName is the case-insensitive identity of a catalog name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseId accepts only a positive base-10 integer.
func ParseId(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidId, raw)
	}
	return id, nil
}

// ParseOptionalId returns 0 for an empty value.
func ParseOptionalId(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return ParseId(raw)
}

// FlexibleInt decodes a JSON number or a decimal string. null and "" decode to 0.
type FlexibleInt int

func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return &json.UnmarshalTypeError{Value: "string " + strconv.Quote(s), Type: reflect.TypeOf(*f)}
		}
		*f = FlexibleInt(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	i, err := n.Int64()
	if err != nil {
		// 12.0 is still an integer id
		fl, ferr := n.Float64()
		if ferr != nil || fl != float64(int64(fl)) {
			return &json.UnmarshalTypeError{Value: "number " + n.String(), Type: reflect.TypeOf(*f)}
		}
		i = int64(fl)
	}
	*f = FlexibleInt(i)
	return nil
}

// JSONFieldName reports struct fields by their json tag, for validator.RegisterTagNameFunc.
func JSONFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// ProcessValidationErrors turns validator failures into a ValidationError.
// Errors of any other kind are returned unchanged.
func ProcessValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	result := &ValidationError{}
	for _, ve := range validationErrors {
		result.Violations = append(result.Violations, FieldViolation{
			Field:   ve.Field(),
			Tag:     ve.Tag(),
			Message: violationMessage(ve),
		})
	}
	return result
}

func violationMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return ve.Field() + " is required"
	case "gt":
		return ve.Field() + " must be greater than " + ve.Param()
	case "min":
		return ve.Field() + " must be at least " + ve.Param()
	case "max":
		return ve.Field() + " must be at most " + ve.Param()
	default:
		return ve.Field() + " failed " + ve.Tag()
	}
}
