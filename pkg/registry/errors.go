package registry

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformed is returned when the input is not a CBOR map.
	ErrMalformed = errors.New("malformed item")

	// ErrMissingField is returned when a required key is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrFieldType is returned when a key is present with a value of the
	// wrong CBOR type.
	ErrFieldType = errors.New("unexpected field type")

	// ErrUnexpectedTag is returned when a nested item carries a registry tag
	// other than the one expected for its field.
	ErrUnexpectedTag = errors.New("unexpected registry tag")

	// ErrNestedItem is returned when a nested item failed to decode. The
	// nested failure is kept as the cause.
	ErrNestedItem = errors.New("invalid nested item")

	// ErrInvalidValue is returned when a field has the right type but a value
	// outside its domain.
	ErrInvalidValue = errors.New("invalid field value")
)

// FieldError describes a decode failure of a single registry item field.
type FieldError struct {
	// Item is the registry type name, e.g. crypto-hdkey.
	Item string

	// Field is the name of the offending field. Empty for failures of the
	// item as a whole.
	Field string

	// Kind is one of the Err* sentinels of this package.
	Kind error

	// Err is the underlying cause, if any.
	Err error
}

func (e *FieldError) Error() string {
	where := e.Item
	if e.Field != "" {
		where += "." + e.Field
	}

	if e.Err == nil {
		return fmt.Sprintf("%s: %v", where, e.Kind)
	}

	return fmt.Sprintf("%s: %v: %v", where, e.Kind, e.Err)
}

// Is reports whether target is the kind of this error.
func (e *FieldError) Is(target error) bool {
	return e.Kind == target
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

func typeError(item, field, want string, got interface{}) error {
	return &FieldError{
		Item:  item,
		Field: field,
		Kind:  ErrFieldType,
		Err:   errorf("expected %s, got %s", want, typeName(got)),
	}
}

// MissingError reports that field is absent from item.
func MissingError(item, field string) error {
	return &FieldError{Item: item, Field: field, Kind: ErrMissingField}
}

// InvalidError reports a field whose value is outside its domain.
func InvalidError(item, field string, cause error) error {
	return &FieldError{
		Item:  item,
		Field: field,
		Kind:  ErrInvalidValue,
		Err:   cause,
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case bool:
		return "bool"
	case []byte:
		return "bytes"
	case string:
		return "text"
	case uint64, int64:
		return "integer"
	case []interface{}:
		return "array"
	case map[interface{}]interface{}, Map:
		return "map"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
