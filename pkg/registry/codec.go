package registry

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys, shortest
	// integer form, definite lengths only.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		IndefLength:     cbor.IndefLengthForbidden,
		DefaultMapType:  reflect.TypeOf(map[interface{}]interface{}(nil)),
		UTF8:            cbor.UTF8RejectInvalid,
		IntDec:          cbor.IntDecConvertNone,
		MaxNestedLevels: 16,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Marshal returns the canonical encoding of v.
func Marshal(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal parses a single CBOR data item into its generic form. Maps come
// back as map[interface{}]interface{}, unsigned integers as uint64 and
// unregistered tags as cbor.Tag.
func Unmarshal(data []byte) (interface{}, error) {
	var v interface{}
	if err := decMode.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, "unmarshal cbor")
	}

	return v, nil
}

// AsMap converts a generically decoded value into an integer keyed map.
// Entries whose key is not an unsigned integer are dropped.
func AsMap(item string, v interface{}) (Map, error) {
	switch m := v.(type) {
	case Map:
		return m, nil

	case map[uint64]interface{}:
		return Map(m), nil

	case map[interface{}]interface{}:
		out := make(Map, len(m))
		for k, val := range m {
			if key, ok := k.(uint64); ok {
				out[key] = val
			}
		}
		return out, nil

	default:
		return nil, &FieldError{
			Item: item,
			Kind: ErrMalformed,
			Err:  errorf("expected map, got %T", v),
		}
	}
}

// DecodeMap parses data and returns its top level map.
func DecodeMap(item string, data []byte) (Map, error) {
	v, err := Unmarshal(data)
	if err != nil {
		return nil, &FieldError{Item: item, Kind: ErrMalformed, Err: err}
	}

	return AsMap(item, v)
}
