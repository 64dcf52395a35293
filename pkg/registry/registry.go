package registry

import "github.com/fxamacker/cbor/v2"

// RegistryType identifies an item type in the UR registry.
type RegistryType struct {
	Type string
	Tag  uint64
}

var (
	CryptoHDKey    = RegistryType{Type: "crypto-hdkey", Tag: 303}
	CryptoKeyPath  = RegistryType{Type: "crypto-keypath", Tag: 304}
	CryptoCoinInfo = RegistryType{Type: "crypto-coininfo", Tag: 305}
)

var registryTypes = map[uint64]RegistryType{
	CryptoHDKey.Tag:    CryptoHDKey,
	CryptoKeyPath.Tag:  CryptoKeyPath,
	CryptoCoinInfo.Tag: CryptoCoinInfo,
}

// Lookup returns the registry type registered under tag.
func Lookup(tag uint64) (RegistryType, bool) {
	rt, ok := registryTypes[tag]
	return rt, ok
}

func (rt RegistryType) String() string {
	return rt.Type
}

// Map is the integer keyed associative value every registry item encodes to.
type Map map[uint64]interface{}

// Item is implemented by every registry type that can be embedded into another
// item as a tagged value.
type Item interface {
	RegistryType() RegistryType
	ToCBOR() Map
}

// Tagged wraps the item's associative value in its registry tag.
func Tagged(item Item) cbor.Tag {
	return cbor.Tag{
		Number:  item.RegistryType().Tag,
		Content: item.ToCBOR(),
	}
}

// DecodeTagged checks that v is a tag carrying rt and hands its content to
// decode. The field name is attached to any failure.
func DecodeTagged[T any](rt RegistryType, item, field string, v interface{},
	decode func(interface{}) (T, error)) (T, error) {

	var zero T

	tag, ok := v.(cbor.Tag)
	if !ok {
		return zero, typeError(item, field, "tag", v)
	}
	if tag.Number != rt.Tag {
		return zero, &FieldError{
			Item:  item,
			Field: field,
			Kind:  ErrUnexpectedTag,
			Err: errorf("want %d (%s), got %d", rt.Tag, rt.Type,
				tag.Number),
		}
	}

	decoded, err := decode(tag.Content)
	if err != nil {
		return zero, &FieldError{
			Item:  item,
			Field: field,
			Kind:  ErrNestedItem,
			Err:   err,
		}
	}

	return decoded, nil
}
