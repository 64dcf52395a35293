package hdkey

import (
	"encoding/binary"

	"github.com/hblocks/urregistry/pkg/coininfo"
	"github.com/hblocks/urregistry/pkg/keypath"
	"github.com/hblocks/urregistry/pkg/registry"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const item = "crypto-hdkey"

// Decode parses the canonical encoding of a crypto-hdkey.
func Decode(data []byte) (*HDKey, error) {
	m, err := registry.DecodeMap(item, data)
	if err != nil {
		return nil, err
	}

	return fromMap(m)
}

// FromCBOR decodes a crypto-hdkey from an already parsed associative value.
func FromCBOR(v interface{}) (*HDKey, error) {
	m, err := registry.AsMap(item, v)
	if err != nil {
		return nil, err
	}

	return fromMap(m)
}

// UnmarshalCBOR implements cbor.Unmarshaler. The receiver is only assigned
// when decoding succeeds.
func (k *HDKey) UnmarshalCBOR(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*k = *decoded

	return nil
}

func fromMap(m registry.Map) (*HDKey, error) {
	isMaster, ok, err := registry.Field[bool](
		m, item, fieldNames[keyIsMaster], keyIsMaster,
	)
	if err != nil {
		return nil, err
	}

	if ok && isMaster {
		return decodeMaster(m)
	}

	k, err := decodeExtended(m)
	if err != nil {
		return nil, err
	}
	if ok {
		k.isMaster = fn.Some(false)
	}

	return k, nil
}

func decodeMaster(m registry.Map) (*HDKey, error) {
	key, err := requiredBytes(m, keyKeyData)
	if err != nil {
		return nil, err
	}
	chainCode, err := requiredBytes(m, keyChainCode)
	if err != nil {
		return nil, err
	}

	return &HDKey{
		isMaster:  fn.Some(true),
		key:       fn.Some(clone(key)),
		chainCode: fn.Some(clone(chainCode)),
	}, nil
}

func decodeExtended(m registry.Map) (*HDKey, error) {
	var (
		k   HDKey
		err error
	)

	if k.isPrivateKey, err = optional[bool](m, keyIsPrivate); err != nil {
		return nil, err
	}

	key, err := requiredBytes(m, keyKeyData)
	if err != nil {
		return nil, err
	}
	k.key = fn.Some(clone(key))

	chainCode, err := optional[[]byte](m, keyChainCode)
	if err != nil {
		return nil, err
	}
	k.chainCode = cloneOpt(chainCode)

	k.useInfo, err = nested(m, keyUseInfo, registry.CryptoCoinInfo,
		coininfo.FromCBOR)
	if err != nil {
		return nil, err
	}
	k.origin, err = nested(m, keyOrigin, registry.CryptoKeyPath,
		keypath.FromCBOR)
	if err != nil {
		return nil, err
	}
	k.children, err = nested(m, keyChildren, registry.CryptoKeyPath,
		keypath.FromCBOR)
	if err != nil {
		return nil, err
	}

	fp, ok, err := registry.Uint32Field(
		m, item, fieldNames[keyParentFingerprint], keyParentFingerprint,
	)
	if err != nil {
		return nil, err
	}
	if ok {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], fp)
		k.parentFingerprint = fn.Some(b)
	}

	if k.name, err = optional[string](m, keyName); err != nil {
		return nil, err
	}
	if k.note, err = optional[string](m, keyNote); err != nil {
		return nil, err
	}

	return &k, nil
}

func requiredBytes(m registry.Map, key uint64) ([]byte, error) {
	return registry.RequiredField[[]byte](m, item, fieldNames[key], key)
}

func optional[T any](m registry.Map, key uint64) (fn.Option[T], error) {
	v, ok, err := registry.Field[T](m, item, fieldNames[key], key)
	if err != nil || !ok {
		return fn.None[T](), err
	}

	return fn.Some(v), nil
}

func nested[T any](m registry.Map, key uint64, rt registry.RegistryType,
	decode func(interface{}) (T, error)) (fn.Option[T], error) {

	v, ok := m[key]
	if !ok {
		return fn.None[T](), nil
	}

	decoded, err := registry.DecodeTagged(
		rt, item, fieldNames[key], v, decode,
	)
	if err != nil {
		return fn.None[T](), err
	}

	return fn.Some(decoded), nil
}
