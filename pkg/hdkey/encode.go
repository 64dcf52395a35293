package hdkey

import (
	"encoding/binary"

	"github.com/hblocks/urregistry/pkg/coininfo"
	"github.com/hblocks/urregistry/pkg/keypath"
	"github.com/hblocks/urregistry/pkg/registry"
)

// ToCBOR returns the associative value of the key. A master key only ever
// yields is_master, key_data and chain_code; every other field is dropped.
func (k *HDKey) ToCBOR() registry.Map {
	m := make(registry.Map, len(fieldNames))

	if k.IsMaster() {
		m[keyIsMaster] = true
		k.key.WhenSome(func(b []byte) {
			m[keyKeyData] = b
		})
		k.chainCode.WhenSome(func(b []byte) {
			m[keyChainCode] = b
		})

		return m
	}

	k.isPrivateKey.WhenSome(func(b bool) {
		m[keyIsPrivate] = b
	})
	k.key.WhenSome(func(b []byte) {
		m[keyKeyData] = b
	})
	k.chainCode.WhenSome(func(b []byte) {
		m[keyChainCode] = b
	})
	k.useInfo.WhenSome(func(c coininfo.CoinInfo) {
		m[keyUseInfo] = registry.Tagged(c)
	})
	k.origin.WhenSome(func(p keypath.KeyPath) {
		m[keyOrigin] = registry.Tagged(p)
	})
	k.children.WhenSome(func(p keypath.KeyPath) {
		m[keyChildren] = registry.Tagged(p)
	})
	k.parentFingerprint.WhenSome(func(fp [4]byte) {
		m[keyParentFingerprint] = uint64(binary.BigEndian.Uint32(fp[:]))
	})
	k.name.WhenSome(func(s string) {
		m[keyName] = s
	})
	k.note.WhenSome(func(s string) {
		m[keyNote] = s
	})

	return m
}

// Encode returns the canonical CBOR encoding of the key, map keys in
// ascending order.
func (k *HDKey) Encode() ([]byte, error) {
	return registry.Marshal(k.ToCBOR())
}

// MarshalCBOR implements cbor.Marshaler so an HDKey can be embedded in other
// CBOR structures.
func (k *HDKey) MarshalCBOR() ([]byte, error) {
	return k.Encode()
}
