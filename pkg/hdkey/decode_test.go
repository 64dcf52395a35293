package hdkey

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/hblocks/urregistry/pkg/registry"
	"github.com/stretchr/testify/require"
)

func TestDecodeFailures(t *testing.T) {
	key := mustHex(t, accountKeyHex)
	chainCode := mustHex(t, accountChainHex)
	keyPath := cbor.Tag{
		Number:  registry.CryptoKeyPath.Tag,
		Content: map[uint64]interface{}{1: []interface{}{uint64(44), true}},
	}

	tests := []struct {
		name  string
		m     registry.Map
		kind  error
		field string
	}{
		{
			name:  "master without key",
			m:     registry.Map{keyIsMaster: true, keyChainCode: chainCode},
			kind:  registry.ErrMissingField,
			field: "key_data",
		},
		{
			name:  "master without chain code",
			m:     registry.Map{keyIsMaster: true, keyKeyData: key},
			kind:  registry.ErrMissingField,
			field: "chain_code",
		},
		{
			name: "master key wrong type",
			m: registry.Map{
				keyIsMaster: true, keyKeyData: "key",
				keyChainCode: chainCode,
			},
			kind:  registry.ErrFieldType,
			field: "key_data",
		},
		{
			name: "master chain code wrong type",
			m: registry.Map{
				keyIsMaster: true, keyKeyData: key,
				keyChainCode: uint64(1),
			},
			kind:  registry.ErrFieldType,
			field: "chain_code",
		},
		{
			name:  "is_master wrong type",
			m:     registry.Map{keyIsMaster: uint64(1), keyKeyData: key},
			kind:  registry.ErrFieldType,
			field: "is_master",
		},
		{
			name:  "extended without key",
			m:     registry.Map{keyChainCode: chainCode},
			kind:  registry.ErrMissingField,
			field: "key_data",
		},
		{
			name:  "explicit non-master without key",
			m:     registry.Map{keyIsMaster: false, keyName: "x"},
			kind:  registry.ErrMissingField,
			field: "key_data",
		},
		{
			name:  "is_private_key wrong type",
			m:     registry.Map{keyKeyData: key, keyIsPrivate: []byte{1}},
			kind:  registry.ErrFieldType,
			field: "is_private_key",
		},
		{
			name:  "chain code wrong type",
			m:     registry.Map{keyKeyData: key, keyChainCode: "cc"},
			kind:  registry.ErrFieldType,
			field: "chain_code",
		},
		{
			name: "parent fingerprint wrong type",
			m: registry.Map{
				keyKeyData: key, keyParentFingerprint: []byte{1, 2, 3, 4},
			},
			kind:  registry.ErrFieldType,
			field: "parent_fingerprint",
		},
		{
			name: "parent fingerprint overflow",
			m: registry.Map{
				keyKeyData: key, keyParentFingerprint: uint64(1) << 32,
			},
			kind:  registry.ErrInvalidValue,
			field: "parent_fingerprint",
		},
		{
			name:  "name wrong type",
			m:     registry.Map{keyKeyData: key, keyName: []byte("n")},
			kind:  registry.ErrFieldType,
			field: "name",
		},
		{
			name:  "note wrong type",
			m:     registry.Map{keyKeyData: key, keyNote: true},
			kind:  registry.ErrFieldType,
			field: "note",
		},
		{
			name:  "origin not tagged",
			m:     registry.Map{keyKeyData: key, keyOrigin: keyPath.Content},
			kind:  registry.ErrFieldType,
			field: "origin",
		},
		{
			name: "origin with coin info tag",
			m: registry.Map{keyKeyData: key, keyOrigin: cbor.Tag{
				Number:  registry.CryptoCoinInfo.Tag,
				Content: keyPath.Content,
			}},
			kind:  registry.ErrUnexpectedTag,
			field: "origin",
		},
		{
			name: "use_info with key path tag",
			m: registry.Map{
				keyKeyData: key, keyUseInfo: keyPath,
			},
			kind:  registry.ErrUnexpectedTag,
			field: "use_info",
		},
		{
			name: "children with broken key path",
			m: registry.Map{keyKeyData: key, keyChildren: cbor.Tag{
				Number:  registry.CryptoKeyPath.Tag,
				Content: map[uint64]interface{}{1: "0/*"},
			}},
			kind:  registry.ErrNestedItem,
			field: "children",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			k, err := FromCBOR(test.m)
			require.Nil(t, k)
			require.ErrorIs(t, err, test.kind)

			var fieldErr *registry.FieldError
			require.True(t, errors.As(err, &fieldErr))
			require.Equal(t, "crypto-hdkey", fieldErr.Item)
			require.Equal(t, test.field, fieldErr.Field)
			require.Contains(t, err.Error(), test.field)
		})
	}
}

func TestDecodeNestedCauseKept(t *testing.T) {
	m := registry.Map{
		keyKeyData: mustHex(t, accountKeyHex),
		keyOrigin: cbor.Tag{
			Number: registry.CryptoKeyPath.Tag,
			Content: map[uint64]interface{}{
				1: []interface{}{uint64(44), "yes"},
			},
		},
	}

	_, err := FromCBOR(m)
	require.ErrorIs(t, err, registry.ErrNestedItem)
	require.ErrorIs(t, err, registry.ErrFieldType)

	// The outer error names the hdkey field, the cause names the key path
	// field.
	var outer *registry.FieldError
	require.True(t, errors.As(err, &outer))
	require.Equal(t, "origin", outer.Field)

	var inner *registry.FieldError
	require.True(t, errors.As(outer.Err, &inner))
	require.Equal(t, "crypto-keypath", inner.Item)
	require.Equal(t, "components", inner.Field)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "truncated", data: mustHex(t, masterCBORHex)[:20]},
		{name: "array", data: []byte{0x82, 0x01, 0x02}},
		{name: "text", data: []byte{0x61, 0x61}},
		{name: "trailing bytes", data: append(
			mustHex(t, masterCBORHex), 0x00,
		)},
		{name: "duplicate key", data: []byte{
			0xa2, 0x03, 0x41, 0x01, 0x03, 0x41, 0x02,
		}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			k, err := Decode(test.data)
			require.Nil(t, k)
			require.ErrorIs(t, err, registry.ErrMalformed)
		})
	}
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	m := registry.Map{
		keyKeyData: mustHex(t, accountKeyHex),
		11:         "future field",
	}

	k, err := FromCBOR(m)
	require.NoError(t, err)
	require.Equal(t, mustHex(t, accountKeyHex), k.Key().UnwrapOrFail(t))
}

func TestDecodeExplicitNonMaster(t *testing.T) {
	m := registry.Map{
		keyIsMaster:  false,
		keyKeyData:   mustHex(t, accountKeyHex),
		keyIsPrivate: false,
	}

	k, err := FromCBOR(m)
	require.NoError(t, err)
	require.False(t, k.IsMasterOpt().UnwrapOrFail(t))
	require.False(t, k.IsPrivateKeyOpt().UnwrapOrFail(t))
}

func TestUnmarshalCBOR(t *testing.T) {
	type envelope struct {
		Key *HDKey `cbor:"1,keyasint"`
	}

	k := accountKey(t)
	b, err := registry.Marshal(envelope{Key: k})
	require.NoError(t, err)

	var out envelope
	require.NoError(t, cbor.Unmarshal(b, &out))
	require.True(t, k.Equal(out.Key))

	var bad HDKey
	require.Error(t, bad.UnmarshalCBOR([]byte{0xa0}))
	require.True(t, bad.Key().IsNone())
}
