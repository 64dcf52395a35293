// Package hdkey implements the crypto-hdkey registry item: a BIP-32 master or
// derived key together with the metadata a watch-only wallet needs to use it.
//
// An HDKey is immutable. It is built with NewMasterKey, NewExtendedKey or by
// decoding, and it can be encoded back to its canonical CBOR form or rendered
// as a BIP-32 extended key string.
package hdkey

import (
	"github.com/hblocks/urregistry/pkg/coininfo"
	"github.com/hblocks/urregistry/pkg/keypath"
	"github.com/hblocks/urregistry/pkg/registry"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Map keys of a crypto-hdkey.
const (
	keyIsMaster          uint64 = 1
	keyIsPrivate         uint64 = 2
	keyKeyData           uint64 = 3
	keyChainCode         uint64 = 4
	keyUseInfo           uint64 = 5
	keyOrigin            uint64 = 6
	keyChildren          uint64 = 7
	keyParentFingerprint uint64 = 8
	keyName              uint64 = 9
	keyNote              uint64 = 10
)

var fieldNames = map[uint64]string{
	keyIsMaster:          "is_master",
	keyIsPrivate:         "is_private_key",
	keyKeyData:           "key_data",
	keyChainCode:         "chain_code",
	keyUseInfo:           "use_info",
	keyOrigin:            "origin",
	keyChildren:          "children",
	keyParentFingerprint: "parent_fingerprint",
	keyName:              "name",
	keyNote:              "note",
}

// HDKey is a crypto-hdkey item.
type HDKey struct {
	isMaster          fn.Option[bool]
	isPrivateKey      fn.Option[bool]
	key               fn.Option[[]byte]
	chainCode         fn.Option[[]byte]
	useInfo           fn.Option[coininfo.CoinInfo]
	origin            fn.Option[keypath.KeyPath]
	children          fn.Option[keypath.KeyPath]
	parentFingerprint fn.Option[[4]byte]
	name              fn.Option[string]
	note              fn.Option[string]
}

// NewMasterKey returns a master key. key is the 0x00 prefixed private key.
// Lengths are not checked, see Validate.
func NewMasterKey(key, chainCode []byte) *HDKey {
	return &HDKey{
		isMaster:  fn.Some(true),
		key:       fn.Some(clone(key)),
		chainCode: fn.Some(clone(chainCode)),
	}
}

// ExtendedKeyParams holds the fields of a derived key. Only Key is
// mandatory.
type ExtendedKeyParams struct {
	IsPrivateKey      fn.Option[bool]
	Key               []byte
	ChainCode         fn.Option[[]byte]
	UseInfo           fn.Option[coininfo.CoinInfo]
	Origin            fn.Option[keypath.KeyPath]
	Children          fn.Option[keypath.KeyPath]
	ParentFingerprint fn.Option[[4]byte]
	Name              fn.Option[string]
	Note              fn.Option[string]
}

// NewExtendedKey returns a non-master key.
func NewExtendedKey(p ExtendedKeyParams) *HDKey {
	return &HDKey{
		isMaster:          fn.Some(false),
		isPrivateKey:      p.IsPrivateKey,
		key:               fn.Some(clone(p.Key)),
		chainCode:         cloneOpt(p.ChainCode),
		useInfo:           p.UseInfo,
		origin:            copyPath(p.Origin),
		children:          copyPath(p.Children),
		parentFingerprint: p.ParentFingerprint,
		name:              p.Name,
		note:              p.Note,
	}
}

// IsMaster reports whether this is a master key. A key decoded without an
// is_master entry is not a master key.
func (k *HDKey) IsMaster() bool {
	return k.isMaster.UnwrapOr(false)
}

// IsMasterOpt returns the stored is_master flag, None when it was never set.
func (k *HDKey) IsMasterOpt() fn.Option[bool] {
	return k.isMaster
}

// IsPrivateKey reports whether key holds private key material. Always false
// for master keys, whose flag is implied rather than stored.
func (k *HDKey) IsPrivateKey() bool {
	return k.isPrivateKey.UnwrapOr(false)
}

func (k *HDKey) IsPrivateKeyOpt() fn.Option[bool] {
	return k.isPrivateKey
}

func (k *HDKey) Key() fn.Option[[]byte] {
	return cloneOpt(k.key)
}

func (k *HDKey) ChainCode() fn.Option[[]byte] {
	return cloneOpt(k.chainCode)
}

func (k *HDKey) UseInfo() fn.Option[coininfo.CoinInfo] {
	return k.useInfo
}

func (k *HDKey) Origin() fn.Option[keypath.KeyPath] {
	return copyPath(k.origin)
}

func (k *HDKey) Children() fn.Option[keypath.KeyPath] {
	return copyPath(k.children)
}

func (k *HDKey) ParentFingerprint() fn.Option[[4]byte] {
	return k.parentFingerprint
}

// ParentFingerprintOrZero returns the parent fingerprint, all zero for a
// root key.
func (k *HDKey) ParentFingerprintOrZero() [4]byte {
	return k.parentFingerprint.UnwrapOr([4]byte{})
}

func (k *HDKey) Name() fn.Option[string] {
	return k.name
}

func (k *HDKey) Note() fn.Option[string] {
	return k.note
}

// RegistryType returns the crypto-hdkey registry type.
func (k *HDKey) RegistryType() registry.RegistryType {
	return registry.CryptoHDKey
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}

	return append([]byte{}, b...)
}

func cloneOpt(o fn.Option[[]byte]) fn.Option[[]byte] {
	return fn.MapOption(clone)(o)
}

func copyPath(o fn.Option[keypath.KeyPath]) fn.Option[keypath.KeyPath] {
	return fn.MapOption(func(p keypath.KeyPath) keypath.KeyPath {
		return keypath.New(p.Components(), p.SourceFingerprint(),
			p.Depth())
	})(o)
}
