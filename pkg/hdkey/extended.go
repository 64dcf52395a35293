package hdkey

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/hblocks/urregistry/pkg/coininfo"
	"github.com/hblocks/urregistry/pkg/keypath"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pkg/errors"
)

const (
	keyDataLen   = 33
	chainCodeLen = 32
)

var (
	// ErrInvalidKeyData is returned by Validate for malformed key material.
	ErrInvalidKeyData = errors.New("invalid key data")

	// ErrInvalidChainCode is returned by Validate for a chain code that is
	// not 32 bytes long.
	ErrInvalidChainCode = errors.New("invalid chain code")
)

// Validate checks the sizes of the key material. Encoding and BIP32Key do
// not call it; it exists for callers that want to refuse non-conforming
// producers.
func (k *HDKey) Validate() error {
	key, err := k.key.UnwrapOrErr(
		errors.Wrap(ErrInvalidKeyData, "missing"),
	)
	if err != nil {
		return err
	}
	if len(key) != keyDataLen {
		return errors.Wrapf(ErrInvalidKeyData, "length %d, want %d",
			len(key), keyDataLen)
	}

	private := k.IsMaster() || k.IsPrivateKey()
	switch {
	case private && key[0] != 0x00:
		return errors.Wrapf(ErrInvalidKeyData, "private key prefix "+
			"%#02x, want 0x00", key[0])

	case !private && key[0] != 0x02 && key[0] != 0x03:
		return errors.Wrapf(ErrInvalidKeyData, "public key prefix "+
			"%#02x, want 0x02 or 0x03", key[0])
	}

	if k.IsMaster() && k.chainCode.IsNone() {
		return errors.Wrap(ErrInvalidChainCode, "missing for master key")
	}
	var chainCodeErr error
	k.chainCode.WhenSome(func(cc []byte) {
		if len(cc) != chainCodeLen {
			chainCodeErr = errors.Wrapf(ErrInvalidChainCode,
				"length %d, want %d", len(cc), chainCodeLen)
		}
	})

	return chainCodeErr
}

// PublicKey returns the public key, computing it for private keys.
func (k *HDKey) PublicKey() (*btcec.PublicKey, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	key := k.key.UnsafeFromSome()

	if k.IsMaster() || k.IsPrivateKey() {
		_, pub := btcec.PrivKeyFromBytes(key[1:])
		return pub, nil
	}

	return btcec.ParsePubKey(key)
}

// Fingerprint returns the first four bytes of HASH160 of the compressed
// public key, as used for the parent fingerprint of the key's children.
func (k *HDKey) Fingerprint() ([4]byte, error) {
	var fp [4]byte

	pub, err := k.PublicKey()
	if err != nil {
		return fp, err
	}
	copy(fp[:], btcutil.Hash160(pub.SerializeCompressed()))

	return fp, nil
}

// ExtendedKey converts the key into a btcutil extended key using the HD
// version bytes of params. Unlike BIP32Key it checks the key material.
func (k *HDKey) ExtendedKey(params *chaincfg.Params) (*hdkeychain.ExtendedKey,
	error) {

	if err := k.Validate(); err != nil {
		return nil, err
	}

	var (
		key       = k.key.UnsafeFromSome()
		private   = k.IsMaster() || k.IsPrivateKey()
		version   = params.HDPublicKeyID
		depth     uint8
		childNum  uint32
		chainCode = k.chainCode.UnwrapOr(make([]byte, chainCodeLen))
		parentFP  = k.ParentFingerprintOrZero()
	)
	if private {
		version = params.HDPrivateKeyID
		key = key[1:]
	}

	if !k.IsMaster() {
		k.origin.WhenSome(func(p keypath.KeyPath) {
			depth = uint8(p.Len())
			p.Last().WhenSome(func(c keypath.PathComponent) {
				childNum = c.CanonicalIndex().UnwrapOr(0)
			})
		})
	}

	return hdkeychain.NewExtendedKey(
		version[:], key, chainCode, parentFP[:], depth, childNum,
		private,
	), nil
}

// NetworkParams returns the bitcoin parameters selected by use_info,
// mainnet when it is absent.
func (k *HDKey) NetworkParams() (*chaincfg.Params, error) {
	return k.useInfo.UnwrapOr(coininfo.CoinInfo{}).ChainParams()
}

// NewFromExtendedKey builds an extended crypto-hdkey from a btcutil key.
// origin, when set, must end with the key's own child index; the key's depth
// is only carried through origin.
func NewFromExtendedKey(ek *hdkeychain.ExtendedKey, useInfo fn.Option[coininfo.CoinInfo],
	origin fn.Option[keypath.KeyPath],
	children fn.Option[keypath.KeyPath]) (*HDKey, error) {

	var keyData []byte
	if ek.IsPrivate() {
		priv, err := ek.ECPrivKey()
		if err != nil {
			return nil, err
		}
		keyData = append([]byte{0x00}, priv.Serialize()...)
	} else {
		pub, err := ek.ECPubKey()
		if err != nil {
			return nil, err
		}
		keyData = pub.SerializeCompressed()
	}

	var mismatch error
	origin.WhenSome(func(p keypath.KeyPath) {
		if int(ek.Depth()) != p.Len() {
			mismatch = errors.Errorf("origin has %d components, key "+
				"depth is %d", p.Len(), ek.Depth())
			return
		}
		p.Last().WhenSome(func(c keypath.PathComponent) {
			idx := c.CanonicalIndex()
			if idx.IsSome() && idx.UnsafeFromSome() != ek.ChildIndex() {
				mismatch = errors.Errorf("origin ends in %d, key "+
					"child index is %d", idx.UnsafeFromSome(),
					ek.ChildIndex())
			}
		})
	})
	if mismatch != nil {
		return nil, mismatch
	}

	var parentFP [4]byte
	binary.BigEndian.PutUint32(parentFP[:], ek.ParentFingerprint())

	return NewExtendedKey(ExtendedKeyParams{
		IsPrivateKey:      fn.Some(ek.IsPrivate()),
		Key:               keyData,
		ChainCode:         fn.Some(ek.ChainCode()),
		UseInfo:           useInfo,
		Origin:            origin,
		Children:          children,
		ParentFingerprint: fn.Some(parentFP),
	}), nil
}

// Equal reports whether both keys carry the same fields. An absent is_master
// flag equals false, since the extended encoding never carries it.
func (k *HDKey) Equal(o *HDKey) bool {
	sameBytes := func(a, b fn.Option[[]byte]) bool {
		if a.IsSome() != b.IsSome() {
			return false
		}
		return bytes.Equal(a.UnwrapOr(nil), b.UnwrapOr(nil))
	}
	samePath := func(a, b fn.Option[keypath.KeyPath]) bool {
		if a.IsSome() != b.IsSome() {
			return false
		}
		return a.UnwrapOr(keypath.KeyPath{}).Equal(
			b.UnwrapOr(keypath.KeyPath{}),
		)
	}

	return k.IsMaster() == o.IsMaster() &&
		k.isPrivateKey == o.isPrivateKey &&
		sameBytes(k.key, o.key) &&
		sameBytes(k.chainCode, o.chainCode) &&
		k.useInfo == o.useInfo &&
		samePath(k.origin, o.origin) &&
		samePath(k.children, o.children) &&
		k.parentFingerprint == o.parentFingerprint &&
		k.name == o.name &&
		k.note == o.note
}
