package hdkey

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/hblocks/urregistry/pkg/keypath"
)

// Mainnet BIP-32 version bytes. Other networks are reachable through
// ExtendedKey.
var (
	versionPrivate = [4]byte{0x04, 0x88, 0xad, 0xe4}
	versionPublic  = [4]byte{0x04, 0x88, 0xb2, 0x1e}
)

// serializedKeyLen is the size of a serialized extended key without
// checksum: version(4) || depth(1) || parent fingerprint(4) ||
// child index(4) || chain code(32) || key(33).
const serializedKeyLen = 4 + 1 + 4 + 4 + 32 + 33

// BIP32Key renders the key as a base58 checked extended key string (xprv or
// xpub). Master keys are taken to be private. The mainnet version bytes are
// used whatever the key's use_info says.
//
// Neither the key nor the chain code length is checked: a missing value is
// replaced by zero bytes, and a value of the wrong size shifts the fields
// after it.
func (k *HDKey) BIP32Key() string {
	version := versionPublic
	depth := uint8(0)
	childIndex := uint32(0)

	if k.IsMaster() || k.IsPrivateKey() {
		version = versionPrivate
	}

	if !k.IsMaster() {
		k.origin.WhenSome(func(p keypath.KeyPath) {
			depth = uint8(p.Len())
			p.Last().WhenSome(func(c keypath.PathComponent) {
				childIndex = c.CanonicalIndex().UnwrapOr(0)
			})
		})
	}

	parentFP := k.ParentFingerprintOrZero()
	chainCode := k.chainCode.UnwrapOr(make([]byte, 32))
	key := k.key.UnwrapOr(make([]byte, 33))

	payload := make([]byte, 0, serializedKeyLen+4)
	payload = append(payload, version[:]...)
	payload = append(payload, depth)
	payload = append(payload, parentFP[:]...)
	payload = binary.BigEndian.AppendUint32(payload, childIndex)
	payload = append(payload, chainCode...)
	payload = append(payload, key...)

	checksum := chainhash.DoubleHashB(payload)[:4]
	payload = append(payload, checksum...)

	return base58.Encode(payload)
}
