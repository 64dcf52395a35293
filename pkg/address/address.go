// Package address renders receive addresses for keys received as
// crypto-hdkey items.
package address

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hblocks/urregistry/pkg/coininfo"
	"github.com/hblocks/urregistry/pkg/hdkey"
	"github.com/pkg/errors"
)

// ErrUnsupportedCoin is returned for coin types without an address format.
var ErrUnsupportedCoin = errors.New("no address format for coin")

// Address returns the address of the key itself: a P2WPKH address for
// bitcoin, an EIP-55 address for ethereum. The coin and network come from
// the key's use_info.
func Address(k *hdkey.HDKey) (string, error) {
	pub, err := k.PublicKey()
	if err != nil {
		return "", err
	}

	return encode(coinInfo(k), pub)
}

// Derive derives the non-hardened child at path below k and returns its
// address. k must carry a chain code.
func Derive(k *hdkey.HDKey, path ...uint32) (string, error) {
	if k.ChainCode().IsNone() {
		return "", errors.New("key has no chain code")
	}

	ek, err := k.ExtendedKey(&chaincfg.MainNetParams)
	if err != nil {
		return "", err
	}
	for _, i := range path {
		ek, err = ek.Derive(i)
		if err != nil {
			return "", errors.Wrapf(err, "derive %d", i)
		}
	}

	pub, err := ek.ECPubKey()
	if err != nil {
		return "", err
	}

	return encode(coinInfo(k), pub)
}

func coinInfo(k *hdkey.HDKey) coininfo.CoinInfo {
	return k.UseInfo().UnwrapOr(coininfo.CoinInfo{})
}

func encode(info coininfo.CoinInfo, pub *btcec.PublicKey) (string, error) {
	switch info.CoinType() {
	case coininfo.Bitcoin:
		params, err := info.ChainParams()
		if err != nil {
			return "", err
		}
		addr, err := btcutil.NewAddressWitnessPubKeyHash(
			btcutil.Hash160(pub.SerializeCompressed()), params,
		)
		if err != nil {
			return "", err
		}
		return addr.EncodeAddress(), nil

	case coininfo.Ethereum:
		ecdsaPub, err := crypto.DecompressPubkey(pub.SerializeCompressed())
		if err != nil {
			return "", err
		}
		return crypto.PubkeyToAddress(*ecdsaPub).Hex(), nil

	default:
		return "", errors.Wrapf(ErrUnsupportedCoin, "%v", info.CoinType())
	}
}
