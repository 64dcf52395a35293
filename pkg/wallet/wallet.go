// Package wallet holds a seed backed BIP-32 master key and exports it, or
// accounts derived from it, as crypto-hdkey items for a watch-only
// companion.
package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/hblocks/urregistry/pkg/coininfo"
	"github.com/hblocks/urregistry/pkg/hdkey"
	"github.com/hblocks/urregistry/pkg/keypath"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("pkg", "wallet")

// Wallet exports keys of a single seed.
type Wallet interface {
	// MasterKey returns the master private key.
	MasterKey() (*hdkey.HDKey, error)

	// MasterFingerprint returns the fingerprint of the master public key.
	MasterFingerprint() [4]byte

	// ExportAccount returns the BIP-44 account public key
	// m/44'/coinType'/account'.
	ExportAccount(coinType coininfo.CoinType, account uint32) (*hdkey.HDKey,
		error)

	// ExportPath returns the public key at path, e.g. m/84'/0'/0'.
	ExportPath(path string, useInfo fn.Option[coininfo.CoinInfo],
		children fn.Option[keypath.KeyPath]) (*hdkey.HDKey, error)
}

type hdWallet struct {
	params    *chaincfg.Params
	masterKey *hdkeychain.ExtendedKey
	masterFP  [4]byte
}

// New returns a wallet for seed.
func New(params *chaincfg.Params, seed []byte) (Wallet, error) {
	masterKey, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, err
	}

	pub, err := masterKey.ECPubKey()
	if err != nil {
		return nil, err
	}

	w := &hdWallet{
		params:    params,
		masterKey: masterKey,
	}
	copy(w.masterFP[:], btcutil.Hash160(pub.SerializeCompressed()))

	return w, nil
}

// Generate returns a wallet for a fresh random seed.
func Generate(params *chaincfg.Params) (Wallet, error) {
	seed, err := hdkeychain.GenerateSeed(hdkeychain.RecommendedSeedLen)
	if err != nil {
		return nil, err
	}

	return New(params, seed)
}

func (w *hdWallet) MasterKey() (*hdkey.HDKey, error) {
	priv, err := w.masterKey.ECPrivKey()
	if err != nil {
		return nil, err
	}

	return hdkey.NewMasterKey(
		append([]byte{0x00}, priv.Serialize()...),
		w.masterKey.ChainCode(),
	), nil
}

func (w *hdWallet) MasterFingerprint() [4]byte {
	return w.masterFP
}

func (w *hdWallet) ExportAccount(coinType coininfo.CoinType,
	account uint32) (*hdkey.HDKey, error) {

	components, err := deriveCustomBip44Path(uint32(coinType), account)
	if err != nil {
		return nil, err
	}

	useInfo := coininfo.New(fn.Some(coinType), fn.Some(w.network()))

	return w.export(components, fn.Some(useInfo), fn.None[keypath.KeyPath]())
}

func (w *hdWallet) ExportPath(path string,
	useInfo fn.Option[coininfo.CoinInfo],
	children fn.Option[keypath.KeyPath]) (*hdkey.HDKey, error) {

	components, err := keypath.ParsePath(path)
	if err != nil {
		return nil, err
	}

	return w.export(components, useInfo, children)
}

func (w *hdWallet) export(components []keypath.PathComponent,
	useInfo fn.Option[coininfo.CoinInfo],
	children fn.Option[keypath.KeyPath]) (*hdkey.HDKey, error) {

	if len(components) > 0xff {
		return nil, errors.Errorf("path too deep: %d", len(components))
	}

	key := w.masterKey
	for _, c := range components {
		index, err := c.CanonicalIndex().UnwrapOrErr(
			errors.New("cannot export a wildcard path"),
		)
		if err != nil {
			return nil, err
		}

		key, err = key.Derive(index)
		if err != nil {
			return nil, errors.Wrapf(err, "derive %v", c)
		}
	}

	pub, err := key.Neuter()
	if err != nil {
		return nil, err
	}

	origin := keypath.New(
		components, fn.Some(w.masterFP), fn.Some(uint8(len(components))),
	)

	k, err := hdkey.NewFromExtendedKey(pub, useInfo, fn.Some(origin), children)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"path":        "m/" + origin.Path(),
		"fingerprint": w.masterFP,
	}).Debug("Exported key")

	return k, nil
}

func (w *hdWallet) network() coininfo.Network {
	if w.params.Net == chaincfg.MainNetParams.Net {
		return coininfo.MainNet
	}

	return coininfo.TestNet
}

func deriveCustomBip44Path(coinType, account uint32) ([]keypath.PathComponent,
	error) {

	indices := []uint32{
		44, // BIP44 proposal
		coinType,
		account,
	}

	components := make([]keypath.PathComponent, len(indices))
	for i, index := range indices {
		c, err := keypath.NewPathComponent(fn.Some(index), true)
		if err != nil {
			return nil, err
		}
		components[i] = c
	}

	return components, nil
}
