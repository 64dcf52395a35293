package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/hblocks/urregistry/pkg/address"
	"github.com/hblocks/urregistry/pkg/coininfo"
	"github.com/hblocks/urregistry/pkg/hdkey"
	"github.com/hblocks/urregistry/pkg/keypath"
	"github.com/hblocks/urregistry/pkg/wallet"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func decode(w io.Writer, conf *decodeConfig) error {
	data, err := hex.DecodeString(strings.TrimSpace(conf.Args.Hex))
	if err != nil {
		return errors.Wrap(err, "Error decoding hex")
	}

	k, err := hdkey.Decode(data)
	if err != nil {
		return err
	}

	if conf.Strict {
		if err := k.Validate(); err != nil {
			return err
		}
	}

	printKey(w, k)

	return nil
}

func encode(w io.Writer, conf *encodeConfig) error {
	key, err := hex.DecodeString(conf.Key)
	if err != nil {
		return errors.Wrap(err, "Error decoding key")
	}

	chainCode := fn.None[[]byte]()
	if conf.ChainCode != "" {
		cc, err := hex.DecodeString(conf.ChainCode)
		if err != nil {
			return errors.Wrap(err, "Error decoding chain code")
		}
		chainCode = fn.Some(cc)
	}

	var k *hdkey.HDKey
	if conf.Master {
		cc, err := chainCode.UnwrapOrErr(
			errors.New("--chain-code is required for a master key"),
		)
		if err != nil {
			return err
		}
		k = hdkey.NewMasterKey(key, cc)
	} else {
		params := hdkey.ExtendedKeyParams{
			IsPrivateKey: fn.OptionFromPtr(conf.Private),
			Key:          key,
			ChainCode:    chainCode,
			Name:         optString(conf.Name),
			Note:         optString(conf.Note),
		}

		if conf.Coin != nil || conf.TestNet {
			network := coininfo.MainNet
			if conf.TestNet {
				network = coininfo.TestNet
			}
			params.UseInfo = fn.Some(coininfo.New(
				fn.MapOption(func(c uint32) coininfo.CoinType {
					return coininfo.CoinType(c)
				})(fn.OptionFromPtr(conf.Coin)),
				fn.Some(network),
			))
		}

		if params.Origin, err = optPath(conf.Origin); err != nil {
			return err
		}
		if params.Children, err = optPath(conf.Children); err != nil {
			return err
		}

		if conf.ParentFingerprint != "" {
			fp, err := hex.DecodeString(conf.ParentFingerprint)
			if err != nil || len(fp) != 4 {
				return errors.Errorf("invalid parent fingerprint %q",
					conf.ParentFingerprint)
			}
			params.ParentFingerprint = fn.Some([4]byte(fp))
		}

		k = hdkey.NewExtendedKey(params)
	}

	b, err := k.Encode()
	if err != nil {
		return err
	}

	logrus.WithField("bytes", len(b)).Debug("Encoded crypto-hdkey")
	fmt.Fprintln(w, hex.EncodeToString(b))

	return nil
}

func export(w io.Writer, conf *exportConfig) error {
	var (
		wlt wallet.Wallet
		err error
	)
	if conf.Seed == "" {
		logrus.Warn("No seed given, exporting from a random seed")
		wlt, err = wallet.Generate(conf.params())
	} else {
		var seed []byte
		seed, err = hex.DecodeString(conf.Seed)
		if err != nil {
			return errors.Wrap(err, "Error decoding seed")
		}
		wlt, err = wallet.New(conf.params(), seed)
	}
	if err != nil {
		return err
	}

	children, err := optPath(conf.Children)
	if err != nil {
		return err
	}

	var k *hdkey.HDKey
	switch {
	case conf.Account != nil:
		k, err = wlt.ExportAccount(
			coininfo.CoinType(conf.Coin), *conf.Account,
		)

	case conf.Path != "":
		network := coininfo.MainNet
		if conf.TestNet {
			network = coininfo.TestNet
		}
		useInfo := coininfo.New(
			fn.Some(coininfo.CoinType(conf.Coin)), fn.Some(network),
		)
		k, err = wlt.ExportPath(conf.Path, fn.Some(useInfo), children)

	default:
		k, err = wlt.MasterKey()
	}
	if err != nil {
		return err
	}

	b, err := k.Encode()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "cbor: %s\n", hex.EncodeToString(b))
	printKey(w, k)

	return nil
}

func printKey(w io.Writer, k *hdkey.HDKey) {
	fmt.Fprintf(w, "master: %t\n", k.IsMaster())
	fmt.Fprintf(w, "private: %t\n", k.IsMaster() || k.IsPrivateKey())
	k.Key().WhenSome(func(b []byte) {
		fmt.Fprintf(w, "key: %x\n", b)
	})
	k.ChainCode().WhenSome(func(b []byte) {
		fmt.Fprintf(w, "chain code: %x\n", b)
	})
	k.UseInfo().WhenSome(func(c coininfo.CoinInfo) {
		fmt.Fprintf(w, "use info: %v %v\n", c.CoinType(), c.Network())
	})
	k.Origin().WhenSome(func(p keypath.KeyPath) {
		fmt.Fprintf(w, "origin: m/%s\n", p.Path())
		p.SourceFingerprint().WhenSome(func(fp [4]byte) {
			fmt.Fprintf(w, "source fingerprint: %x\n", fp)
		})
	})
	k.Children().WhenSome(func(p keypath.KeyPath) {
		fmt.Fprintf(w, "children: %s\n", p.Path())
	})
	k.ParentFingerprint().WhenSome(func(fp [4]byte) {
		fmt.Fprintf(w, "parent fingerprint: %x\n", fp)
	})
	k.Name().WhenSome(func(s string) {
		fmt.Fprintf(w, "name: %s\n", s)
	})
	k.Note().WhenSome(func(s string) {
		fmt.Fprintf(w, "note: %s\n", s)
	})

	fmt.Fprintf(w, "bip32: %s\n", k.BIP32Key())

	if k.IsMaster() || k.IsPrivateKey() {
		return
	}
	addr, err := address.Address(k)
	if err != nil {
		logrus.WithError(err).Debug("No address for key")
		return
	}
	fmt.Fprintf(w, "address: %s\n", addr)
}

func optString(s string) fn.Option[string] {
	if s == "" {
		return fn.None[string]()
	}

	return fn.Some(s)
}

func optPath(path string) (fn.Option[keypath.KeyPath], error) {
	if path == "" {
		return fn.None[keypath.KeyPath](), nil
	}

	components, err := keypath.ParsePath(path)
	if err != nil {
		return fn.None[keypath.KeyPath](), err
	}

	return fn.Some(keypath.New(
		components, fn.None[[4]byte](), fn.None[uint8](),
	)), nil
}
