// Package coininfo implements the crypto-coininfo registry item, which tells
// a receiver which coin and network a key belongs to.
package coininfo

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/hblocks/urregistry/pkg/registry"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pkg/errors"
)

const (
	keyCoinType uint64 = 1
	keyNetwork  uint64 = 2
)

// CoinType is a SLIP-44 coin type.
type CoinType uint32

const (
	Bitcoin  CoinType = 0
	Ethereum CoinType = 60
)

func (c CoinType) String() string {
	switch c {
	case Bitcoin:
		return "bitcoin"
	case Ethereum:
		return "ethereum"
	default:
		return fmt.Sprintf("coin(%d)", uint32(c))
	}
}

// Network selects between the main and test network of a coin.
type Network uint32

const (
	MainNet Network = 0
	TestNet Network = 1
)

func (n Network) String() string {
	switch n {
	case MainNet:
		return "mainnet"
	case TestNet:
		return "testnet"
	default:
		return fmt.Sprintf("network(%d)", uint32(n))
	}
}

// ErrUnsupportedCoin is returned when no chain parameters exist for a coin.
var ErrUnsupportedCoin = errors.New("unsupported coin")

// CoinInfo is a crypto-coininfo item. Unset fields default to bitcoin
// mainnet.
type CoinInfo struct {
	coinType fn.Option[CoinType]
	network  fn.Option[Network]
}

// New returns a CoinInfo. Either field may be None.
func New(coinType fn.Option[CoinType], network fn.Option[Network]) CoinInfo {
	return CoinInfo{coinType: coinType, network: network}
}

// CoinType returns the coin type, bitcoin when unset.
func (c CoinInfo) CoinType() CoinType {
	return c.coinType.UnwrapOr(Bitcoin)
}

// Network returns the network, mainnet when unset.
func (c CoinInfo) Network() Network {
	return c.network.UnwrapOr(MainNet)
}

// ChainParams returns the btcd parameters for a bitcoin CoinInfo.
func (c CoinInfo) ChainParams() (*chaincfg.Params, error) {
	if c.CoinType() != Bitcoin {
		return nil, errors.Wrapf(ErrUnsupportedCoin, "%v", c.CoinType())
	}

	switch c.Network() {
	case MainNet:
		return &chaincfg.MainNetParams, nil
	case TestNet:
		return &chaincfg.TestNet3Params, nil
	default:
		return nil, errors.Errorf("unknown network %v", c.Network())
	}
}

func (c CoinInfo) RegistryType() registry.RegistryType {
	return registry.CryptoCoinInfo
}

func (c CoinInfo) ToCBOR() registry.Map {
	m := make(registry.Map, 2)
	c.coinType.WhenSome(func(t CoinType) {
		m[keyCoinType] = uint64(t)
	})
	c.network.WhenSome(func(n Network) {
		m[keyNetwork] = uint64(n)
	})

	return m
}

// FromCBOR decodes a crypto-coininfo from its associative value.
func FromCBOR(v interface{}) (CoinInfo, error) {
	const item = "crypto-coininfo"

	m, err := registry.AsMap(item, v)
	if err != nil {
		return CoinInfo{}, err
	}

	var info CoinInfo

	coinType, ok, err := registry.Uint32Field(m, item, "type", keyCoinType)
	if err != nil {
		return CoinInfo{}, err
	}
	if ok {
		info.coinType = fn.Some(CoinType(coinType))
	}

	network, ok, err := registry.Uint32Field(m, item, "network", keyNetwork)
	if err != nil {
		return CoinInfo{}, err
	}
	if ok {
		info.network = fn.Some(Network(network))
	}

	return info, nil
}

// Decode parses the canonical encoding of a crypto-coininfo.
func Decode(data []byte) (CoinInfo, error) {
	m, err := registry.DecodeMap("crypto-coininfo", data)
	if err != nil {
		return CoinInfo{}, err
	}

	return FromCBOR(m)
}
