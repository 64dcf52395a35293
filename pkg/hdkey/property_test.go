package hdkey

import (
	"bytes"
	"testing"

	"github.com/hblocks/urregistry/pkg/coininfo"
	"github.com/hblocks/urregistry/pkg/keypath"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawOpt[A any](t *rapid.T, label string, gen *rapid.Generator[A]) fn.Option[A] {
	if !rapid.Bool().Draw(t, label+"_set") {
		return fn.None[A]()
	}

	return fn.Some(gen.Draw(t, label))
}

func genBytes(n int) *rapid.Generator[[]byte] {
	return rapid.SliceOfN(rapid.Byte(), n, n)
}

func genKeyPath() *rapid.Generator[keypath.KeyPath] {
	return rapid.Custom(func(t *rapid.T) keypath.KeyPath {
		n := rapid.IntRange(0, 8).Draw(t, "len")
		components := make([]keypath.PathComponent, n)
		for i := range components {
			index := drawOpt(
				t, "index", rapid.Uint32Range(0, keypath.HardenedBit-1),
			)
			c, err := keypath.NewPathComponent(
				index, rapid.Bool().Draw(t, "hardened"),
			)
			require.NoError(t, err)
			components[i] = c
		}

		return keypath.New(
			components,
			drawOpt(t, "source_fp", rapid.Custom(func(t *rapid.T) [4]byte {
				var fp [4]byte
				copy(fp[:], genBytes(4).Draw(t, "fp"))
				return fp
			})),
			drawOpt(t, "depth", rapid.Uint8()),
		)
	})
}

func genCoinInfo() *rapid.Generator[coininfo.CoinInfo] {
	return rapid.Custom(func(t *rapid.T) coininfo.CoinInfo {
		return coininfo.New(
			drawOpt(t, "coin", rapid.Custom(func(t *rapid.T) coininfo.CoinType {
				return coininfo.CoinType(rapid.Uint32().Draw(t, "type"))
			})),
			drawOpt(t, "network", rapid.SampledFrom([]coininfo.Network{
				coininfo.MainNet, coininfo.TestNet,
			})),
		)
	})
}

func genExtendedKey() *rapid.Generator[*HDKey] {
	return rapid.Custom(func(t *rapid.T) *HDKey {
		return NewExtendedKey(ExtendedKeyParams{
			IsPrivateKey: drawOpt(t, "private", rapid.Bool()),
			Key:          genBytes(33).Draw(t, "key"),
			ChainCode:    drawOpt(t, "chain_code", genBytes(32)),
			UseInfo:      drawOpt(t, "use_info", genCoinInfo()),
			Origin:       drawOpt(t, "origin", genKeyPath()),
			Children:     drawOpt(t, "children", genKeyPath()),
			ParentFingerprint: drawOpt(t, "parent_fp", rapid.Custom(
				func(t *rapid.T) [4]byte {
					var fp [4]byte
					copy(fp[:], genBytes(4).Draw(t, "fp"))
					return fp
				},
			)),
			Name: drawOpt(t, "name", rapid.String()),
			Note: drawOpt(t, "note", rapid.String()),
		})
	})
}

// TestRoundTripProperty checks that decoding an encoded extended key gives
// back every field that was set.
func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := genExtendedKey().Draw(t, "hdkey")

		b, err := k.Encode()
		require.NoError(t, err)

		decoded, err := Decode(b)
		require.NoError(t, err)
		require.True(t, k.Equal(decoded))

		// Decoded keys encode to the same bytes.
		again, err := decoded.Encode()
		require.NoError(t, err)
		require.True(t, bytes.Equal(b, again))

		require.Equal(t, k.BIP32Key(), decoded.BIP32Key())
	})
}

// TestMasterRoundTripProperty does the same for master keys.
func TestMasterRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := NewMasterKey(
			genBytes(33).Draw(t, "key"), genBytes(32).Draw(t, "chain"),
		)

		b, err := k.Encode()
		require.NoError(t, err)
		require.Equal(t, byte(0xa3), b[0])

		decoded, err := Decode(b)
		require.NoError(t, err)
		require.True(t, k.Equal(decoded))
		require.Equal(t, k.BIP32Key(), decoded.BIP32Key())
	})
}
