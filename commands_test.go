package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hblocks/urregistry/pkg/registry"
	"github.com/stretchr/testify/require"
)

const (
	masterKeyHex   = "00e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35"
	masterChainHex = "873dff81c02f525623fd1fe5167eac3a55a049de3d314bb42ee227ffed37d508"
	masterCBORHex  = "a301f503582100e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35045820873dff81c02f525623fd1fe5167eac3a55a049de3d314bb42ee227ffed37d508"

	accountCBORHex = "A5035821026FE2355745BB2DB3630BBC80EF5D58951C963C841F54170BA6E5C12BE7FC12A6045820CED155C72456255881793514EDC5BD9447E7F74ABB88C6D6B6480FD016EE8C8505D90131A1020106D90130A1018A182CF501F501F500F401F4081AE9181CF3"
)

func TestDecodeCommand(t *testing.T) {
	conf := &decodeConfig{}
	conf.Args.Hex = accountCBORHex

	var out bytes.Buffer
	require.NoError(t, decode(&out, conf))

	require.Contains(t, out.String(), "origin: m/44'/1'/1'/0/1\n")
	require.Contains(t, out.String(), "use info: bitcoin testnet\n")
	require.Contains(t, out.String(), "parent fingerprint: e9181cf3\n")
	require.Contains(t, out.String(), "bip32: xpub6H8Qkexp9BdSgEwPAnhiEjp"+
		"7NMXVEZWoAFWwon5mSwbuPZMfSUTpPwAP1Q2q2kYMRgRQ8udBpEj89wburY1vW7"+
		"AWDuYpByteGogpB6pPprX\n")
	require.Contains(t, out.String(), "address: tb1q")
}

func TestDecodeCommandErrors(t *testing.T) {
	conf := &decodeConfig{}
	conf.Args.Hex = "zz"
	require.Error(t, decode(&bytes.Buffer{}, conf))

	conf.Args.Hex = "a0"
	require.ErrorIs(t, decode(&bytes.Buffer{}, conf), registry.ErrMissingField)

	// A two byte key decodes, but not in strict mode.
	conf.Args.Hex = "a1034202ff"
	require.NoError(t, decode(&bytes.Buffer{}, conf))
	conf.Strict = true
	require.Error(t, decode(&bytes.Buffer{}, conf))
}

func TestEncodeCommand(t *testing.T) {
	var out bytes.Buffer
	err := encode(&out, &encodeConfig{
		Master:    true,
		Key:       masterKeyHex,
		ChainCode: masterChainHex,
		Name:      "ignored",
	})
	require.NoError(t, err)
	require.Equal(t, masterCBORHex+"\n", out.String())

	err = encode(&bytes.Buffer{}, &encodeConfig{Master: true, Key: "00"})
	require.Error(t, err)
}

func TestEncodeDecodeCommands(t *testing.T) {
	coin := uint32(0)
	conf := &encodeConfig{
		Key: "026fe2355745bb2db3630bbc80ef5d58951c963c841f54170ba6e5c1" +
			"2be7fc12a6",
		ChainCode: "ced155c72456255881793514edc5bd9447e7f74abb88c6d6b648" +
			"0fd016ee8c85",
		Coin:              &coin,
		Origin:            "m/44'/1'/1'/0/1",
		ParentFingerprint: "e9181cf3",
	}
	conf.TestNet = true

	var out bytes.Buffer
	require.NoError(t, encode(&out, conf))

	// Coin type is set explicitly here, so the output carries it.
	require.Equal(t, strings.ToLower(strings.Replace(
		accountCBORHex, "A1020106", "A20100020106", 1,
	)), strings.TrimSpace(out.String()))

	decodeConf := &decodeConfig{}
	decodeConf.Args.Hex = out.String()
	out.Reset()
	require.NoError(t, decode(&out, decodeConf))
	require.Contains(t, out.String(), "bip32: xpub6H8Qkexp9BdSgEwPAnhiEjp")

	conf.ParentFingerprint = "e918"
	require.Error(t, encode(&bytes.Buffer{}, conf))
}

func TestExportCommand(t *testing.T) {
	var out bytes.Buffer
	err := export(&out, &exportConfig{
		Seed: "000102030405060708090a0b0c0d0e0f",
		Path: "m/0'",
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "bip32: xpub68Gmy5EdvgibQVfPdqkBBCHx"+
		"A5htiqg55crXYuXoQRKfDBFA1WEjWgP6LHhwBZeNK1VTsfTFUHCdrfp1bgwQ9xv"+
		"5ski8PX9rL2dZXvgGDnw\n")
	require.Contains(t, out.String(), "source fingerprint: 3442193e\n")

	out.Reset()
	err = export(&out, &exportConfig{
		Seed: "000102030405060708090a0b0c0d0e0f",
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "cbor: "+masterCBORHex+"\n")

	account := uint32(0)
	out.Reset()
	err = export(&out, &exportConfig{Account: &account})
	require.NoError(t, err)
	require.Contains(t, out.String(), "origin: m/44'/0'/0'\n")
}
