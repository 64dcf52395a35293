package main

import (
	"os"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	decodeSubCmd = "decode"
	encodeSubCmd = "encode"
	exportSubCmd = "export"
)

type configFlags struct {
	LogLevel string `long:"loglevel" description:"Logging level {trace, debug, info, warn, error}" default:"info"`
}

type NetworkFlags struct {
	TestNet bool `long:"testnet" description:"Use the bitcoin test network"`
}

func (n NetworkFlags) params() *chaincfg.Params {
	if n.TestNet {
		return &chaincfg.TestNet3Params
	}

	return &chaincfg.MainNetParams
}

type decodeConfig struct {
	Strict bool `long:"strict" description:"Reject keys whose key data or chain code have the wrong size"`
	Args   struct {
		Hex string `positional-arg-name:"hex" description:"crypto-hdkey CBOR, hex encoded"`
	} `positional-args:"yes" required:"yes"`
}

type encodeConfig struct {
	Master            bool    `long:"master" description:"Encode a master key; only --key and --chain-code are used"`
	Private           *bool   `long:"private" description:"Set is_private_key"`
	Key               string  `long:"key" short:"k" description:"Key data (encoded in hex)" required:"true"`
	ChainCode         string  `long:"chain-code" short:"c" description:"Chain code (encoded in hex)"`
	Coin              *uint32 `long:"coin" description:"SLIP-44 coin type for use_info"`
	Origin            string  `long:"origin" description:"Origin derivation path, e.g. m/44'/0'/0'"`
	Children          string  `long:"children" description:"Children derivation path, e.g. 0/*"`
	ParentFingerprint string  `long:"parent-fingerprint" description:"Parent fingerprint (4 bytes, hex)"`
	Name              string  `long:"name" description:"Key name"`
	Note              string  `long:"note" description:"Key note"`
	NetworkFlags
}

type exportConfig struct {
	Seed     string  `long:"seed" short:"s" description:"Wallet seed (encoded in hex); a random seed is used when empty"`
	Path     string  `long:"path" short:"p" description:"Derivation path to export; the master key is exported when empty"`
	Account  *uint32 `long:"account" description:"Export the BIP-44 account m/44'/coin'/account' instead of --path"`
	Coin     uint32  `long:"coin" description:"SLIP-44 coin type used with --account"`
	Children string  `long:"children" description:"Children derivation path, e.g. 0/*"`
	NetworkFlags
}

func parseCommandLine() (subCommand string, config interface{}) {
	cfg := &configFlags{}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)

	decodeConf := &decodeConfig{}
	parser.AddCommand(decodeSubCmd, "Decodes a crypto-hdkey",
		"Decodes a hex encoded crypto-hdkey and prints its fields and BIP-32 key", decodeConf)

	encodeConf := &encodeConfig{}
	parser.AddCommand(encodeSubCmd, "Encodes a crypto-hdkey",
		"Builds a crypto-hdkey from the given fields and prints its hex encoding", encodeConf)

	exportConf := &exportConfig{}
	parser.AddCommand(exportSubCmd, "Exports a key of a seed",
		"Derives a key from a seed and prints it as a crypto-hdkey", exportConf)

	_, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		printErrorAndExit(err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)

	switch parser.Command.Active.Name {
	case decodeSubCmd:
		return decodeSubCmd, decodeConf
	case encodeSubCmd:
		return encodeSubCmd, encodeConf
	case exportSubCmd:
		return exportSubCmd, exportConf
	}

	return parser.Command.Active.Name, nil
}
