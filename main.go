// Command urhdkey converts HD keys between the crypto-hdkey registry format
// and BIP-32 extended key strings.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	subCmd, config := parseCommandLine()

	var err error
	switch subCmd {
	case decodeSubCmd:
		err = decode(os.Stdout, config.(*decodeConfig))
	case encodeSubCmd:
		err = encode(os.Stdout, config.(*encodeConfig))
	case exportSubCmd:
		err = export(os.Stdout, config.(*exportConfig))
	default:
		err = errors.Errorf("Unknown sub-command '%s'", subCmd)
	}

	if err != nil {
		printErrorAndExit(err)
	}
}

func printErrorAndExit(err error) {
	logrus.WithError(err).Debug("Command failed")
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}
