package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

var configFlag = &cli.StringFlag{
	Name:     "config",
	Aliases:  []string{"c"},
	Usage:    "path to a frostd TOML configuration file",
	Required: true,
}

var outFlag = &cli.StringFlag{
	Name:    "out",
	Aliases: []string{"o"},
	Usage:   "path to write output to (defaults to stdout)",
}

var dkgIDFlag = &cli.StringFlag{
	Name:  "dkg-id",
	Usage: "identifier for this DKG session (generated if omitted)",
}

var thresholdFlag = &cli.IntFlag{
	Name:     "threshold",
	Usage:    "signing threshold t",
	Required: true,
}

var partySizeFlag = &cli.IntFlag{
	Name:     "party-size",
	Usage:    "number of nodes selected into the DKG party",
	Required: true,
}

var appNameFlag = &cli.StringFlag{
	Name:  "app",
	Usage: "application namespace for the resulting group key",
	Value: "frostd",
}

var keyFlag = &cli.StringFlag{
	Name:     "key",
	Usage:    "path to the DKG result file written by the dkg subcommand",
	Required: true,
}

var signerCountFlag = &cli.IntFlag{
	Name:     "signers",
	Usage:    "number of signers to select for this signature",
	Required: true,
}

var messageFlag = &cli.StringFlag{
	Name:     "message",
	Usage:    "application message to sign",
	Required: true,
}

var nodesFlag = &cli.IntFlag{
	Name:  "nodes",
	Usage: "number of simulated nodes to run",
	Value: 5,
}

var appCommands = []*cli.Command{
	{
		Name:  "keygen",
		Usage: "generate a fresh long-term identity keypair",
		Flags: []cli.Flag{outFlag},
		Action: func(c *cli.Context) error {
			return keygenCmd(c)
		},
	},
	{
		Name:  "node",
		Usage: "run a signing node, serving round1/round2/round3/generate_nonces/sign requests",
		Flags: []cli.Flag{configFlag},
		Action: func(c *cli.Context) error {
			return nodeCmd(c)
		},
	},
	{
		Name:  "dkg",
		Usage: "run a DKG session as the session coordinator and write the resulting group key",
		Flags: []cli.Flag{configFlag, dkgIDFlag, thresholdFlag, partySizeFlag, appNameFlag, outFlag},
		Action: func(c *cli.Context) error {
			return dkgCmd(c)
		},
	},
	{
		Name:  "sign",
		Usage: "run a signing session against a completed DKG's key and print the aggregated signature",
		Flags: []cli.Flag{configFlag, keyFlag, signerCountFlag, messageFlag, outFlag},
		Action: func(c *cli.Context) error {
			return signCmd(c)
		},
	},
	{
		Name:  "demo",
		Usage: "run a full simulated cluster in-process: keygen, DKG, and a signature, start to finish",
		Flags: []cli.Flag{nodesFlag, thresholdFlag, messageFlag},
		Action: func(c *cli.Context) error {
			return demoCmd(c)
		},
	},
}

// CLI assembles the frostd application.
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "frostd"
	app.Usage = "FROST threshold Schnorr signing service"
	app.Version = version
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("frostd %v (date %v, commit %v)\n", version, buildDate, gitCommit)
	}
	app.Commands = appCommands
	return app
}
