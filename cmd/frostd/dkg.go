package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/meshsig/frost/config"
	"github.com/meshsig/frost/internal/log"
	"github.com/meshsig/frost/transport/local"
)

func dkgCmd(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	logger := log.DefaultLogger()

	self, net, err := joinNetwork(cfg)
	if err != nil {
		return err
	}
	defer net.Leave()

	coord, err := buildCoordinator(cfg, self, net, logger)
	if err != nil {
		return err
	}

	candidates, err := cfg.Candidates()
	if err != nil {
		return err
	}

	seed, err := local.SeedOracle{}.Fresh()
	if err != nil {
		return fmt.Errorf("minting selection seed: %w", err)
	}

	appName := c.String("app")
	if appName == "" {
		appName = cfg.AppName
	}

	key, err := coord.RunDKG(context.Background(), c.String("dkg-id"), c.Int("threshold"), c.Int("party-size"), seed, candidates, appName)
	if err != nil {
		return fmt.Errorf("running DKG: %w", err)
	}

	return writeKeyFile(c.String("out"), key)
}
