package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/meshsig/frost/config"
	"github.com/meshsig/frost/internal/log"
)

func signCmd(c *cli.Context) error {
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

	key, err := readKeyFile(c.String("key"))
	if err != nil {
		return err
	}

	for _, peer := range key.Party {
		if err := coord.RefillNonces(context.Background(), peer, 5); err != nil {
			return fmt.Errorf("priming nonce buffer for %s: %w", peer, err)
		}
	}

	input, err := json.Marshal(c.String("message"))
	if err != nil {
		return err
	}

	result, err := coord.RunSigning(context.Background(), key, c.Int("signers"), input)
	if err != nil {
		return fmt.Errorf("running signing session: %w", err)
	}

	out := fmt.Sprintf("{\"r\":%q,\"z\":%q}\n", fmt.Sprintf("%x", result.Signature.R.X.Bytes()), fmt.Sprintf("%x", result.Signature.Z.Bytes()))
	if path := c.String("out"); path != "" {
		return os.WriteFile(path, []byte(out), 0o644)
	}
	_, err = fmt.Print(out)
	return err
}
