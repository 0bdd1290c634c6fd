package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/meshsig/frost/config"
	"github.com/meshsig/frost/coordinator"
	"github.com/meshsig/frost/internal/log"
)

func nodeCmd(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	logger := log.DefaultLogger()
	if cfg.Debug {
		logger = log.New(os.Stdout, log.DebugLevel)
	}

	self, net, err := joinNetwork(cfg)
	if err != nil {
		return err
	}
	engine := buildEngine(cfg, self, net, logger)
	net.RegisterHandler(coordinator.Protocol, engine.Dispatch)

	logger.Infow("node serving", "node_id", self.NodeID().String(), "network", cfg.Network)
	fmt.Fprintf(os.Stderr, "node %s joined network %q, serving until interrupted\n", self.NodeID().String(), cfg.Network)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	net.Leave()
	return nil
}
