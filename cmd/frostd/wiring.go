package main

import (
	"github.com/meshsig/frost/config"
	"github.com/meshsig/frost/coordinator"
	"github.com/meshsig/frost/dkg"
	"github.com/meshsig/frost/internal/log"
	"github.com/meshsig/frost/node"
	"github.com/meshsig/frost/transport"
	"github.com/meshsig/frost/transport/local"
)

func peerInfoOf(key *dkg.LongTermKey) transport.PeerInfo {
	return transport.PeerInfo{LongTermPubKey: key.Public}
}

// joinNetwork loads cfg's own identity and joins the named in-process
// network under it, the same Join call node/engine_test.go's test
// harness makes for every simulated participant.
func joinNetwork(cfg *config.Config) (*dkg.LongTermKey, *local.Network, error) {
	self, err := cfg.LongTermKey()
	if err != nil {
		return nil, nil, err
	}
	net := local.Join(cfg.Network, self.NodeID(), peerInfoOf(self))
	return self, net, nil
}

func buildEngine(cfg *config.Config, self *dkg.LongTermKey, net *local.Network, logger log.Logger) *node.Engine {
	return node.NewEngine(self, net, nil, stringValidator{}, local.NewMemoryDataManager(), logger)
}

func buildCoordinator(cfg *config.Config, self *dkg.LongTermKey, net *local.Network, logger log.Logger) (*coordinator.Coordinator, error) {
	coordCfg, err := cfg.CoordinatorConfig()
	if err != nil {
		return nil, err
	}
	return coordinator.New(self.NodeID(), net, net, local.SeedOracle{}, stringValidator{}, coordCfg, logger)
}
