package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/meshsig/frost/coordinator"
	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/dkg"
	"github.com/meshsig/frost/internal/log"
	"github.com/meshsig/frost/node"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/transport"
	"github.com/meshsig/frost/transport/local"
)

// demoCmd runs a complete simulated cluster in one process: n signing
// nodes joined to a throwaway local network, a DKG session, and a
// signing session, printing the verified aggregated signature. It
// exists to exercise node.Engine and coordinator.Coordinator together
// without requiring a real transport or a pre-written config file.
func demoCmd(c *cli.Context) error {
	n := c.Int("nodes")
	threshold := c.Int("threshold")
	message := c.String("message")

	logger := log.DefaultLogger()
	networkName := fmt.Sprintf("frostd-demo-%d", n)

	candidates := make([]curve.NodeID, n)
	for i := 0; i < n; i++ {
		lt, err := dkg.GenerateLongTermKey()
		if err != nil {
			return fmt.Errorf("generating node %d identity: %w", i, err)
		}
		net := local.Join(networkName, lt.NodeID(), transport.PeerInfo{LongTermPubKey: lt.Public})
		engine := node.NewEngine(lt, net, nil, stringValidator{}, local.NewMemoryDataManager(), logger)
		net.RegisterHandler(coordinator.Protocol, engine.Dispatch)
		candidates[i] = lt.NodeID()
	}

	coordKey, err := dkg.GenerateLongTermKey()
	if err != nil {
		return fmt.Errorf("generating coordinator identity: %w", err)
	}
	coordNet := local.Join(networkName, coordKey.NodeID(), transport.PeerInfo{LongTermPubKey: coordKey.Public})

	coord, err := coordinator.New(coordKey.NodeID(), coordNet, coordNet, local.SeedOracle{}, stringValidator{}, coordinator.DefaultConfig(), logger)
	if err != nil {
		return fmt.Errorf("building coordinator: %w", err)
	}

	seed, err := local.SeedOracle{}.Fresh()
	if err != nil {
		return fmt.Errorf("minting selection seed: %w", err)
	}

	ctx := context.Background()
	key, err := coord.RunDKG(ctx, "", threshold, n, seed, candidates, "frostd-demo")
	if err != nil {
		return fmt.Errorf("running DKG: %w", err)
	}
	fmt.Printf("DKG complete: dkg_id=%s party=%d group_key=%x\n", key.DkgID, len(key.Party), curve.SerializePoint(key.GroupPublicKey))

	for _, peer := range key.Party {
		if err := coord.RefillNonces(ctx, peer, 5); err != nil {
			return fmt.Errorf("priming nonce buffer for %s: %w", peer, err)
		}
	}

	input, err := json.Marshal(message)
	if err != nil {
		return err
	}
	signerCount := threshold
	result, err := coord.RunSigning(ctx, key, signerCount, input)
	if err != nil {
		return fmt.Errorf("running signing session: %w", err)
	}

	if err := schnorr.Verify(result.Signature, key.GroupPublicKey, []byte(message)); err != nil {
		return fmt.Errorf("aggregated signature failed verification: %w", err)
	}
	fmt.Printf("signature verified: signers=%d r=%x z=%x\n", len(result.Signers), result.Signature.R.X.Bytes(), result.Signature.Z.Bytes())
	return nil
}
