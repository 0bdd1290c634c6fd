package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/dkg"
	"github.com/meshsig/frost/node"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/transport"
	"github.com/meshsig/frost/transport/local"
	"github.com/meshsig/frost/wire"
)

// stringValidator treats a JSON-encoded string as both the canonical
// message and the digest, matching the minimal AppValidator the node
// package's own wire tests use.
type stringValidator struct{}

func (stringValidator) Validate(input []byte) (transport.ValidatedInput, error) {
	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return transport.ValidatedInput{}, err
	}
	return transport.ValidatedInput{CanonicalBytes: []byte(s), Digest: []byte(s)}, nil
}

type harnessNode struct {
	longTerm *dkg.LongTermKey
	engine   *node.Engine
	net      *local.Network
}

// harness is a full in-memory deployment: n honest nodes plus a
// coordinator identity sharing the same named network.
type harness struct {
	nodes         []*harnessNode
	coordinatorID curve.NodeID
	coordinatorNet *local.Network
}

func newHarness(t *testing.T, n int) *harness {
	t.Helper()
	networkName := t.Name() + "-" + uuid.NewString()

	nodes := make([]*harnessNode, n)
	for i := range nodes {
		lt, err := dkg.GenerateLongTermKey()
		if err != nil {
			t.Fatalf("GenerateLongTermKey: %v", err)
		}
		nodes[i] = &harnessNode{longTerm: lt}
	}

	for _, hn := range nodes {
		net := local.Join(networkName, hn.longTerm.NodeID(), transport.PeerInfo{LongTermPubKey: hn.longTerm.Public})
		hn.net = net
		hn.engine = node.NewEngine(hn.longTerm, net, nil, stringValidator{}, local.NewMemoryDataManager(), nil)
		net.RegisterHandler(Protocol, hn.engine.Dispatch)
	}

	coordinatorKey, err := dkg.GenerateLongTermKey()
	if err != nil {
		t.Fatalf("GenerateLongTermKey: %v", err)
	}
	coordinatorNet := local.Join(networkName, coordinatorKey.NodeID(), transport.PeerInfo{LongTermPubKey: coordinatorKey.Public})

	return &harness{nodes: nodes, coordinatorID: coordinatorKey.NodeID(), coordinatorNet: coordinatorNet}
}

func (h *harness) candidates() []curve.NodeID {
	ids := make([]curve.NodeID, len(h.nodes))
	for i, n := range h.nodes {
		ids[i] = n.longTerm.NodeID()
	}
	return ids
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.RoundTimeout = 200 * time.Millisecond
	cfg.NonceWaitTimeout = 20 * time.Millisecond
	cfg.NonceMaxRetries = 2
	return cfg
}

func newCoordinator(t *testing.T, h *harness, cfg Config) *Coordinator {
	t.Helper()
	c, err := New(h.coordinatorID, h.coordinatorNet, h.coordinatorNet, local.SeedOracle{}, stringValidator{}, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// TestRunDKGHappyPath exercises S1: three honest nodes, t=2, all three
// R3 responses must carry the same group public key.
func TestRunDKGHappyPath(t *testing.T) {
	h := newHarness(t, 3)
	c := newCoordinator(t, h, fastConfig())

	seed, err := local.SeedOracle{}.Fresh()
	if err != nil {
		t.Fatalf("Fresh: %v", err)
	}

	key, err := c.RunDKG(context.Background(), "", 2, 3, seed, h.candidates(), "test-app")
	if err != nil {
		t.Fatalf("RunDKG: %v", err)
	}
	if len(key.Party) != 3 {
		t.Fatalf("expected all 3 nodes to finish DKG, got %d", len(key.Party))
	}
	if key.GroupPublicKey == nil {
		t.Fatal("expected a group public key")
	}
}

// TestRunDKGPeerTimesOut exercises S3: one of three nodes never
// answers R1 within the round timeout. The coordinator must still
// produce a (2,3)-style key from the two survivors and penalize the
// slow peer with a TIMEOUT.
func TestRunDKGPeerTimesOut(t *testing.T) {
	h := newHarness(t, 3)
	cfg := fastConfig()
	c := newCoordinator(t, h, cfg)

	slow := h.nodes[2]
	slow.net.RegisterHandler(Protocol, func(ctx context.Context, caller curve.NodeID, body []byte) ([]byte, error) {
		select {
		case <-time.After(2 * cfg.RoundTimeout):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return slow.engine.Dispatch(ctx, caller, body)
	})

	seed, err := local.SeedOracle{}.Fresh()
	if err != nil {
		t.Fatalf("Fresh: %v", err)
	}

	key, err := c.RunDKG(context.Background(), "", 2, 3, seed, h.candidates(), "test-app")
	if err != nil {
		t.Fatalf("RunDKG: %v", err)
	}
	if len(key.Party) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(key.Party))
	}
	if score := c.Reputation(slow.longTerm.NodeID(), time.Now()); score <= 0 {
		t.Fatalf("expected slow peer to be penalized, score=%f", score)
	}
}

func runHappyDKG(t *testing.T, h *harness, c *Coordinator) *KeyShareDescriptor {
	t.Helper()
	seed, err := local.SeedOracle{}.Fresh()
	if err != nil {
		t.Fatalf("Fresh: %v", err)
	}
	key, err := c.RunDKG(context.Background(), "", 2, 3, seed, h.candidates(), "test-app")
	if err != nil {
		t.Fatalf("RunDKG: %v", err)
	}
	return key
}

// TestRunSigningHappyPath exercises S2: sign with the S1 key and
// verify the aggregated signature.
func TestRunSigningHappyPath(t *testing.T) {
	h := newHarness(t, 3)
	cfg := fastConfig()
	c := newCoordinator(t, h, cfg)

	key := runHappyDKG(t, h, c)

	for _, n := range h.nodes {
		if _, err := c.refillNonces(context.Background(), n.longTerm.NodeID(), 5); err != nil {
			t.Fatalf("refillNonces(%s): %v", n.longTerm.NodeID(), err)
		}
	}

	message := "hello"
	input, err := json.Marshal(message)
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}

	result, err := c.RunSigning(context.Background(), key, 2, input)
	if err != nil {
		t.Fatalf("RunSigning: %v", err)
	}
	if err := schnorr.Verify(result.Signature, key.GroupPublicKey, []byte(message)); err != nil {
		t.Fatalf("aggregated signature failed verification: %v", err)
	}
}

// TestRunSigningMaliciousSigner exercises S5: a tampered signer
// returns an invalid z_i. The coordinator's per-partial verification
// must reject it; with only one honest signer remaining (< t=2), the
// session fails ErrInsufficientQuorum.
func TestRunSigningMaliciousSigner(t *testing.T) {
	h := newHarness(t, 3)
	cfg := fastConfig()
	c := newCoordinator(t, h, cfg)

	key := runHappyDKG(t, h, c)

	for _, n := range h.nodes {
		if _, err := c.refillNonces(context.Background(), n.longTerm.NodeID(), 5); err != nil {
			t.Fatalf("refillNonces(%s): %v", n.longTerm.NodeID(), err)
		}
	}

	// Signers are taken from the front of key.Party, so the culprit is
	// the node in its first slot, guaranteeing it is asked to sign.
	var culprit *harnessNode
	for _, n := range h.nodes {
		if n.longTerm.NodeID() == key.Party[0] {
			culprit = n
		}
	}
	culprit.net.RegisterHandler(Protocol, func(ctx context.Context, caller curve.NodeID, body []byte) ([]byte, error) {
		raw, err := culprit.engine.Dispatch(ctx, caller, body)
		if err != nil {
			return raw, err
		}
		var req wire.Request
		if jsonErr := json.Unmarshal(body, &req); jsonErr == nil && req.Method == wire.MethodSign {
			var resp wire.Response
			if jsonErr := json.Unmarshal(raw, &resp); jsonErr == nil && resp.Status == wire.StatusSuccessful {
				var payload wire.SignResponse
				if jsonErr := json.Unmarshal(resp.Payload, &payload); jsonErr == nil {
					tampered := new(big.Int).Add(payload.SignatureData.Z.Int, big.NewInt(1))
					tampered.Mod(tampered, curve.Order())
					payload.SignatureData.Z.Int = tampered
					newPayload, _ := json.Marshal(payload)
					resp.Payload = newPayload
					raw, _ = json.Marshal(resp)
				}
			}
		}
		return raw, nil
	})

	message := "hello"
	input, err := json.Marshal(message)
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}

	_, err = c.RunSigning(context.Background(), key, 2, input)
	if !errors.Is(err, ErrInsufficientQuorum) {
		t.Fatalf("expected ErrInsufficientQuorum, got %v", err)
	}
	if score := c.Reputation(culprit.longTerm.NodeID(), time.Now()); score < cfg.MaliciousPenalty {
		t.Fatalf("expected culprit to carry a malicious penalty, score=%f", score)
	}
}

// TestRunSigningNonceExhaustion exercises S6: the coordinator attempts
// to sign before any nonce maintenance has populated a buffer.
// Expected: ErrNonceMissing, with no signing requests ever sent.
func TestRunSigningNonceExhaustion(t *testing.T) {
	h := newHarness(t, 3)
	cfg := fastConfig()
	c := newCoordinator(t, h, cfg)

	key := runHappyDKG(t, h, c)

	message := "hello"
	input, err := json.Marshal(message)
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}

	_, err = c.RunSigning(context.Background(), key, 2, input)
	if !errors.Is(err, ErrNonceMissing) {
		t.Fatalf("expected ErrNonceMissing, got %v", err)
	}
}
