// Package coordinator drives a DKG or signing session by issuing
// parallel per-peer wire requests, verifying the responses, and
// tracking peer reputation, the way a production FROST aggregator
// orchestrates an otherwise stateless node fleet.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/internal/log"
	"github.com/meshsig/frost/transport"
	"github.com/meshsig/frost/wire"
)

// Protocol is the default transport.Transport protocol name the
// coordinator sends every wire request under; it matches the name a
// node.Engine is expected to register its Dispatch method against.
const Protocol = "frost"

// Coordinator is a single session coordinator's long-lived state: it
// holds no secrets of its own and is safe for concurrent use by
// multiple in-flight sessions.
type Coordinator struct {
	Self       curve.NodeID
	Transport  transport.Transport
	Directory  transport.NodeDirectory
	SeedOracle transport.SeedOracle
	Validator  transport.AppValidator
	Protocol   string
	Logger     log.Logger

	cfg        Config
	reputation *reputation
	sem        *semaphore.Weighted

	nonceMu      sync.Mutex
	nonceBuffers map[curve.NodeID][]wire.NonceCommitment
}

// New constructs a Coordinator. transport and directory are required;
// seedOracle may be nil only if the caller never invokes RunDKG with a
// non-empty seed (RunDKG rejects a nil oracle whenever seed validation
// would otherwise be skipped).
func New(
	self curve.NodeID,
	tr transport.Transport,
	directory transport.NodeDirectory,
	seedOracle transport.SeedOracle,
	validator transport.AppValidator,
	cfg Config,
	logger log.Logger,
) (*Coordinator, error) {
	rep, err := newReputation(cfg)
	if err != nil {
		return nil, fmt.Errorf("coordinator: building reputation cache: %w", err)
	}

	var sem *semaphore.Weighted
	if cfg.ConcurrencyLimit > 0 {
		sem = semaphore.NewWeighted(cfg.ConcurrencyLimit)
	}

	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Coordinator{
		Self:         self,
		Transport:    tr,
		Directory:    directory,
		SeedOracle:   seedOracle,
		Validator:    validator,
		Protocol:     Protocol,
		Logger:       logger.Named("coordinator").With("node_id", self.String()),
		cfg:          cfg,
		reputation:   rep,
		sem:          sem,
		nonceBuffers: make(map[curve.NodeID][]wire.NonceCommitment),
	}, nil
}

// Penalize records a penalty against id; exported so callers outside a
// RunDKG/RunSigning call (e.g. a resolved R3 complaint naming the
// actually-at-fault party) can feed the same reputation table.
func (c *Coordinator) Penalize(id curve.NodeID, reason string, now time.Time) {
	var o outcome
	switch reason {
	case "timeout":
		o = outcomeTimeout
	case "malicious":
		o = outcomeMalicious
	default:
		o = outcomeError
	}
	c.reputation.penalize(id, o, now)
}

// Reputation returns id's current decayed effective penalty score.
func (c *Coordinator) Reputation(id curve.NodeID, now time.Time) float64 {
	return c.reputation.score(id, now)
}

// newSessionID mints a session identifier via uuid when the caller
// supplies none.
func newSessionID(supplied string) string {
	if supplied != "" {
		return supplied
	}
	return uuid.NewString()
}

// call issues a single wire request to peer and decodes its response
// envelope. It does not interpret Status at all; callers inspect
// resp.Status themselves.
func (c *Coordinator) call(ctx context.Context, peer curve.NodeID, method wire.Method, params interface{}, inputData []byte) (*wire.Response, error) {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("coordinator: encoding %s parameters: %w", method, err)
	}
	req := wire.Request{
		RequestID:  uuid.NewString(),
		Method:     method,
		Parameters: rawParams,
		InputData:  inputData,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("coordinator: encoding %s request: %w", method, err)
	}

	deadline := time.Now().Add(c.cfg.RoundTimeout)
	respBytes, err := c.Transport.Send(ctx, peer, c.Protocol, body, deadline)
	if err != nil {
		return nil, err
	}

	var resp wire.Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("coordinator: decoding %s response from %s: %w", method, peer, err)
	}
	return &resp, nil
}
