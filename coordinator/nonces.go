package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/wire"
)

// bufferedCount returns how many unused nonce commitments the
// coordinator currently holds for peer.
func (c *Coordinator) bufferedCount(peer curve.NodeID) int {
	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()
	return len(c.nonceBuffers[peer])
}

// popNonce removes and returns one buffered nonce commitment for
// peer, or false if the buffer is empty. The buffer is drained
// monotonically by signing, per §4.3's nonce maintenance contract.
func (c *Coordinator) popNonce(peer curve.NodeID) (wire.NonceCommitment, bool) {
	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()
	buf := c.nonceBuffers[peer]
	if len(buf) == 0 {
		return wire.NonceCommitment{}, false
	}
	n := buf[0]
	c.nonceBuffers[peer] = buf[1:]
	return n, true
}

// RefillNonces requests fresh nonce commitments from peer and appends
// them to its buffer; exported so a one-shot caller (e.g. cmd/frostd's
// sign subcommand) can prime a buffer without running the long-lived
// MaintainNonces loop.
func (c *Coordinator) RefillNonces(ctx context.Context, peer curve.NodeID, count int) error {
	_, err := c.refillNonces(ctx, peer, count)
	return err
}

// refillNonces requests fresh nonce commitments from peer and appends
// them to its buffer. rejected reports how many of the requested
// count the peer's pool was at capacity for and so did not generate.
func (c *Coordinator) refillNonces(ctx context.Context, peer curve.NodeID, count int) (rejected int, err error) {
	resp, err := c.call(ctx, peer, wire.MethodGenerateNonces, wire.GenerateNoncesParameters{NumberOfNonces: count}, nil)
	if err != nil {
		return 0, err
	}
	if resp.Status != wire.StatusSuccessful {
		return 0, fmt.Errorf("generate_nonces: %s", resp.Reason)
	}
	var payload wire.GenerateNoncesResponse
	if err := json.Unmarshal(resp.Payload, &payload); err != nil {
		return 0, fmt.Errorf("decoding generate_nonces response: %w", err)
	}

	c.nonceMu.Lock()
	c.nonceBuffers[peer] = append(c.nonceBuffers[peer], payload.Nonces...)
	c.nonceMu.Unlock()

	if payload.Rejected > 0 {
		c.Logger.Warnw("peer's nonce pool is at capacity, refill was short",
			"peer", peer.String(), "requested", count, "rejected", payload.Rejected)
	}
	return payload.Rejected, nil
}

// MaintainNonces runs a long-lived per-peer loop that keeps peer's
// nonce buffer above the configured low-water mark, requesting
// low_water*10 fresh pairs whenever it dips below, and backing off on
// failure. It returns only when ctx is cancelled.
func (c *Coordinator) MaintainNonces(ctx context.Context, peer curve.NodeID) {
	lowWater := c.cfg.NonceLowWaterMark
	if lowWater <= 0 {
		lowWater = 1
	}
	target := lowWater * 10

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if c.bufferedCount(peer) >= lowWater {
			backoff = time.Second
			continue
		}

		rejected, err := c.refillNonces(ctx, peer, target)
		if err != nil {
			c.Logger.Warnw("nonce refill failed", "peer", peer.String(), "reason", err.Error(), "retry_in", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		if rejected > 0 {
			// Peer's pool is saturated; retrying immediately would just
			// be rejected again, so back off the same as on failure.
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
	}
}
