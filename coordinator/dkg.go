package coordinator

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/dkg"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/wire"
)

// KeyShareDescriptor is the coordinator-side view of a completed DKG:
// the group public key and every surviving party member's public
// share. It holds no secrets; each party's node.Engine retains its own
// frost.KeyShare independently.
type KeyShareDescriptor struct {
	DkgID          string
	GroupPublicKey *curve.Point
	PublicShares   map[curve.NodeID]*curve.Point
	Party          []curve.NodeID
	Threshold      int
}

type accusedComplaint struct {
	accuser curve.NodeID
	proof   wire.ComplaintProof
}

// RunDKG drives a full three-round DKG session to completion: it
// derives a deterministic subset of size partySize from candidates
// using seed, filters out peers already over REMOVE_THRESHOLD, and
// fans out R1, R2, and R3 in turn, penalizing and dropping peers that
// fail to respond or fail verification at each step. It never aborts
// the whole session merely because one peer misbehaves as long as a
// quorum of at least threshold survives every round.
func (c *Coordinator) RunDKG(
	ctx context.Context,
	dkgID string,
	threshold int,
	partySize int,
	seed []byte,
	candidates []curve.NodeID,
	appName string,
) (*KeyShareDescriptor, error) {
	dkgID = newSessionID(dkgID)
	now := time.Now()

	if len(seed) > 0 {
		if c.SeedOracle == nil || !c.SeedOracle.Validate(seed) {
			return nil, ErrInvalidSeed
		}
	}

	subset, err := selectSubset(seed, candidates, partySize)
	if err != nil {
		return nil, err
	}

	party := c.reputation.filter(subset, now)
	if len(party) < threshold {
		return nil, fmt.Errorf("%w: %d eligible of %d selected, need %d", ErrInsufficientQuorum, len(party), len(subset), threshold)
	}

	partyStrings := make([]string, len(party))
	for i, id := range party {
		partyStrings[i] = id.String()
	}

	var failures *multierror.Error

	broadcasts, r1Survivors := c.runRound1(ctx, dkgID, appName, threshold, party, partyStrings, now, &failures)
	if len(r1Survivors) < threshold {
		failures = multierror.Append(failures, fmt.Errorf("%w: round one", ErrInsufficientQuorum))
		return nil, failures.ErrorOrNil()
	}

	round2Ciphertexts, r2Survivors := c.runRound2(ctx, dkgID, broadcasts, r1Survivors, now, &failures)
	if len(r2Survivors) < threshold {
		failures = multierror.Append(failures, fmt.Errorf("%w: round two", ErrInsufficientQuorum))
		return nil, failures.ErrorOrNil()
	}

	descriptor, err := c.runRound3(ctx, dkgID, threshold, broadcasts, round2Ciphertexts, r2Survivors, now, &failures)
	if err != nil {
		return nil, err
	}

	if err := failures.ErrorOrNil(); err != nil {
		c.Logger.Warnw("dkg completed with degraded party", "dkg_id", dkgID, "reason", err.Error())
	}
	return descriptor, nil
}

func (c *Coordinator) runRound1(
	ctx context.Context,
	dkgID, appName string,
	threshold int,
	party []curve.NodeID,
	partyStrings []string,
	now time.Time,
	failures **multierror.Error,
) (map[string]wire.Round1Broadcast, []curve.NodeID) {
	params := wire.Round1Parameters{Party: partyStrings, DkgID: dkgID, AppName: appName, Threshold: threshold}

	results := fanOut(ctx, party, c.sem, func(ctx context.Context, peer curve.NodeID) ([]byte, error) {
		resp, err := c.call(ctx, peer, wire.MethodRound1, params, nil)
		if err != nil {
			return nil, err
		}
		if resp.Status != wire.StatusSuccessful {
			return nil, errors.New(resp.Reason)
		}
		return resp.Payload, nil
	})

	broadcasts := make(map[string]wire.Round1Broadcast, len(party))
	survivors := make([]curve.NodeID, 0, len(party))
	for _, res := range results {
		if res.Err != nil {
			c.reputation.penalize(res.Peer, classifyError(res.Err), now)
			*failures = multierror.Append(*failures, fmt.Errorf("round1 %s: %w", res.Peer, res.Err))
			continue
		}
		var payload wire.Round1Response
		if err := json.Unmarshal(res.Body, &payload); err != nil {
			c.reputation.penalize(res.Peer, outcomeError, now)
			*failures = multierror.Append(*failures, fmt.Errorf("round1 %s: decoding response: %w", res.Peer, err))
			continue
		}
		if err := c.verifyRound1Signature(dkgID, res.Peer, payload.Broadcast, payload.ValidationSig); err != nil {
			c.reputation.penalize(res.Peer, outcomeMalicious, now)
			*failures = multierror.Append(*failures, fmt.Errorf("round1 %s: %w", res.Peer, err))
			continue
		}
		broadcasts[res.Peer.String()] = payload.Broadcast
		survivors = append(survivors, res.Peer)
	}
	return broadcasts, survivors
}

func (c *Coordinator) runRound2(
	ctx context.Context,
	dkgID string,
	broadcasts map[string]wire.Round1Broadcast,
	party []curve.NodeID,
	now time.Time,
	failures **multierror.Error,
) (map[string]map[string]wire.HexBytes, []curve.NodeID) {
	results := fanOut(ctx, party, c.sem, func(ctx context.Context, peer curve.NodeID) ([]byte, error) {
		resp, err := c.call(ctx, peer, wire.MethodRound2, wire.Round2Parameters{DkgID: dkgID, BroadcastedData: broadcasts}, nil)
		if err != nil {
			return nil, err
		}
		if resp.Status != wire.StatusSuccessful {
			return nil, errors.New(resp.Reason)
		}
		return resp.Payload, nil
	})

	ciphertexts := make(map[string]map[string]wire.HexBytes, len(party))
	survivors := make([]curve.NodeID, 0, len(party))
	for _, res := range results {
		if res.Err != nil {
			c.reputation.penalize(res.Peer, classifyError(res.Err), now)
			*failures = multierror.Append(*failures, fmt.Errorf("round2 %s: %w", res.Peer, res.Err))
			continue
		}
		var payload wire.Round2Response
		if err := json.Unmarshal(res.Body, &payload); err != nil {
			c.reputation.penalize(res.Peer, outcomeError, now)
			*failures = multierror.Append(*failures, fmt.Errorf("round2 %s: decoding response: %w", res.Peer, err))
			continue
		}
		ciphertexts[res.Peer.String()] = payload.Ciphertexts
		survivors = append(survivors, res.Peer)
	}
	return ciphertexts, survivors
}

func (c *Coordinator) runRound3(
	ctx context.Context,
	dkgID string,
	threshold int,
	broadcasts map[string]wire.Round1Broadcast,
	ciphertexts map[string]map[string]wire.HexBytes,
	party []curve.NodeID,
	now time.Time,
	failures **multierror.Error,
) (*KeyShareDescriptor, error) {
	results := fanOut(ctx, party, c.sem, func(ctx context.Context, peer curve.NodeID) ([]byte, error) {
		recipient := peer.String()
		sendData := make(map[string]wire.HexBytes, len(ciphertexts))
		for sender, cts := range ciphertexts {
			if ct, ok := cts[recipient]; ok {
				sendData[sender] = ct
			}
		}
		resp, err := c.call(ctx, peer, wire.MethodRound3, wire.Round3Parameters{DkgID: dkgID, SendData: sendData}, nil)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	})

	var groupKey *curve.Point
	publicShares := make(map[curve.NodeID]*curve.Point, len(party))
	finalParty := make([]curve.NodeID, 0, len(party))
	var complaints []accusedComplaint

	for _, res := range results {
		if res.Err != nil {
			c.reputation.penalize(res.Peer, classifyError(res.Err), now)
			*failures = multierror.Append(*failures, fmt.Errorf("round3 %s: %w", res.Peer, res.Err))
			continue
		}
		var resp wire.Response
		if err := json.Unmarshal(res.Body, &resp); err != nil {
			c.reputation.penalize(res.Peer, outcomeError, now)
			*failures = multierror.Append(*failures, fmt.Errorf("round3 %s: decoding response: %w", res.Peer, err))
			continue
		}

		var payload wire.Round3Response
		if err := json.Unmarshal(resp.Payload, &payload); err != nil {
			c.reputation.penalize(res.Peer, outcomeError, now)
			*failures = multierror.Append(*failures, fmt.Errorf("round3 %s: decoding payload: %w", res.Peer, err))
			continue
		}

		switch resp.Status {
		case wire.StatusComplaint:
			if payload.Complaint != nil {
				for _, proof := range payload.Complaint.Proofs {
					complaints = append(complaints, accusedComplaint{accuser: res.Peer, proof: proof})
				}
			}
			*failures = multierror.Append(*failures, fmt.Errorf("round3 %s: complaint raised", res.Peer))
		case wire.StatusSuccessful:
			if payload.Data == nil {
				c.reputation.penalize(res.Peer, outcomeError, now)
				*failures = multierror.Append(*failures, fmt.Errorf("round3 %s: missing key share data", res.Peer))
				continue
			}
			if groupKey == nil {
				groupKey = payload.Data.DkgPublicKey.Point
			} else if !curve.Equal(groupKey, payload.Data.DkgPublicKey.Point) {
				c.reputation.penalize(res.Peer, outcomeMalicious, now)
				*failures = multierror.Append(*failures, fmt.Errorf("round3 %s: %w", res.Peer, ErrGroupKeyDisagreement))
				continue
			}
			publicShares[res.Peer] = payload.Data.PublicShare.Point
			finalParty = append(finalParty, res.Peer)
		default:
			c.reputation.penalize(res.Peer, outcomeError, now)
			*failures = multierror.Append(*failures, fmt.Errorf("round3 %s: status %s: %s", res.Peer, resp.Status, resp.Reason))
		}
	}

	for _, cp := range complaints {
		c.resolveComplaint(dkgID, cp, broadcasts, ciphertexts, now, failures)
	}

	if groupKey == nil || len(finalParty) < threshold {
		*failures = multierror.Append(*failures, fmt.Errorf("%w: round three", ErrInsufficientQuorum))
		return nil, (*failures).ErrorOrNil()
	}

	return &KeyShareDescriptor{
		DkgID:          dkgID,
		GroupPublicKey: groupKey,
		PublicShares:   publicShares,
		Party:          finalParty,
		Threshold:      threshold,
	}, nil
}

// verifyRound1Signature recomputes the digest the peer signed over its
// own broadcast and checks the accompanying PoP against the peer's
// long-term key, the same binding node.Engine produces on the sending
// side (schnorr.Sign over dkg_id + ":" + hex(sha256(broadcast))).
func (c *Coordinator) verifyRound1Signature(dkgID string, peer curve.NodeID, broadcast wire.Round1Broadcast, sig wire.PoP) error {
	info, err := c.Directory.Lookup(peer)
	if err != nil {
		return fmt.Errorf("resolving long-term key: %w", err)
	}
	raw, err := json.Marshal(broadcast)
	if err != nil {
		return fmt.Errorf("re-encoding broadcast: %w", err)
	}
	digest := sha256.Sum256(raw)
	sessionID := dkgID + ":" + fmt.Sprintf("%x", digest)
	pop := &schnorr.PoP{Nonce: sig.Nonce.Point, Response: sig.Response.Int}
	if err := schnorr.VerifyPoP("round1-broadcast", sessionID, info.LongTermPubKey, pop); err != nil {
		return fmt.Errorf("validation signature invalid: %w", err)
	}
	return nil
}

// resolveComplaint decrypts the disputed ciphertext using the complaint's
// revealed shared secret and deterministically assigns the penalty to
// whichever party is actually at fault, per §4.1's DLEQ-based
// resolution, never to a hard-coded side.
func (c *Coordinator) resolveComplaint(
	dkgID string,
	cp accusedComplaint,
	broadcasts map[string]wire.Round1Broadcast,
	ciphertexts map[string]map[string]wire.HexBytes,
	now time.Time,
	failures **multierror.Error,
) {
	accused, err := parseNodeID(cp.proof.Accused)
	if err != nil {
		*failures = multierror.Append(*failures, err)
		return
	}

	accuserWire, ok := broadcasts[cp.accuser.String()]
	if !ok {
		*failures = multierror.Append(*failures, fmt.Errorf("resolving complaint: no broadcast on file for accuser %s", cp.accuser))
		return
	}
	accusedWire, ok := broadcasts[accused.String()]
	if !ok {
		*failures = multierror.Append(*failures, fmt.Errorf("resolving complaint: no broadcast on file for accused %s", accused))
		return
	}
	accuserBroadcast, err := broadcastFromWire(accuserWire)
	if err != nil {
		*failures = multierror.Append(*failures, err)
		return
	}
	accusedBroadcast, err := broadcastFromWire(accusedWire)
	if err != nil {
		*failures = multierror.Append(*failures, err)
		return
	}

	disputed, ok := ciphertexts[accused.String()][cp.accuser.String()]
	if !ok {
		*failures = multierror.Append(*failures, fmt.Errorf("resolving complaint: no disputed ciphertext from %s to %s on file", accused, cp.accuser))
		return
	}

	complaint := &dkg.Complaint{
		DkgID:               dkgID,
		Accuser:             cp.accuser,
		Accused:             accused,
		AccuserEphemeralKey: cp.proof.AccuserEphemeralKey.Point,
		SharedSecret:        cp.proof.SharedSecret.Point,
		Proof:               dleqFromWire(cp.proof.Proof),
	}

	atFault, err := dkg.ResolveComplaint(complaint, accuserBroadcast, accusedBroadcast, disputed)
	if err != nil {
		c.Logger.Warnw("complaint resolution inconclusive", "accuser", cp.accuser.String(), "accused", accused.String(), "reason", err.Error())
	}
	c.reputation.penalize(atFault, outcomeMalicious, now)
}

func classifyError(err error) outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return outcomeTimeout
	}
	return outcomeError
}
