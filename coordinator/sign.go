package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/frost"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/wire"
)

// SigningResult is what a completed signing session produces.
type SigningResult struct {
	Signature *schnorr.Signature
	Signers   []curve.NodeID
}

// RunSigning selects signerCount signers from key.Party, pops one
// buffered nonce per signer (retrying with a replacement signer after
// a short wait window, up to the configured retry budget), fans out a
// signing request to each, independently verifies every partial
// signature against the signer's public share, and aggregates the
// survivors into a single Schnorr signature.
//
// It fails ErrNonceMissing if nonce buffers cannot be filled within
// the retry budget (no signing requests are sent in that case) and
// ErrInsufficientQuorum if fewer than key.Threshold partials survive
// verification.
func (c *Coordinator) RunSigning(
	ctx context.Context,
	key *KeyShareDescriptor,
	signerCount int,
	appInput []byte,
) (*SigningResult, error) {
	if c.Validator == nil {
		return nil, fmt.Errorf("coordinator: no AppValidator configured")
	}
	validated, err := c.Validator.Validate(appInput)
	if err != nil {
		return nil, fmt.Errorf("coordinator: validating signing input: %w", err)
	}

	now := time.Now()
	signers, err := c.selectSigners(key.Party, signerCount, now)
	if err != nil {
		return nil, err
	}

	nonces, signers, err := c.gatherNonces(ctx, signers, key.Party, now)
	if err != nil {
		return nil, err
	}

	signerList := make([]wire.SignerCommitment, len(signers))
	for i, id := range signers {
		n := nonces[id]
		signerList[i] = wire.SignerCommitment{SignerID: id.String(), Nonce: n}
	}
	params := wire.SignParameters{DkgID: key.DkgID, CommitmentList: signerList}

	results := fanOut(ctx, signers, c.sem, func(ctx context.Context, peer curve.NodeID) ([]byte, error) {
		resp, err := c.call(ctx, peer, wire.MethodSign, params, appInput)
		if err != nil {
			return nil, err
		}
		if resp.Status != wire.StatusSuccessful {
			return nil, errors.New(resp.Reason)
		}
		return resp.Payload, nil
	})

	commitments := make([]*frost.NonceCommitment, len(signers))
	for i, id := range signers {
		n := nonces[id]
		commitments[i] = &frost.NonceCommitment{ID: id, D: n.D.Point, E: n.E.Point}
	}

	shares := make(map[curve.NodeID]*wire.SignatureData, len(signers))
	var survivors []curve.NodeID
	var aggregatedR *curve.Point

	for _, res := range results {
		if res.Err != nil {
			c.reputation.penalize(res.Peer, classifyError(res.Err), now)
			continue
		}
		var payload wire.SignResponse
		if err := json.Unmarshal(res.Body, &payload); err != nil {
			c.reputation.penalize(res.Peer, outcomeError, now)
			continue
		}
		if aggregatedR == nil {
			aggregatedR = payload.SignatureData.AggregatedPublicNonce.Point
		} else if !curve.Equal(aggregatedR, payload.SignatureData.AggregatedPublicNonce.Point) {
			c.reputation.penalize(res.Peer, outcomeMalicious, now)
			continue
		}

		share := payload.SignatureData
		shares[res.Peer] = &share

		publicShare, ok := key.PublicShares[res.Peer]
		if !ok {
			c.reputation.penalize(res.Peer, outcomeError, now)
			continue
		}
		if err := frost.VerifyPartialSignature(res.Peer, publicShare, key.GroupPublicKey, validated.Digest, commitments, share.Z.Int); err != nil {
			c.reputation.penalize(res.Peer, outcomeMalicious, now)
			continue
		}
		survivors = append(survivors, res.Peer)
	}

	if len(survivors) < key.Threshold {
		return nil, fmt.Errorf("%w: %d verified signers of %d selected, need %d", ErrInsufficientQuorum, len(survivors), len(signers), key.Threshold)
	}

	survivorCommitments := make([]*frost.NonceCommitment, 0, len(survivors))
	signatureShares := make(map[curve.NodeID]*big.Int, len(survivors))
	for _, id := range survivors {
		n := nonces[id]
		survivorCommitments = append(survivorCommitments, &frost.NonceCommitment{ID: id, D: n.D.Point, E: n.E.Point})
		signatureShares[id] = shares[id].Z.Int
	}

	sig, err := frost.Aggregate(key.GroupPublicKey, validated.Digest, survivorCommitments, signatureShares)
	if err != nil {
		return nil, fmt.Errorf("coordinator: aggregating signature: %w", err)
	}

	return &SigningResult{Signature: sig, Signers: survivors}, nil
}

// selectSigners picks the first signerCount peers from party whose
// current decayed reputation keeps them below REMOVE_THRESHOLD.
func (c *Coordinator) selectSigners(party []curve.NodeID, signerCount int, now time.Time) ([]curve.NodeID, error) {
	eligible := c.reputation.filter(party, now)
	if len(eligible) < signerCount {
		return nil, fmt.Errorf("%w: %d eligible of %d party members, need %d signers", ErrInsufficientQuorum, len(eligible), len(party), signerCount)
	}
	return append([]curve.NodeID(nil), eligible[:signerCount]...), nil
}

// gatherNonces pops one buffered nonce commitment per selected
// signer. A signer whose buffer is empty is given one NonceWaitTimeout
// window to be refilled by the maintenance loop; if it is still empty
// afterward, it is marked TIMEOUT and replaced by an eligible,
// not-yet-selected party member, up to NonceMaxRetries rounds of
// replacement.
func (c *Coordinator) gatherNonces(
	ctx context.Context,
	signers []curve.NodeID,
	party []curve.NodeID,
	now time.Time,
) (map[curve.NodeID]wire.NonceCommitment, []curve.NodeID, error) {
	selected := append([]curve.NodeID(nil), signers...)
	inSelection := make(map[curve.NodeID]bool, len(selected))
	for _, id := range selected {
		inSelection[id] = true
	}

	nonces := make(map[curve.NodeID]wire.NonceCommitment, len(selected))

	for attempt := 0; ; attempt++ {
		var missing []curve.NodeID
		for _, id := range selected {
			if _, ok := nonces[id]; ok {
				continue
			}
			if n, ok := c.popNonce(id); ok {
				nonces[id] = n
			} else {
				missing = append(missing, id)
			}
		}
		if len(missing) == 0 {
			return nonces, selected, nil
		}
		if attempt >= c.cfg.NonceMaxRetries {
			return nil, nil, fmt.Errorf("%w: %d of %d signers never reported a buffered nonce", ErrNonceMissing, len(missing), len(selected))
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(c.cfg.NonceWaitTimeout):
		}

		for _, id := range missing {
			c.reputation.penalize(id, outcomeTimeout, now)
			replacement, ok := c.pickReplacement(party, inSelection, now)
			if !ok {
				continue
			}
			for i, s := range selected {
				if s == id {
					selected[i] = replacement
					break
				}
			}
			delete(inSelection, id)
			inSelection[replacement] = true
		}
	}
}

func (c *Coordinator) pickReplacement(party []curve.NodeID, taken map[curve.NodeID]bool, now time.Time) (curve.NodeID, bool) {
	for _, id := range party {
		if taken[id] {
			continue
		}
		if !c.reputation.excluded(id, now) {
			return id, true
		}
	}
	return curve.NodeID{}, false
}
