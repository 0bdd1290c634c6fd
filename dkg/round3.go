package dkg

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/ephemeral"
	"github.com/meshsig/frost/frost"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/shamir"
)

// decryptAndVerifyShare opens ciphertext under symmetricKey and checks the
// resulting share against the sender's published commitments, evaluated
// at recipientIndex. It reports false both when the ciphertext fails to
// decrypt and when it decrypts to a share inconsistent with the
// commitments; either way the sender is at fault and a complaint should
// be raised.
func decryptAndVerifyShare(
	symmetricKey *ephemeral.SymmetricEcdhKey,
	ciphertext []byte,
	recipientIndex *big.Int,
	senderCommitments []*curve.Point,
) (*big.Int, bool) {
	plaintext, err := symmetricKey.Decrypt(ciphertext)
	if err != nil {
		return nil, false
	}

	var envelope shareEnvelope
	if err := json.Unmarshal(plaintext, &envelope); err != nil {
		return nil, false
	}
	share := new(big.Int).SetBytes(envelope.Share)

	if !shamir.VerifyShare(share, recipientIndex, senderCommitments) {
		return nil, false
	}
	return share, true
}

// Round3Result is the outcome of Round Three: either a finalized
// KeyShare with an integrity proof, or a set of complaints against peers
// whose shares failed verification.
type Round3Result struct {
	KeyShare       *frost.KeyShare
	IntegrityProof *schnorr.PoP
	Complaints     []*Complaint
}

// Round3 decrypts every Round Two ciphertext addressed to this node,
// verifies each decrypted share against its sender's Round One
// commitments, and either finalizes the node's KeyShare or raises a
// complaint against every sender whose share failed verification.
func (t *Transcript) Round3(
	ciphertextsForMe map[curve.NodeID][]byte,
	longTermKey *LongTermKey,
) (*Round3Result, error) {
	if err := t.requirePhase(PhaseR3); err != nil {
		return nil, err
	}

	var complaints []*Complaint

	for _, senderID := range t.group.operating() {
		ciphertext, ok := ciphertextsForMe[senderID]
		if !ok {
			t.group.disqualify(senderID, "no Round Two ciphertext received")
			continue
		}

		symmetricKey, err := t.pairwiseKey(senderID)
		if err != nil {
			return nil, fmt.Errorf("dkg: deriving pairwise key for %s: %w", senderID, err)
		}

		senderBroadcast := t.broadcasts[senderID]
		share, valid := decryptAndVerifyShare(symmetricKey, ciphertext, t.SelfID.Scalar(), senderBroadcast.Commitments)
		if !valid {
			sharedPoint := curve.Mul(senderBroadcast.EphemeralPublicKey.Point(), t.ephemeral.PrivateKey.Scalar())
			complaint, cErr := t.raiseComplaint(senderID, sharedPoint)
			if cErr != nil {
				return nil, fmt.Errorf("dkg: raising complaint against %s: %w", senderID, cErr)
			}
			complaints = append(complaints, complaint)
			t.group.disqualify(senderID, "share inconsistent with published commitments")
			continue
		}

		t.receivedShares[senderID] = share
	}

	// Include this node's own self-evaluated share: f(self) for its own
	// polynomial is always consistent since it was generated locally.
	t.receivedShares[t.SelfID] = t.poly.Evaluate(t.SelfID.Scalar())

	if len(complaints) > 0 {
		return &Round3Result{Complaints: complaints}, nil
	}

	if len(t.group.operating()) < t.Threshold {
		t.Abort("insufficient surviving peers after Round Three verification")
		return nil, fmt.Errorf("dkg: only %d peers survived Round Three, need %d", len(t.group.operating()), t.Threshold)
	}

	finalShare := big.NewInt(0)
	groupPublicKey := curve.Identity()
	publicShares := make(map[curve.NodeID]*curve.Point, len(t.group.operating()))

	for _, id := range t.group.operating() {
		share, ok := t.receivedShares[id]
		if !ok {
			continue
		}
		finalShare.Add(finalShare, share)
		finalShare.Mod(finalShare, curve.Order())

		var constantTerm *curve.Point
		if id == t.SelfID {
			constantTerm = t.poly.Commitments()[0]
		} else {
			constantTerm = t.broadcasts[id].Commitments[0]
		}
		groupPublicKey = curve.Add(groupPublicKey, constantTerm)
	}

	selfPublicShare := curve.BaseMul(finalShare)
	for _, id := range t.group.operating() {
		publicShares[id] = curve.Identity()
		for _, senderID := range t.group.operating() {
			var commitments []*curve.Point
			if senderID == t.SelfID {
				commitments = t.poly.Commitments()
			} else {
				commitments = t.broadcasts[senderID].Commitments
			}
			publicShares[id] = curve.Add(publicShares[id], shamir.EvaluateCommitment(commitments, id.Scalar()))
		}
	}

	// BIP-340 signatures are only defined against an even-Y public key.
	// The group key resulting from summed random commitments has random
	// parity, so every party must negate its share in lockstep whenever
	// the raw group key has odd Y: this keeps the Shamir reconstruction
	// consistent (Σ λ_i·s_i_even = ∓d) while landing on the even-Y key
	// frost.Aggregate and schnorr.Verify expect.
	if !groupPublicKey.HasEvenY() {
		groupPublicKey = curve.Neg(groupPublicKey)
		finalShare.Sub(curve.Order(), finalShare)
		finalShare.Mod(finalShare, curve.Order())
		selfPublicShare = curve.Neg(selfPublicShare)
		for id, p := range publicShares {
			publicShares[id] = curve.Neg(p)
		}
	}

	integrityProof, err := schnorr.Sign(
		integrityProofLabel(groupPublicKey, selfPublicShare),
		t.DkgID,
		longTermKey.Public,
		longTermKey.Private,
	)
	if err != nil {
		t.Abort("failed to sign integrity proof")
		return nil, fmt.Errorf("dkg: signing integrity proof: %w", err)
	}

	t.Result = &frost.KeyShare{
		ID:             t.SelfID,
		Secret:         finalShare,
		PublicKey:      selfPublicShare,
		GroupPublicKey: groupPublicKey,
		Threshold:      t.Threshold,
		PublicShares:   publicShares,
	}
	t.zeroize()
	t.Phase = PhaseDone

	return &Round3Result{KeyShare: t.Result, IntegrityProof: integrityProof}, nil
}

// integrityProofLabel binds the Round Three integrity proof to the exact
// (Y, Y_self) pair it attests to, so a stale proof cannot be replayed
// against a different group key.
func integrityProofLabel(groupPublicKey, selfPublicShare *curve.Point) string {
	return fmt.Sprintf(
		"integrity:%x:%x",
		curve.SerializePoint(groupPublicKey),
		curve.SerializePoint(selfPublicShare),
	)
}
