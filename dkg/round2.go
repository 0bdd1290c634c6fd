package dkg

import (
	"encoding/json"
	"fmt"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/ephemeral"
)

// shareEnvelope is the plaintext sealed for each peer in Round Two: the
// sender's evaluation of its secret polynomial at the recipient's index.
type shareEnvelope struct {
	Share []byte // big-endian scalar
}

// Round2 verifies every surviving peer's Round One proofs of possession,
// then for each one computes a pairwise symmetric key over the exchanged
// ephemeral public keys and seals this node's share of its own secret
// polynomial, evaluated at that peer's index.
//
// longTermPublicKeys supplies the claimed long-term public key for every
// broadcast sender, as resolved through the NodeDirectory collaborator.
func (t *Transcript) Round2(
	broadcasts map[curve.NodeID]*Round1Broadcast,
	longTermPublicKeys map[curve.NodeID]*curve.Point,
) (map[curve.NodeID][]byte, error) {
	if err := t.requirePhase(PhaseR2); err != nil {
		return nil, err
	}

	t.broadcasts = broadcasts

	for id, broadcast := range broadcasts {
		longTermKey, ok := longTermPublicKeys[id]
		if !ok {
			t.group.disqualify(id, "missing long-term public key")
			continue
		}
		if err := VerifyRound1Broadcast(t.DkgID, t.Threshold, longTermKey, broadcast); err != nil {
			t.group.disqualify(id, err.Error())
		}
	}
	for _, id := range t.group.operating() {
		if _, ok := broadcasts[id]; !ok {
			t.group.disqualify(id, "no Round One broadcast received")
		}
	}

	if len(t.group.operating()) < t.Threshold {
		t.Abort("insufficient surviving peers after Round One verification")
		return nil, fmt.Errorf("dkg: only %d peers survived Round One, need %d", len(t.group.operating()), t.Threshold)
	}

	ciphertexts := make(map[curve.NodeID][]byte, len(t.group.operating()))
	for _, id := range t.group.operating() {
		share := t.poly.Evaluate(id.Scalar())
		plaintext, err := json.Marshal(shareEnvelope{Share: share.Bytes()})
		if err != nil {
			return nil, fmt.Errorf("dkg: encoding share for %s: %w", id, err)
		}

		symmetricKey, err := t.pairwiseKey(id)
		if err != nil {
			return nil, fmt.Errorf("dkg: deriving pairwise key for %s: %w", id, err)
		}

		ciphertext, err := symmetricKey.Encrypt(plaintext)
		if err != nil {
			return nil, fmt.Errorf("dkg: sealing share for %s: %w", id, err)
		}
		ciphertexts[id] = ciphertext
	}

	t.Phase = PhaseR3
	return ciphertexts, nil
}

// pairwiseKey derives the ECDH symmetric key shared with peer id, using
// this node's ephemeral private key and the peer's ephemeral public key
// as broadcast in Round One.
func (t *Transcript) pairwiseKey(id curve.NodeID) (*ephemeral.SymmetricEcdhKey, error) {
	broadcast, ok := t.broadcasts[id]
	if !ok {
		return nil, fmt.Errorf("dkg: no Round One broadcast on file for %s", id)
	}
	return t.ephemeral.PrivateKey.Ecdh(broadcast.EphemeralPublicKey)
}
