package dkg

import (
	"fmt"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/ephemeral"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/shamir"
)

// Round1Broadcast is the message a node publishes at the end of Round
// One: commitments to its secret polynomial, proofs of possession of its
// long-term key and of the polynomial's constant term, and the public
// half of a fresh ephemeral ECDH key used to encrypt Round Two shares.
type Round1Broadcast struct {
	SenderID           curve.NodeID
	Commitments        []*curve.Point
	LongTermKeyPoP     *schnorr.PoP
	ConstantTermPoP    *schnorr.PoP
	EphemeralPublicKey *ephemeral.PublicKey
}

// Round1 runs this node's Round One: it samples a fresh secret
// polynomial of degree Threshold-1, commits to it, proves possession of
// both its long-term key and the polynomial's constant term, and
// generates the ephemeral ECDH keypair used in Round Two.
func (t *Transcript) Round1(longTerm *LongTermKey) (*Round1Broadcast, error) {
	if err := t.requirePhase(PhaseR1); err != nil {
		return nil, err
	}
	if longTerm.NodeID() != t.SelfID {
		return nil, fmt.Errorf("dkg: long-term key does not match transcript identity")
	}

	secret, err := curve.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("dkg: sampling polynomial secret: %w", err)
	}
	poly, err := shamir.GeneratePolynomial(secret, t.Threshold)
	if err != nil {
		return nil, fmt.Errorf("dkg: generating polynomial: %w", err)
	}

	longTermPoP, err := schnorr.Sign("long-term-key", t.DkgID, longTerm.Public, longTerm.Private)
	if err != nil {
		return nil, fmt.Errorf("dkg: signing long-term key PoP: %w", err)
	}

	constantTermPublic := poly.Commitments()[0]
	constantTermPoP, err := schnorr.Sign("constant-term", t.DkgID, constantTermPublic, poly.Coefficients[0])
	if err != nil {
		return nil, fmt.Errorf("dkg: signing constant-term PoP: %w", err)
	}

	ephemeralKeyPair, err := ephemeral.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("dkg: generating ephemeral keypair: %w", err)
	}

	t.poly = poly
	t.ephemeral = ephemeralKeyPair
	t.Phase = PhaseR2

	return &Round1Broadcast{
		SenderID:           t.SelfID,
		Commitments:        poly.Commitments(),
		LongTermKeyPoP:     longTermPoP,
		ConstantTermPoP:    constantTermPoP,
		EphemeralPublicKey: ephemeralKeyPair.PublicKey,
	}, nil
}

// VerifyRound1Broadcast checks a peer's Round One broadcast: both proofs
// of possession and that the commitment list has the expected length.
// The caller uses the sender's claimed long-term public key, as reported
// by the NodeDirectory collaborator, to verify LongTermKeyPoP and to
// confirm SenderID is self-certifying.
func VerifyRound1Broadcast(
	dkgID string,
	threshold int,
	senderLongTermPublicKey *curve.Point,
	broadcast *Round1Broadcast,
) error {
	if curve.NodeIDFromPublicKey(senderLongTermPublicKey) != broadcast.SenderID {
		return fmt.Errorf("dkg: broadcast sender id does not match its long-term public key")
	}
	if len(broadcast.Commitments) != threshold {
		return fmt.Errorf(
			"dkg: expected %d polynomial commitments from %s, got %d",
			threshold, broadcast.SenderID, len(broadcast.Commitments),
		)
	}
	for _, c := range broadcast.Commitments {
		if !curve.IsOnCurve(c) {
			return fmt.Errorf("dkg: commitment from %s is not a valid curve point", broadcast.SenderID)
		}
	}

	if err := schnorr.VerifyPoP("long-term-key", dkgID, senderLongTermPublicKey, broadcast.LongTermKeyPoP); err != nil {
		return fmt.Errorf("dkg: long-term key PoP from %s failed: %w", broadcast.SenderID, err)
	}
	if err := schnorr.VerifyPoP("constant-term", dkgID, broadcast.Commitments[0], broadcast.ConstantTermPoP); err != nil {
		return fmt.Errorf("dkg: constant-term PoP from %s failed: %w", broadcast.SenderID, err)
	}
	return nil
}
