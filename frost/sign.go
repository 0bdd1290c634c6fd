package frost

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/shamir"
)

// sortCommitments returns commitments sorted in ascending order by node ID,
// the canonical ordering required before binding factors are derived.
func sortCommitments(commitments []*NonceCommitment) []*NonceCommitment {
	sorted := make([]*NonceCommitment, len(commitments))
	copy(sorted, commitments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	return sorted
}

func validateCommitments(commitments []*NonceCommitment) error {
	seen := make(map[curve.NodeID]bool, len(commitments))
	for _, c := range commitments {
		if c == nil || c.D == nil || c.E == nil {
			return fmt.Errorf("frost: nil commitment in commitment list")
		}
		if seen[c.ID] {
			return fmt.Errorf("frost: duplicate commitment from signer %s", c.ID)
		}
		seen[c.ID] = true
		if !curve.IsOnCurve(c.D) {
			return fmt.Errorf("frost: hiding nonce commitment from %s is not a valid point", c.ID)
		}
		if !curve.IsOnCurve(c.E) {
			return fmt.Errorf("frost: binding nonce commitment from %s is not a valid point", c.ID)
		}
	}
	return nil
}

// encodeCommitmentList serializes a sorted commitment list for inclusion in
// the binding-factor hash input.
func encodeCommitmentList(commitments []*NonceCommitment) []byte {
	buf := make([]byte, 0, len(commitments)*(32+2*curve.SerializedPointLength))
	for _, c := range commitments {
		buf = append(buf, c.ID[:]...)
		buf = append(buf, curve.SerializePoint(c.D)...)
		buf = append(buf, curve.SerializePoint(c.E)...)
	}
	return buf
}

// bindingFactors computes rho_i for every signer in the commitment list,
// binding each signer's contribution to the message and to every other
// signer's commitments so a malicious signer cannot reuse a commitment
// across unrelated signing sessions.
func bindingFactors(groupPublicKey *curve.Point, message []byte, commitments []*NonceCommitment) map[curve.NodeID]*big.Int {
	groupKeyEncoded := curve.SerializePoint(groupPublicKey)
	commitmentHash := schnorr.TaggedHash("FROST/commitment-list", encodeCommitmentList(commitments))

	factors := make(map[curve.NodeID]*big.Int, len(commitments))
	for _, c := range commitments {
		rho := schnorr.HashToScalar(
			"FROST/binding-factor",
			groupKeyEncoded,
			message,
			commitmentHash[:],
			c.ID[:],
		)
		factors[c.ID] = rho
	}
	return factors
}

// groupCommitment computes R = sum_i (D_i + rho_i * E_i).
func groupCommitment(commitments []*NonceCommitment, rho map[curve.NodeID]*big.Int) *curve.Point {
	r := curve.Identity()
	for _, c := range commitments {
		bound := curve.Mul(c.E, rho[c.ID])
		r = curve.Add(r, curve.Add(c.D, bound))
	}
	return r
}

// participantScalars returns the Lagrange x-coordinates of every signer in
// the commitment list.
func participantScalars(commitments []*NonceCommitment) []*big.Int {
	xs := make([]*big.Int, len(commitments))
	for i, c := range commitments {
		xs[i] = c.ID.Scalar()
	}
	return xs
}

// evenYScalar returns x unchanged if groupPublicKey already has even Y,
// or its negation mod the curve order otherwise. BIP-340 signatures are
// only defined against an even-Y public key; a FROST group key formed by
// summing random per-party commitments lands on either parity with equal
// probability, so every scalar derived from the group secret (a signer's
// share, here) must flip in lockstep with the key itself.
func evenYScalar(x *big.Int, groupPublicKey *curve.Point) *big.Int {
	if groupPublicKey.HasEvenY() {
		return x
	}
	neg := new(big.Int).Sub(curve.Order(), x)
	neg.Mod(neg, curve.Order())
	return neg
}

// evenYPoint returns p unchanged if groupPublicKey already has even Y, or
// its negation otherwise; the point-valued counterpart of evenYScalar for
// a signer's public share Y_i = s_i*G.
func evenYPoint(p *curve.Point, groupPublicKey *curve.Point) *curve.Point {
	if groupPublicKey.HasEvenY() {
		return p
	}
	return curve.Neg(p)
}

// AggregatedNonce computes the signing session's group commitment R
// from the full set of published nonce commitments, the group public
// key, and the message. Every participant and the coordinator compute
// this identically and independently; it is exposed so a participant
// can report R alongside its signature share without requiring a
// second round trip.
func AggregatedNonce(groupPublicKey *curve.Point, message []byte, commitments []*NonceCommitment) (*curve.Point, error) {
	sorted := sortCommitments(commitments)
	if err := validateCommitments(sorted); err != nil {
		return nil, err
	}
	rho := bindingFactors(groupPublicKey, message, sorted)
	r := groupCommitment(sorted, rho)
	if !r.HasEvenY() {
		r = curve.Neg(r)
	}
	return r, nil
}

// PartialSign implements Round Two of the signing protocol for a single
// signer: given the signer's long-term key share, the nonce pair it
// generated in Round One, the message, and the full commitment list, it
// produces this signer's signature share z_i.
//
// The caller MUST call nonce.Zeroize() immediately after PartialSign
// returns; a NoncePair must never be reused across two calls.
func PartialSign(
	share *KeyShare,
	nonce *NoncePair,
	message []byte,
	commitments []*NonceCommitment,
) (*big.Int, error) {
	sorted := sortCommitments(commitments)
	if err := validateCommitments(sorted); err != nil {
		return nil, err
	}

	ownCommitment := false
	for _, c := range sorted {
		if c.ID == share.ID {
			ownCommitment = true
			break
		}
	}
	if !ownCommitment {
		return nil, fmt.Errorf("frost: signer %s's own commitment is missing from the list", share.ID)
	}

	rho := bindingFactors(share.GroupPublicKey, message, sorted)
	r := groupCommitment(sorted, rho)

	lambda, err := shamir.LagrangeCoefficient(share.ID.Scalar(), participantScalars(sorted))
	if err != nil {
		return nil, fmt.Errorf("frost: deriving Lagrange coefficient: %w", err)
	}

	challenge := schnorr.Challenge(r, share.GroupPublicKey, message)

	nonceTerm := new(big.Int).Add(nonce.D, new(big.Int).Mul(rho[share.ID], nonce.E))
	if !r.HasEvenY() {
		nonceTerm.Neg(nonceTerm)
	}

	keyTerm := new(big.Int).Mul(lambda, evenYScalar(share.Secret, share.GroupPublicKey))
	keyTerm.Mul(keyTerm, challenge)

	z := new(big.Int).Add(nonceTerm, keyTerm)
	z.Mod(z, curve.Order())
	return z, nil
}

// VerifyPartialSignature checks that a signature share published by signer
// id is consistent with its nonce commitment and public key share, so a
// coordinator can identify a malicious signer before aggregation rather
// than discovering only that the aggregated signature is invalid.
func VerifyPartialSignature(
	id curve.NodeID,
	publicKeyShare *curve.Point,
	groupPublicKey *curve.Point,
	message []byte,
	commitments []*NonceCommitment,
	signatureShare *big.Int,
) error {
	sorted := sortCommitments(commitments)
	if err := validateCommitments(sorted); err != nil {
		return err
	}

	var own *NonceCommitment
	for _, c := range sorted {
		if c.ID == id {
			own = c
			break
		}
	}
	if own == nil {
		return fmt.Errorf("frost: no commitment on file for signer %s", id)
	}

	rho := bindingFactors(groupPublicKey, message, sorted)
	r := groupCommitment(sorted, rho)

	lambda, err := shamir.LagrangeCoefficient(id.Scalar(), participantScalars(sorted))
	if err != nil {
		return fmt.Errorf("frost: deriving Lagrange coefficient: %w", err)
	}

	challenge := schnorr.Challenge(r, groupPublicKey, message)

	commitTerm := curve.Add(own.D, curve.Mul(own.E, rho[id]))
	if !r.HasEvenY() {
		commitTerm = curve.Neg(commitTerm)
	}

	expected := curve.Add(commitTerm, curve.Mul(evenYPoint(publicKeyShare, groupPublicKey), new(big.Int).Mul(lambda, challenge)))
	actual := curve.BaseMul(signatureShare)

	if !curve.Equal(expected, actual) {
		return fmt.Errorf("frost: signature share from %s does not match its commitment", id)
	}
	return nil
}
