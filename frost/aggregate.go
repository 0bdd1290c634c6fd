package frost

import (
	"fmt"
	"math/big"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/schnorr"
)

// Aggregate combines the per-signer signature shares produced by PartialSign
// into a single BIP-340 Schnorr signature over the group public key.
//
// Aggregate does not itself verify each signature share; callers that
// cannot already trust every contributor should run VerifyPartialSignature
// on each share first; an aggregated signature built from even a single
// invalid share will fail schnorr.Verify.
func Aggregate(
	groupPublicKey *curve.Point,
	message []byte,
	commitments []*NonceCommitment,
	signatureShares map[curve.NodeID]*big.Int,
) (*schnorr.Signature, error) {
	sorted := sortCommitments(commitments)
	if err := validateCommitments(sorted); err != nil {
		return nil, err
	}

	for _, c := range sorted {
		if _, ok := signatureShares[c.ID]; !ok {
			return nil, fmt.Errorf("frost: missing signature share from signer %s", c.ID)
		}
	}

	rho := bindingFactors(groupPublicKey, message, sorted)
	r := groupCommitment(sorted, rho)
	if !r.HasEvenY() {
		r = curve.Neg(r)
	}

	z := big.NewInt(0)
	for _, c := range sorted {
		z.Add(z, signatureShares[c.ID])
		z.Mod(z, curve.Order())
	}

	sig := &schnorr.Signature{R: r, Z: z}
	if err := schnorr.Verify(sig, groupPublicKey, message); err != nil {
		return nil, fmt.Errorf("frost: aggregated signature is invalid: %w", err)
	}
	return sig, nil
}
