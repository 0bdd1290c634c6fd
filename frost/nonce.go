// Package frost implements the FROST threshold Schnorr signing protocol
// (Round One commitment, Round Two signature share generation, and
// signature share aggregation) over secp256k1, following the spec's
// (d, e) nonce naming rather than RFC 9591's (hiding, binding) naming.
package frost

import (
	"fmt"
	"math/big"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/schnorr"
)

// NoncePair is the pair of secret nonces (d, e) a signer generates for a
// single signing operation: d is the hiding nonce, e is the binding nonce.
// Both MUST be used at most once and zeroized after use.
type NoncePair struct {
	D *big.Int
	E *big.Int
}

// NonceCommitment is the public commitment (D, E) = (d*G, e*G) a signer
// publishes for a NoncePair, tagged with the signer's identity.
type NonceCommitment struct {
	ID curve.NodeID
	D  *curve.Point
	E  *curve.Point

	// PoolID is an opaque, node-local identifier for the NoncePair this
	// commitment was published for. It has no cryptographic meaning; it
	// only lets a later sign request tell the node which pool entry to
	// consume without resending the points.
	PoolID string
}

// GenerateNoncePair produces a fresh (d, e) nonce pair and its public
// commitment, binding the nonce derivation to the signer's secret key
// share so an exhausted RNG cannot repeat a nonce across signers.
func GenerateNoncePair(secretShare *big.Int) (*NoncePair, *NonceCommitment, error) {
	d, err := generateNonceScalar(secretShare)
	if err != nil {
		return nil, nil, fmt.Errorf("frost: generating hiding nonce: %w", err)
	}
	e, err := generateNonceScalar(secretShare)
	if err != nil {
		return nil, nil, fmt.Errorf("frost: generating binding nonce: %w", err)
	}

	commitment := &NonceCommitment{
		D: curve.BaseMul(d),
		E: curve.BaseMul(e),
	}
	return &NoncePair{D: d, E: e}, commitment, nil
}

func generateNonceScalar(secretShare *big.Int) (*big.Int, error) {
	random, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	return schnorr.HashToScalar("FROST/nonce", random.Bytes(), secretShare.Bytes()), nil
}

// Zeroize overwrites the secret nonce values in place. Callers must drop
// all other references to a NoncePair before calling Zeroize, and must
// call it as soon as the nonce has been consumed by PartialSign.
func (n *NoncePair) Zeroize() {
	if n == nil {
		return
	}
	if n.D != nil {
		n.D.SetInt64(0)
	}
	if n.E != nil {
		n.E.SetInt64(0)
	}
}
