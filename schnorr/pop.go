package schnorr

import (
	"fmt"
	"math/big"

	"github.com/meshsig/frost/curve"
)

// popTag domain-separates proof-of-possession challenges from every other
// tagged hash used in the protocol.
const popTag = "PoP"

// PoP is a Schnorr proof of possession of the secret scalar behind a public
// value, as defined in §4.1: the signer commits a nonce k, publishes
// K = k*G, and outputs (K, z = k + c*x) where
// c = H("PoP" || signerLabel || sessionID || pubKey || K).
type PoP struct {
	Nonce    *curve.Point
	Response *big.Int
}

// Sign produces a proof of possession that the caller knows secret such
// that secret*G == pubKey. signerLabel and sessionID are bound into the
// challenge so a proof cannot be replayed across signers or sessions.
func Sign(
	signerLabel string,
	sessionID string,
	pubKey *curve.Point,
	secret *big.Int,
) (*PoP, error) {
	k, err := curve.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("schnorr: sampling PoP nonce: %w", err)
	}
	K := curve.BaseMul(k)

	c := popChallenge(signerLabel, sessionID, pubKey, K)

	z := new(big.Int).Mul(c, secret)
	z.Add(z, k)
	z.Mod(z, curve.Order())

	return &PoP{Nonce: K, Response: z}, nil
}

// VerifyPoP checks that z*G == K + c*pubKey for the challenge recomputed
// from the given labels.
func VerifyPoP(
	signerLabel string,
	sessionID string,
	pubKey *curve.Point,
	proof *PoP,
) error {
	if proof == nil || proof.Nonce == nil || proof.Response == nil {
		return fmt.Errorf("schnorr: PoP proof is incomplete")
	}
	if !curve.IsOnCurve(proof.Nonce) {
		return fmt.Errorf("schnorr: PoP nonce is not a valid curve point")
	}
	if !curve.IsOnCurve(pubKey) {
		return fmt.Errorf("schnorr: PoP public key is not a valid curve point")
	}

	c := popChallenge(signerLabel, sessionID, pubKey, proof.Nonce)

	lhs := curve.BaseMul(proof.Response)
	rhs := curve.Add(proof.Nonce, curve.Mul(pubKey, c))

	if !curve.Equal(lhs, rhs) {
		return fmt.Errorf("schnorr: PoP verification failed for %q", signerLabel)
	}
	return nil
}

func popChallenge(signerLabel, sessionID string, pubKey, nonce *curve.Point) *big.Int {
	return HashToScalar(
		popTag,
		[]byte(signerLabel),
		[]byte(sessionID),
		curve.SerializePoint(pubKey),
		curve.SerializePoint(nonce),
	)
}
