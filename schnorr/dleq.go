package schnorr

import (
	"fmt"
	"math/big"

	"github.com/meshsig/frost/curve"
)

// dleqTag domain-separates DLEQ challenges used for complaint proofs.
const dleqTag = "DLEQ"

// DLEQProof is a non-interactive Chaum-Pedersen proof that two group
// elements share a discrete log, used by §4.1's complaint mechanism: a
// publisher P_A, claiming peer B's share is inconsistent, reveals the
// pairwise shared secret K_AB = x_A*P_B and proves that K_AB is the
// Diffie-Hellman of P_A = x_A*G and P_B, i.e. that
// log_G(P_A) == log_{P_B}(K_AB).
type DLEQProof struct {
	Commit1  *curve.Point // T1 = r*G
	Commit2  *curve.Point // T2 = r*P_B
	Response *big.Int     // s = r + c*x_A
}

// ProveDLEQ proves that secret is the discrete log of pubKey base G and the
// discrete log of sharedSecret base otherBase, i.e. pubKey = secret*G and
// sharedSecret = secret*otherBase.
func ProveDLEQ(
	contextLabel string,
	pubKey *curve.Point,
	otherBase *curve.Point,
	sharedSecret *curve.Point,
	secret *big.Int,
) (*DLEQProof, error) {
	r, err := curve.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("schnorr: sampling DLEQ nonce: %w", err)
	}

	t1 := curve.BaseMul(r)
	t2 := curve.Mul(otherBase, r)

	c := dleqChallenge(contextLabel, pubKey, otherBase, sharedSecret, t1, t2)

	s := new(big.Int).Mul(c, secret)
	s.Add(s, r)
	s.Mod(s, curve.Order())

	return &DLEQProof{Commit1: t1, Commit2: t2, Response: s}, nil
}

// VerifyDLEQ checks that proof demonstrates pubKey and sharedSecret share a
// discrete log relative to G and otherBase respectively.
func VerifyDLEQ(
	contextLabel string,
	pubKey *curve.Point,
	otherBase *curve.Point,
	sharedSecret *curve.Point,
	proof *DLEQProof,
) error {
	if proof == nil || proof.Commit1 == nil || proof.Commit2 == nil || proof.Response == nil {
		return fmt.Errorf("schnorr: DLEQ proof is incomplete")
	}
	for _, p := range []*curve.Point{pubKey, otherBase, sharedSecret, proof.Commit1, proof.Commit2} {
		if !curve.IsOnCurve(p) {
			return fmt.Errorf("schnorr: DLEQ proof references an invalid curve point")
		}
	}

	c := dleqChallenge(contextLabel, pubKey, otherBase, sharedSecret, proof.Commit1, proof.Commit2)

	lhs1 := curve.BaseMul(proof.Response)
	rhs1 := curve.Add(proof.Commit1, curve.Mul(pubKey, c))
	if !curve.Equal(lhs1, rhs1) {
		return fmt.Errorf("schnorr: DLEQ verification failed (base G check)")
	}

	lhs2 := curve.Mul(otherBase, proof.Response)
	rhs2 := curve.Add(proof.Commit2, curve.Mul(sharedSecret, c))
	if !curve.Equal(lhs2, rhs2) {
		return fmt.Errorf("schnorr: DLEQ verification failed (base P_B check)")
	}

	return nil
}

func dleqChallenge(
	contextLabel string,
	pubKey, otherBase, sharedSecret, t1, t2 *curve.Point,
) *big.Int {
	return HashToScalar(
		dleqTag,
		[]byte(contextLabel),
		curve.SerializePoint(pubKey),
		curve.SerializePoint(otherBase),
		curve.SerializePoint(sharedSecret),
		curve.SerializePoint(t1),
		curve.SerializePoint(t2),
	)
}
