// Package shamir implements the Shamir secret-sharing polynomial
// operations used by the DKG: sampling a random polynomial, evaluating it
// at participant indices, publishing Feldman commitments to its
// coefficients, verifying a received share against those commitments, and
// Lagrange interpolation at x=0.
//
// Grounded in the teacher's poly.go (GenPoly/CalculatePoly) and
// frost/participant.go's deriveInterpolatingValue, generalized from
// hard-coded int indices to curve.NodeID-scaled big.Int indices.
package shamir

import (
	"fmt"
	"math/big"

	"github.com/meshsig/frost/curve"
)

// Polynomial is f(x) = a_0 + a_1*x + ... + a_{t-1}*x^(t-1), represented as
// its coefficients in ascending order of degree. a_0 is the shared secret.
type Polynomial struct {
	Coefficients []*big.Int
}

// GeneratePolynomial samples a random polynomial of degree threshold-1 whose
// constant term is secret. threshold is t in the (t, n) scheme.
func GeneratePolynomial(secret *big.Int, threshold int) (*Polynomial, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("shamir: threshold must be at least 1, got %d", threshold)
	}

	coeffs := make([]*big.Int, threshold)
	coeffs[0] = new(big.Int).Mod(secret, curve.Order())

	for i := 1; i < threshold; i++ {
		a, err := curve.RandomScalar()
		if err != nil {
			return nil, fmt.Errorf("shamir: sampling coefficient %d: %w", i, err)
		}
		coeffs[i] = a
	}

	return &Polynomial{Coefficients: coeffs}, nil
}

// Evaluate computes f(x) mod q.
func (p *Polynomial) Evaluate(x *big.Int) *big.Int {
	order := curve.Order()
	result := big.NewInt(0)
	xPow := big.NewInt(1)

	for _, a := range p.Coefficients {
		term := new(big.Int).Mul(a, xPow)
		result.Add(result, term)
		result.Mod(result, order)

		xPow.Mul(xPow, x)
		xPow.Mod(xPow, order)
	}

	return result
}

// Commitments returns the Feldman commitments C_j = a_j*G to every
// coefficient of p, in the same order as p.Coefficients.
func (p *Polynomial) Commitments() []*curve.Point {
	commitments := make([]*curve.Point, len(p.Coefficients))
	for i, a := range p.Coefficients {
		commitments[i] = curve.BaseMul(a)
	}
	return commitments
}

// Zeroize overwrites every coefficient in place so the secret polynomial
// does not linger in memory after the session reaches DONE or ABORTED.
func (p *Polynomial) Zeroize() {
	for _, a := range p.Coefficients {
		if a != nil {
			a.SetInt64(0)
		}
	}
	p.Coefficients = nil
}

// EvaluateCommitment computes Σ_j x^j * C_j, the public value the
// evaluation of the committed polynomial at x must equal: s'*G ?=
// Σ_{j=0..t-1} x^j * C_j, as specified in §4.1.
func EvaluateCommitment(commitments []*curve.Point, x *big.Int) *curve.Point {
	order := curve.Order()
	result := curve.Identity()
	xPow := big.NewInt(1)

	for _, c := range commitments {
		result = curve.Add(result, curve.Mul(c, xPow))
		xPow = new(big.Int).Mod(new(big.Int).Mul(xPow, x), order)
	}

	return result
}

// VerifyShare reports whether share is a valid evaluation at x of the
// polynomial committed to by commitments: share*G ?= Σ x^j * C_j.
func VerifyShare(share *big.Int, x *big.Int, commitments []*curve.Point) bool {
	lhs := curve.BaseMul(share)
	rhs := EvaluateCommitment(commitments, x)
	return curve.Equal(lhs, rhs)
}

// LagrangeCoefficient computes λ_i, the Lagrange coefficient at x=0 for
// index xi within the participant index set indices, per §4.2 of [FROST]:
// λ_i = Π_{j != i} x_j / (x_j - x_i).
func LagrangeCoefficient(xi *big.Int, indices []*big.Int) (*big.Int, error) {
	order := curve.Order()
	num := big.NewInt(1)
	den := big.NewInt(1)

	found := false
	for _, xj := range indices {
		if xj.Cmp(xi) == 0 {
			found = true
			continue
		}
		num.Mul(num, xj)
		num.Mod(num, order)

		diff := new(big.Int).Sub(xj, xi)
		diff.Mod(diff, order)
		den.Mul(den, diff)
		den.Mod(den, order)
	}

	if !found {
		return nil, fmt.Errorf("shamir: index not present in the interpolation set")
	}
	if den.Sign() == 0 {
		return nil, fmt.Errorf("shamir: duplicate index in interpolation set")
	}

	denInv := new(big.Int).ModInverse(den, order)
	if denInv == nil {
		return nil, fmt.Errorf("shamir: denominator has no modular inverse")
	}

	result := new(big.Int).Mul(num, denInv)
	result.Mod(result, order)

	return result, nil
}

// ZeroizeScalar overwrites a secret scalar's internal representation.
func ZeroizeScalar(s *big.Int) {
	if s != nil {
		s.SetInt64(0)
	}
}
