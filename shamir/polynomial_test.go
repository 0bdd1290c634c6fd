package shamir

import (
	"math/big"
	"testing"

	"github.com/meshsig/frost/curve"
)

func TestGeneratePolynomial_ConstantTermIsSecret(t *testing.T) {
	secret, _ := curve.RandomScalar()

	poly, err := GeneratePolynomial(secret, 3)
	if err != nil {
		t.Fatalf("GeneratePolynomial: %v", err)
	}

	if poly.Evaluate(big.NewInt(0)).Cmp(new(big.Int).Mod(secret, curve.Order())) != 0 {
		t.Fatal("f(0) must equal the secret")
	}
}

func TestVerifyShare(t *testing.T) {
	secret, _ := curve.RandomScalar()
	poly, err := GeneratePolynomial(secret, 3)
	if err != nil {
		t.Fatalf("GeneratePolynomial: %v", err)
	}
	commitments := poly.Commitments()

	x := big.NewInt(7)
	share := poly.Evaluate(x)

	if !VerifyShare(share, x, commitments) {
		t.Fatal("expected valid share to verify against commitments")
	}

	tampered := new(big.Int).Add(share, big.NewInt(1))
	if VerifyShare(tampered, x, commitments) {
		t.Fatal("expected tampered share to fail verification")
	}
}

func TestLagrangeInterpolationRecoversSecret(t *testing.T) {
	secret, _ := curve.RandomScalar()
	threshold := 3
	poly, err := GeneratePolynomial(secret, threshold)
	if err != nil {
		t.Fatalf("GeneratePolynomial: %v", err)
	}

	indices := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}
	shares := make([]*big.Int, len(indices))
	for i, x := range indices {
		shares[i] = poly.Evaluate(x)
	}

	recovered := big.NewInt(0)
	for i, xi := range indices {
		lambda, err := LagrangeCoefficient(xi, indices)
		if err != nil {
			t.Fatalf("LagrangeCoefficient: %v", err)
		}
		term := new(big.Int).Mul(lambda, shares[i])
		recovered.Add(recovered, term)
		recovered.Mod(recovered, curve.Order())
	}

	if recovered.Cmp(new(big.Int).Mod(secret, curve.Order())) != 0 {
		t.Fatalf("interpolated secret does not match: got %v want %v", recovered, secret)
	}
}

func TestLagrangeCoefficient_IndexNotInSet(t *testing.T) {
	indices := []*big.Int{big.NewInt(1), big.NewInt(2)}
	if _, err := LagrangeCoefficient(big.NewInt(3), indices); err == nil {
		t.Fatal("expected error when index is not a member of the set")
	}
}
