package schnorr

import (
	"math/big"
	"testing"

	"github.com/meshsig/frost/curve"
)

func TestDLEQ_RoundTrip(t *testing.T) {
	xA, _ := curve.RandomScalar()
	pubA := curve.BaseMul(xA)

	xB, _ := curve.RandomScalar()
	pubB := curve.BaseMul(xB)

	// sharedSecret = xA * pubB == xB * pubA, the ECDH shared point.
	sharedSecret := curve.Mul(pubB, xA)

	proof, err := ProveDLEQ("complaint", pubA, pubB, sharedSecret, xA)
	if err != nil {
		t.Fatalf("ProveDLEQ: %v", err)
	}

	if err := VerifyDLEQ("complaint", pubA, pubB, sharedSecret, proof); err != nil {
		t.Fatalf("expected valid DLEQ proof to verify, got: %v", err)
	}
}

func TestDLEQ_RejectsMismatchedSharedSecret(t *testing.T) {
	xA, _ := curve.RandomScalar()
	pubA := curve.BaseMul(xA)

	xB, _ := curve.RandomScalar()
	pubB := curve.BaseMul(xB)

	sharedSecret := curve.Mul(pubB, xA)

	proof, err := ProveDLEQ("complaint", pubA, pubB, sharedSecret, xA)
	if err != nil {
		t.Fatalf("ProveDLEQ: %v", err)
	}

	wrongSecret := curve.Mul(pubB, big.NewInt(42))
	if err := VerifyDLEQ("complaint", pubA, pubB, wrongSecret, proof); err == nil {
		t.Fatal("expected verification to fail for mismatched shared secret")
	}
}
