package schnorr

import (
	"math/big"
	"testing"

	"github.com/meshsig/frost/curve"
)

func TestPoP_RoundTrip(t *testing.T) {
	secret, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("sampling secret: %v", err)
	}
	pub := curve.BaseMul(secret)

	proof, err := Sign("node-1", "session-abc", pub, secret)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := VerifyPoP("node-1", "session-abc", pub, proof); err != nil {
		t.Fatalf("expected valid PoP to verify, got: %v", err)
	}
}

func TestPoP_RejectsWrongLabel(t *testing.T) {
	secret, _ := curve.RandomScalar()
	pub := curve.BaseMul(secret)

	proof, err := Sign("node-1", "session-abc", pub, secret)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := VerifyPoP("node-2", "session-abc", pub, proof); err == nil {
		t.Fatal("expected verification to fail for mismatched signer label")
	}
}

func TestPoP_RejectsTamperedResponse(t *testing.T) {
	secret, _ := curve.RandomScalar()
	pub := curve.BaseMul(secret)

	proof, err := Sign("node-1", "session-abc", pub, secret)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	proof.Response.Add(proof.Response, big.NewInt(1))

	if err := VerifyPoP("node-1", "session-abc", pub, proof); err == nil {
		t.Fatal("expected verification to fail for tampered response scalar")
	}
}
