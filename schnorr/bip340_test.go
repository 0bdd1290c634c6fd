package schnorr

import (
	"math/big"
	"testing"

	"github.com/meshsig/frost/curve"
)

// signSinglePartyForTest performs a plain (non-threshold) BIP-340 signature,
// exercising the same Challenge/Verify machinery the FROST aggregation path
// uses, without depending on the frost package.
func signSinglePartyForTest(t *testing.T, secret *big.Int, message []byte) (*Signature, *curve.Point) {
	t.Helper()

	pub := curve.BaseMul(secret)
	if !pub.HasEvenY() {
		secret = new(big.Int).Sub(curve.Order(), secret)
		pub = curve.BaseMul(secret)
	}

	k, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("sampling nonce: %v", err)
	}
	r := curve.BaseMul(k)
	if !r.HasEvenY() {
		k.Sub(curve.Order(), k)
		r = curve.BaseMul(k)
	}

	e := Challenge(r, pub, message)

	z := new(big.Int).Mul(e, secret)
	z.Add(z, k)
	z.Mod(z, curve.Order())

	return &Signature{R: r, Z: z}, pub
}

func TestBIP340_SignVerifyRoundTrip(t *testing.T) {
	secret, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	message := []byte("hello")

	sig, pub := signSinglePartyForTest(t, secret, message)

	if err := Verify(sig, pub, message); err != nil {
		t.Fatalf("expected signature to verify, got: %v", err)
	}
}

func TestBIP340_RejectsWrongMessage(t *testing.T) {
	secret, _ := curve.RandomScalar()
	sig, pub := signSinglePartyForTest(t, secret, []byte("hello"))

	if err := Verify(sig, pub, []byte("goodbye")); err == nil {
		t.Fatal("expected verification to fail for a different message")
	}
}

func TestBIP340_RejectsOutOfRangeScalar(t *testing.T) {
	secret, _ := curve.RandomScalar()
	sig, pub := signSinglePartyForTest(t, secret, []byte("hello"))

	sig.Z = new(big.Int).Add(curve.Order(), big.NewInt(1))

	if err := Verify(sig, pub, []byte("hello")); err == nil {
		t.Fatal("expected verification to fail for out-of-range z")
	}
}
