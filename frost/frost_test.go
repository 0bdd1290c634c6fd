package frost

import (
	"math/big"
	"testing"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/shamir"
)

// testGroup builds a (threshold, n) trusted-dealer group for testing the
// signing pipeline in isolation from the dkg package.
type testGroup struct {
	groupPublicKey *curve.Point
	shares         map[curve.NodeID]*KeyShare
	order          []curve.NodeID
}

func newTestGroup(t *testing.T, threshold, n int) *testGroup {
	t.Helper()

	secret, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	poly, err := shamir.GeneratePolynomial(secret, threshold)
	if err != nil {
		t.Fatalf("GeneratePolynomial: %v", err)
	}
	groupPublicKey := curve.BaseMul(secret)

	ids := make([]curve.NodeID, n)
	for i := range ids {
		pk, err := curve.RandomScalar()
		if err != nil {
			t.Fatalf("RandomScalar: %v", err)
		}
		ids[i] = curve.NodeIDFromPublicKey(curve.BaseMul(pk))
	}

	shares := make(map[curve.NodeID]*KeyShare, n)
	for _, id := range ids {
		x := id.Scalar()
		s := poly.Evaluate(x)
		shares[id] = &KeyShare{
			ID:             id,
			Secret:         s,
			PublicKey:      curve.BaseMul(s),
			GroupPublicKey: groupPublicKey,
			Threshold:      threshold,
		}
	}

	return &testGroup{groupPublicKey: groupPublicKey, shares: shares, order: ids}
}

func TestSigningRoundTrip(t *testing.T) {
	group := newTestGroup(t, 3, 5)
	signers := group.order[:3]
	message := []byte("settle 2 BTC to bc1q...")

	nonces := make(map[curve.NodeID]*NoncePair, len(signers))
	commitments := make([]*NonceCommitment, 0, len(signers))
	for _, id := range signers {
		nonce, commitment, err := GenerateNoncePair(group.shares[id].Secret)
		if err != nil {
			t.Fatalf("GenerateNoncePair: %v", err)
		}
		commitment.ID = id
		nonces[id] = nonce
		commitments = append(commitments, commitment)
	}

	shares := make(map[curve.NodeID]*big.Int, len(signers))
	for _, id := range signers {
		z, err := PartialSign(group.shares[id], nonces[id], message, commitments)
		if err != nil {
			t.Fatalf("PartialSign(%s): %v", id, err)
		}
		if err := VerifyPartialSignature(id, group.shares[id].PublicKey, group.groupPublicKey, message, commitments, z); err != nil {
			t.Fatalf("VerifyPartialSignature(%s): %v", id, err)
		}
		shares[id] = z
		nonces[id].Zeroize()
	}

	sig, err := Aggregate(group.groupPublicKey, message, commitments, shares)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if err := schnorr.Verify(sig, group.groupPublicKey, message); err != nil {
		t.Fatalf("final signature does not verify: %v", err)
	}
}

func TestVerifyPartialSignatureRejectsTamperedShare(t *testing.T) {
	group := newTestGroup(t, 2, 3)
	signers := group.order[:2]
	message := []byte("message")

	commitments := make([]*NonceCommitment, 0, len(signers))
	nonces := make(map[curve.NodeID]*NoncePair, len(signers))
	for _, id := range signers {
		nonce, commitment, err := GenerateNoncePair(group.shares[id].Secret)
		if err != nil {
			t.Fatalf("GenerateNoncePair: %v", err)
		}
		commitment.ID = id
		nonces[id] = nonce
		commitments = append(commitments, commitment)
	}

	id := signers[0]
	z, err := PartialSign(group.shares[id], nonces[id], message, commitments)
	if err != nil {
		t.Fatalf("PartialSign: %v", err)
	}
	tampered := new(big.Int).Add(z, big.NewInt(1))

	if err := VerifyPartialSignature(id, group.shares[id].PublicKey, group.groupPublicKey, message, commitments, tampered); err == nil {
		t.Fatal("expected tampered signature share to be rejected")
	}
}

func TestAggregateRejectsMissingShare(t *testing.T) {
	group := newTestGroup(t, 2, 3)
	signers := group.order[:2]
	message := []byte("message")

	commitments := make([]*NonceCommitment, 0, len(signers))
	for _, id := range signers {
		_, commitment, err := GenerateNoncePair(group.shares[id].Secret)
		if err != nil {
			t.Fatalf("GenerateNoncePair: %v", err)
		}
		commitment.ID = id
		commitments = append(commitments, commitment)
	}

	shares := map[curve.NodeID]*big.Int{signers[0]: big.NewInt(1)}
	if _, err := Aggregate(group.groupPublicKey, message, commitments, shares); err == nil {
		t.Fatal("expected Aggregate to reject an incomplete set of signature shares")
	}
}
