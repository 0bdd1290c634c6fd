package curve

import "testing"

func TestSerializePointRoundTrip(t *testing.T) {
	k, err := RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	p := BaseMul(k)

	encoded := SerializePoint(p)
	if len(encoded) != SerializedPointLength {
		t.Fatalf("expected encoded length %d, got %d", SerializedPointLength, len(encoded))
	}

	decoded, err := DeserializePoint(encoded)
	if err != nil {
		t.Fatalf("DeserializePoint: %v", err)
	}

	if !Equal(p, decoded) {
		t.Fatalf("round-tripped point does not match original")
	}
}

func TestDeserializePointRejectsBadPrefix(t *testing.T) {
	k, _ := RandomScalar()
	encoded := SerializePoint(BaseMul(k))
	encoded[0] = 0x04

	if _, err := DeserializePoint(encoded); err == nil {
		t.Fatal("expected error for invalid prefix byte")
	}
}

func TestAddSubInverse(t *testing.T) {
	a, _ := RandomScalar()
	b, _ := RandomScalar()

	A := BaseMul(a)
	B := BaseMul(b)

	sum := Add(A, B)
	back := Sub(sum, B)

	if !Equal(back, A) {
		t.Fatal("Sub(Add(A,B),B) != A")
	}
}

func TestNodeIDScalarDeterministic(t *testing.T) {
	k, _ := RandomScalar()
	p := BaseMul(k)

	id1 := NodeIDFromPublicKey(p)
	id2 := NodeIDFromPublicKey(p)

	if id1 != id2 {
		t.Fatal("NodeIDFromPublicKey is not deterministic")
	}

	if id1.Scalar().Sign() == 0 {
		t.Fatal("node id scalar should not be zero with overwhelming probability")
	}
}
