// Package curve wraps secp256k1 scalar and point arithmetic used by every
// layer of the signing protocol. It is the only package allowed to touch
// curve internals directly; everything above it works with *big.Int
// scalars and *Point values.
package curve

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
)

// secp256k1 is the curve used across the protocol, matching BIP-340.
var secp256k1 = btcec.S256()

// Order returns the order q of the secp256k1 group.
func Order() *big.Int {
	return new(big.Int).Set(secp256k1.N)
}

// FieldPrime returns the prime p of the secp256k1 base field.
func FieldPrime() *big.Int {
	return new(big.Int).Set(secp256k1.P)
}

// Point is a point on the secp256k1 curve. The zero value is not a valid
// point; use Identity() for the group identity.
type Point struct {
	X *big.Int
	Y *big.Int
}

// Identity returns the point at infinity, represented conventionally as
// (0, 0) since that pair never lies on secp256k1.
func Identity() *Point {
	return &Point{big.NewInt(0), big.NewInt(0)}
}

// IsIdentity reports whether p is the group identity.
func (p *Point) IsIdentity() bool {
	return p.X.Sign() == 0 && p.Y.Sign() == 0
}

// IsOnCurve reports whether p is a valid, non-identity point on the curve.
func IsOnCurve(p *Point) bool {
	if p == nil || p.X == nil || p.Y == nil {
		return false
	}
	if p.IsIdentity() {
		return false
	}
	return secp256k1.IsOnCurve(p.X, p.Y)
}

// HasEvenY reports whether the point's Y coordinate is even, as required by
// BIP-340 lifted x-only public keys.
func (p *Point) HasEvenY() bool {
	return p.Y.Bit(0) == 0
}

// BaseMul returns k*G, where G is the group generator.
func BaseMul(k *big.Int) *Point {
	kMod := new(big.Int).Mod(k, secp256k1.N)
	x, y := secp256k1.ScalarBaseMult(kMod.Bytes())
	return &Point{x, y}
}

// Mul returns k*P.
func Mul(p *Point, k *big.Int) *Point {
	kMod := new(big.Int).Mod(k, secp256k1.N)
	x, y := secp256k1.ScalarMult(p.X, p.Y, kMod.Bytes())
	return &Point{x, y}
}

// Add returns a+b.
func Add(a, b *Point) *Point {
	x, y := secp256k1.Add(a.X, a.Y, b.X, b.Y)
	return &Point{x, y}
}

// Sub returns a-b.
func Sub(a, b *Point) *Point {
	negB := &Point{b.X, new(big.Int).Sub(secp256k1.P, b.Y)}
	return Add(a, negB)
}

// Neg returns -p.
func Neg(p *Point) *Point {
	return &Point{p.X, new(big.Int).Sub(secp256k1.P, p.Y)}
}

// RandomScalar samples a uniformly random scalar in [1, q).
func RandomScalar() (*big.Int, error) {
	for {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("curve: reading random scalar: %w", err)
		}
		s := new(big.Int).SetBytes(b)
		if s.Sign() != 0 && s.Cmp(secp256k1.N) < 0 {
			return s, nil
		}
	}
}

// ReduceScalar reduces b, interpreted big-endian, modulo the group order.
func ReduceScalar(b []byte) *big.Int {
	s := new(big.Int).SetBytes(b)
	return s.Mod(s, secp256k1.N)
}

// SerializedPointLength is the length in bytes of a compressed point
// encoding: one parity byte followed by the 32-byte X coordinate.
const SerializedPointLength = 33

// SerializePoint encodes p as a 33-byte compressed point: a leading parity
// byte (0x02 for even Y, 0x03 for odd Y) followed by the big-endian X
// coordinate, as required by §6 of the protocol ("fixed-length compressed
// encodings").
func SerializePoint(p *Point) []byte {
	out := make([]byte, SerializedPointLength)
	if p.HasEvenY() {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	xb := make([]byte, 32)
	p.X.FillBytes(xb)
	copy(out[1:], xb)
	return out
}

// DeserializePoint decodes a compressed point produced by SerializePoint. It
// returns an error if the encoding is malformed or the recovered point is
// not a valid non-identity point on the curve.
func DeserializePoint(b []byte) (*Point, error) {
	if len(b) != SerializedPointLength {
		return nil, fmt.Errorf("curve: invalid point encoding length %d", len(b))
	}

	prefix := b[0]
	if prefix != 0x02 && prefix != 0x03 {
		return nil, fmt.Errorf("curve: invalid point encoding prefix 0x%02x", prefix)
	}

	x := new(big.Int).SetBytes(b[1:])
	if x.Cmp(secp256k1.P) >= 0 {
		return nil, fmt.Errorf("curve: x coordinate exceeds field size")
	}

	y, err := liftY(x, prefix == 0x03)
	if err != nil {
		return nil, err
	}

	p := &Point{x, y}
	if !IsOnCurve(p) {
		return nil, fmt.Errorf("curve: decoded point is not on the curve")
	}
	return p, nil
}

// liftY recovers the Y coordinate for an X coordinate on secp256k1
// (y^2 = x^3 + 7), selecting the odd or even root as requested.
func liftY(x *big.Int, odd bool) (*big.Int, error) {
	p := secp256k1.P

	c := new(big.Int).Exp(x, big.NewInt(3), p)
	c.Add(c, big.NewInt(7))
	c.Mod(c, p)

	e := new(big.Int).Add(p, big.NewInt(1))
	e.Div(e, big.NewInt(4))
	y := new(big.Int).Exp(c, e, p)

	y2 := new(big.Int).Exp(y, big.NewInt(2), p)
	if c.Cmp(y2) != 0 {
		return nil, fmt.Errorf("curve: no point on curve for given x")
	}

	if (y.Bit(0) != 0) != odd {
		y.Sub(p, y)
	}
	return y, nil
}

// LiftXEven implements BIP-340's lift_x(x): the unique point with the given
// X coordinate and even Y, used to interpret x-only public keys.
func LiftXEven(x *big.Int) (*Point, error) {
	if x.Cmp(secp256k1.P) >= 0 {
		return nil, fmt.Errorf("curve: x exceeds field size")
	}
	y, err := liftY(x, false)
	if err != nil {
		return nil, err
	}
	return &Point{x, y}, nil
}

// EncodeXOnly returns the 32-byte big-endian encoding of p's X coordinate,
// as used by BIP-340 challenge hashing.
func EncodeXOnly(p *Point) []byte {
	xb := make([]byte, 32)
	p.X.FillBytes(xb)
	return xb
}

// Equal reports whether a and b represent the same point.
func Equal(a, b *Point) bool {
	return a.X.Cmp(b.X) == 0 && a.Y.Cmp(b.Y) == 0
}
