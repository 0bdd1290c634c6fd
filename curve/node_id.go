package curve

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// NodeID is a self-certifying 32-byte participant identifier derived from a
// long-term public key. It doubles as the integer index used for Shamir
// shares and Lagrange interpolation, per the protocol's data model: "serves
// as scalar index when interpreted as integer mod curve order".
type NodeID [32]byte

// NodeIDFromPublicKey derives the self-certifying identifier for a long-term
// public key by hashing its compressed encoding.
func NodeIDFromPublicKey(p *Point) NodeID {
	return sha256.Sum256(SerializePoint(p))
}

// String returns the lower-case hex encoding of the identifier.
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler so NodeID can be used
// directly as a JSON object/map key and value.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("curve: decoding node id: %w", err)
	}
	if len(b) != len(id) {
		return fmt.Errorf("curve: node id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return nil
}

// Scalar interprets the identifier as a big-endian integer reduced modulo
// the curve order, resolving the spec's Open Question in favor of a single,
// fixed Lagrange-index convention: "node index = integer interpretation of
// the identifier, big-endian, reduced mod q".
func (id NodeID) Scalar() *big.Int {
	return ReduceScalar(id[:])
}
