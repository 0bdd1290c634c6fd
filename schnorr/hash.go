// Package schnorr implements BIP-340 challenge derivation and verification, the
// proof-of-possession scheme used during DKG round one, and the DLEQ
// (Chaum-Pedersen) proof used to resolve complaints. All three share the
// same tagged-hash construction, grounded in the teacher's
// frost/bip340.go hashToScalar/hash helpers.
package schnorr

import (
	"crypto/sha256"
	"math/big"

	"github.com/meshsig/frost/curve"
)

// TaggedHash implements the BIP-340 tagged hash:
// SHA256(SHA256(tag) || SHA256(tag) || msg).
func TaggedHash(tag string, msg ...[]byte) [32]byte {
	tagHash := sha256.Sum256([]byte(tag))
	h := sha256.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	for _, m := range msg {
		h.Write(m)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HashToScalar computes the tagged hash of msg and reduces it modulo the
// curve order. As BIP-340 notes, this reduction is only safe because
// secp256k1's order is close enough to 2^256 that the bias is negligible.
func HashToScalar(tag string, msg ...[]byte) *big.Int {
	h := TaggedHash(tag, msg...)
	return curve.ReduceScalar(h[:])
}
