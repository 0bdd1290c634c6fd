package frost

import (
	"math/big"

	"github.com/meshsig/frost/curve"
)

// KeyShare is a single signer's long-term share of a FROST group signing
// key, as produced by the dkg package at the end of a successful key
// generation run.
type KeyShare struct {
	ID             curve.NodeID
	Secret         *big.Int
	PublicKey      *curve.Point // this signer's share of the group public key, secret*G
	GroupPublicKey *curve.Point
	Threshold      int

	// PublicShares maps every party's NodeID, this signer's included, to its public share
	// Y_i = s_i*G, letting the coordinator verify a partial signature from
	// any signer without an extra round trip.
	PublicShares map[curve.NodeID]*curve.Point
}

// Zeroize overwrites the secret share in place. Callers should call this
// only once the key share is permanently retired (e.g. group disbanded),
// not after ordinary use, since a KeyShare is reused across many signing
// sessions.
func (k *KeyShare) Zeroize() {
	if k == nil || k.Secret == nil {
		return
	}
	k.Secret.SetInt64(0)
}
