package dkg

import (
	"fmt"
	"math/big"

	"github.com/meshsig/frost/curve"
)

// LongTermKey is a node's durable identity keypair. Its public half is
// the preimage used to derive the node's self-certifying NodeID, and its
// private half signs the proofs of possession exchanged in Round One.
// Unlike the per-session ephemeral.KeyPair, a LongTermKey is never
// rotated mid-party.
type LongTermKey struct {
	Private *big.Int
	Public  *curve.Point
}

// NodeID returns the self-certifying identifier derived from the key's
// public half.
func (k *LongTermKey) NodeID() curve.NodeID {
	return curve.NodeIDFromPublicKey(k.Public)
}

// GenerateLongTermKey samples a fresh long-term identity keypair.
func GenerateLongTermKey() (*LongTermKey, error) {
	priv, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	return &LongTermKey{Private: priv, Public: curve.BaseMul(priv)}, nil
}

// LongTermKeyFromScalar reconstructs a LongTermKey from a previously
// generated private scalar, the way a node reloads its identity from a
// persisted config file across restarts.
func LongTermKeyFromScalar(priv *big.Int) (*LongTermKey, error) {
	if priv == nil || priv.Sign() <= 0 || priv.Cmp(curve.Order()) >= 0 {
		return nil, fmt.Errorf("dkg: private key out of range")
	}
	return &LongTermKey{Private: priv, Public: curve.BaseMul(priv)}, nil
}
