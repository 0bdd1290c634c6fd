package ephemeral

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/meshsig/frost/curve"
)

// PrivateKey is an ephemeral elliptic curve private key used only to derive
// a pairwise symmetric key via ECDH; it is not a long-term identity key.
type PrivateKey btcec.PrivateKey

// PublicKey is the public counterpart of PrivateKey.
type PublicKey btcec.PublicKey

// KeyPair is an ephemeral (PrivateKey, PublicKey) pair.
type KeyPair struct {
	PrivateKey *PrivateKey
	PublicKey  *PublicKey
}

// GenerateKeyPair creates a fresh ephemeral key pair.
func GenerateKeyPair() (*KeyPair, error) {
	key, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("ephemeral: generating key pair: %w", err)
	}

	return &KeyPair{
		PrivateKey: (*PrivateKey)(key),
		PublicKey:  (*PublicKey)(key.PubKey()),
	}, nil
}

// Marshal returns the compressed encoding of the public key.
func (pk *PublicKey) Marshal() []byte {
	return (*btcec.PublicKey)(pk).SerializeCompressed()
}

// Point returns the public key as a curve.Point, for use when a
// complaint proof needs to reason about the pairwise ECDH exchange
// directly rather than through the derived symmetric key.
func (pk *PublicKey) Point() *curve.Point {
	return &curve.Point{X: pk.X, Y: pk.Y}
}

// Scalar returns the private key as a big.Int.
func (pk *PrivateKey) Scalar() *big.Int {
	return new(big.Int).Set((*btcec.PrivateKey)(pk).D)
}

// UnmarshalPublicKey parses a compressed public key encoding produced by
// Marshal.
func UnmarshalPublicKey(b []byte) (*PublicKey, error) {
	pub, err := btcec.ParsePubKey(b, btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("ephemeral: parsing public key: %w", err)
	}
	return (*PublicKey)(pub), nil
}
