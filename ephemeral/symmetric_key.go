package ephemeral

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/meshsig/frost/curve"
	"golang.org/x/crypto/hkdf"
)

// pairwiseKeyInfo is the fixed HKDF info label required by §4.1: "A
// symmetric key is derived via HKDF-SHA256 with an empty salt and a fixed
// info label."
const pairwiseKeyInfo = "frost/pairwise-encryption-key/v1"

// SymmetricEcdhKey is a symmetric key derived from an Elliptic Curve
// Diffie-Hellman exchange, used to encrypt one participant's DKG share for
// another.
type SymmetricEcdhKey struct {
	box *box
}

// Ecdh performs the Diffie-Hellman exchange K_AB = x_A*P_B between a
// private and a (remote) public key, then derives a symmetric key from the
// shared point via HKDF-SHA256 with an empty salt, matching §4.1. The
// returned SymmetricEcdhKey can be used for encryption and decryption.
func (pk *PrivateKey) Ecdh(publicKey *PublicKey) (*SymmetricEcdhKey, error) {
	shared := curve.Mul(publicKey.Point(), pk.Scalar())
	return deriveSymmetricKey(curve.EncodeXOnly(shared))
}

// DeriveSymmetricKeyFromSharedPoint reconstructs the pairwise symmetric key
// from an already-computed ECDH shared point, as used during complaint
// resolution: a third party is handed the revealed shared secret point
// K_AB directly (after verifying its DLEQ proof) rather than either
// party's private key.
func DeriveSymmetricKeyFromSharedPoint(shared *curve.Point) (*SymmetricEcdhKey, error) {
	return deriveSymmetricKey(curve.EncodeXOnly(shared))
}

func deriveSymmetricKey(sharedSecretMaterial []byte) (*SymmetricEcdhKey, error) {
	var key [32]byte
	reader := hkdf.New(sha256.New, sharedSecretMaterial, nil, []byte(pairwiseKeyInfo))
	if _, err := io.ReadFull(reader, key[:]); err != nil {
		return nil, fmt.Errorf("ephemeral: deriving pairwise key: %w", err)
	}

	return &SymmetricEcdhKey{box: newBox(key)}, nil
}

// Encrypt plaintext.
func (sek *SymmetricEcdhKey) Encrypt(plaintext []byte) ([]byte, error) {
	return sek.box.encrypt(plaintext)
}

// Decrypt ciphertext.
func (sek *SymmetricEcdhKey) Decrypt(ciphertext []byte) (plaintext []byte, err error) {
	return sek.box.decrypt(ciphertext)
}
