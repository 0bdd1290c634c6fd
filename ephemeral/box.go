package ephemeral

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// box seals and opens payloads under a fixed 32-byte symmetric key using an
// AEAD cipher, matching §4.1's "payloads are sealed with an AEAD; nonces
// are random and prefixed". Grounded in the teacher's (undefined in the
// retrieved snapshot) box type referenced from symmetric_key.go, built here
// using the same encrypt/decrypt shape and drand/ecies.go's AEAD-sealing
// idiom.
type box struct {
	aead chacha20poly1305.AEAD
}

// newBox constructs a box from a 32-byte symmetric key, typically the
// output of a key derivation function such as HKDF-SHA256.
func newBox(key [32]byte) *box {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		// chacha20poly1305.New only fails for a key of the wrong length,
		// which cannot happen since key is a fixed-size array.
		panic(fmt.Sprintf("ephemeral: unexpected AEAD construction failure: %v", err))
	}
	return &box{aead: aead}
}

// encrypt seals plaintext, prefixing the ciphertext with a fresh random
// nonce.
func (b *box) encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("ephemeral: generating nonce: %w", err)
	}

	sealed := b.aead.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

// decrypt opens a ciphertext produced by encrypt.
func (b *box) decrypt(ciphertext []byte) ([]byte, error) {
	nonceSize := b.aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("symmetric key decryption failed")
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := b.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("symmetric key decryption failed")
	}
	return plaintext, nil
}
