package config

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/meshsig/frost/dkg"
)

// LongTermKey parses the node's own long-term identity keypair from
// PrivateKeyHex.
func (c *Config) LongTermKey() (*dkg.LongTermKey, error) {
	raw, err := hex.DecodeString(c.PrivateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("config: decoding private_key: %w", err)
	}
	priv := new(big.Int).SetBytes(raw)
	return dkg.LongTermKeyFromScalar(priv)
}
