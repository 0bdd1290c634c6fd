package config

import (
	"encoding/hex"
	"fmt"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/transport"
)

// Candidates parses every configured peer's node id, re-deriving it
// from the peer's public key rather than trusting the file's node_id
// field blindly, and returns them in file order.
func (c *Config) Candidates() ([]curve.NodeID, error) {
	ids := make([]curve.NodeID, len(c.Peers))
	for i, p := range c.Peers {
		pub, err := decodePublicKey(p.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("config: peer %d: %w", i, err)
		}
		derived := curve.NodeIDFromPublicKey(pub)
		if p.NodeID != "" && p.NodeID != derived.String() {
			return nil, fmt.Errorf("config: peer %d: node_id %q does not match the public key's derived id %q", i, p.NodeID, derived.String())
		}
		ids[i] = derived
	}
	return ids, nil
}

// PeerInfos returns every configured peer's directory entry, keyed by
// node id, for seeding a transport.NodeDirectory that doesn't already
// learn peers dynamically (transport/local's registry does, via Join;
// this is for a future real transport's static bootstrap list).
func (c *Config) PeerInfos() (map[curve.NodeID]transport.PeerInfo, error) {
	out := make(map[curve.NodeID]transport.PeerInfo, len(c.Peers))
	for i, p := range c.Peers {
		pub, err := decodePublicKey(p.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("config: peer %d: %w", i, err)
		}
		id := curve.NodeIDFromPublicKey(pub)
		out[id] = transport.PeerInfo{Address: p.Address, LongTermPubKey: pub}
	}
	return out, nil
}

func decodePublicKey(s string) (*curve.Point, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding public_key: %w", err)
	}
	return curve.DeserializePoint(raw)
}
