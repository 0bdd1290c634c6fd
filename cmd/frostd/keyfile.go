package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meshsig/frost/coordinator"
	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/wire"
)

// keyFile is the on-disk, hex-encoded form of a coordinator.KeyShareDescriptor
// the dkg subcommand writes and the sign subcommand reads back, using the
// same wire.HexPoint encoding the node/coordinator wire protocol uses.
type keyFile struct {
	DkgID          string                  `json:"dkg_id"`
	GroupPublicKey wire.HexPoint           `json:"group_public_key"`
	PublicShares   map[string]wire.HexPoint `json:"public_shares"`
	Party          []string                `json:"party"`
	Threshold      int                     `json:"threshold"`
}

func writeKeyFile(path string, key *coordinator.KeyShareDescriptor) error {
	shares := make(map[string]wire.HexPoint, len(key.PublicShares))
	for id, p := range key.PublicShares {
		shares[id.String()] = wire.Point(p)
	}
	party := make([]string, len(key.Party))
	for i, id := range key.Party {
		party[i] = id.String()
	}

	kf := keyFile{
		DkgID:          key.DkgID,
		GroupPublicKey: wire.Point(key.GroupPublicKey),
		PublicShares:   shares,
		Party:          party,
		Threshold:      key.Threshold,
	}

	raw, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding key file: %w", err)
	}
	if path == "" {
		_, err := os.Stdout.Write(append(raw, '\n'))
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func readKeyFile(path string) (*coordinator.KeyShareDescriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(raw, &kf); err != nil {
		return nil, fmt.Errorf("decoding key file: %w", err)
	}

	shares := make(map[curve.NodeID]*curve.Point, len(kf.PublicShares))
	for idStr, p := range kf.PublicShares {
		var id curve.NodeID
		if err := id.UnmarshalText([]byte(idStr)); err != nil {
			return nil, fmt.Errorf("key file: %w", err)
		}
		shares[id] = p.Point
	}
	party := make([]curve.NodeID, len(kf.Party))
	for i, idStr := range kf.Party {
		if err := party[i].UnmarshalText([]byte(idStr)); err != nil {
			return nil, fmt.Errorf("key file: %w", err)
		}
	}

	return &coordinator.KeyShareDescriptor{
		DkgID:          kf.DkgID,
		GroupPublicKey: kf.GroupPublicKey.Point,
		PublicShares:   shares,
		Party:          party,
		Threshold:      kf.Threshold,
	}, nil
}
