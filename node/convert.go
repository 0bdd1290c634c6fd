package node

import (
	"fmt"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/dkg"
	"github.com/meshsig/frost/ephemeral"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/wire"
)

func parseNodeID(s string) (curve.NodeID, error) {
	var id curve.NodeID
	if err := id.UnmarshalText([]byte(s)); err != nil {
		return id, fmt.Errorf("node: parsing node id %q: %w", s, err)
	}
	return id, nil
}

func parsePartyList(ids []string) ([]curve.NodeID, error) {
	party := make([]curve.NodeID, len(ids))
	for i, s := range ids {
		id, err := parseNodeID(s)
		if err != nil {
			return nil, err
		}
		party[i] = id
	}
	return party, nil
}

func popToWire(p *schnorr.PoP) wire.PoP {
	return wire.PoP{Nonce: wire.Point(p.Nonce), Response: wire.Scalar(p.Response)}
}

func popFromWire(p wire.PoP) *schnorr.PoP {
	return &schnorr.PoP{Nonce: p.Nonce.Point, Response: p.Response.Int}
}

func dleqToWire(p *schnorr.DLEQProof) wire.DLEQProof {
	return wire.DLEQProof{
		Commit1:  wire.Point(p.Commit1),
		Commit2:  wire.Point(p.Commit2),
		Response: wire.Scalar(p.Response),
	}
}

func dleqFromWire(p wire.DLEQProof) *schnorr.DLEQProof {
	return &schnorr.DLEQProof{
		Commit1:  p.Commit1.Point,
		Commit2:  p.Commit2.Point,
		Response: p.Response.Int,
	}
}

func broadcastToWire(b *dkg.Round1Broadcast) wire.Round1Broadcast {
	commitments := make([]wire.HexPoint, len(b.Commitments))
	for i, c := range b.Commitments {
		commitments[i] = wire.Point(c)
	}
	return wire.Round1Broadcast{
		SenderID:           b.SenderID.String(),
		Commitments:        commitments,
		LongTermKeyPoP:     popToWire(b.LongTermKeyPoP),
		ConstantTermPoP:    popToWire(b.ConstantTermPoP),
		EphemeralPublicKey: b.EphemeralPublicKey.Marshal(),
	}
}

func broadcastFromWire(b wire.Round1Broadcast) (*dkg.Round1Broadcast, error) {
	senderID, err := parseNodeID(b.SenderID)
	if err != nil {
		return nil, err
	}
	commitments := make([]*curve.Point, len(b.Commitments))
	for i, c := range b.Commitments {
		if c.Point == nil {
			return nil, fmt.Errorf("node: commitment %d is missing", i)
		}
		commitments[i] = c.Point
	}
	ephemeralPub, err := ephemeral.UnmarshalPublicKey(b.EphemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("node: parsing ephemeral public key from %s: %w", senderID, err)
	}
	return &dkg.Round1Broadcast{
		SenderID:           senderID,
		Commitments:        commitments,
		LongTermKeyPoP:     popFromWire(b.LongTermKeyPoP),
		ConstantTermPoP:    popFromWire(b.ConstantTermPoP),
		EphemeralPublicKey: ephemeralPub,
	}, nil
}
