package coordinator

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
		return id, fmt.Errorf("coordinator: parsing node id %q: %w", s, err)
	}
	return id, nil
}

func dleqFromWire(p wire.DLEQProof) *schnorr.DLEQProof {
	return &schnorr.DLEQProof{
		Commit1:  p.Commit1.Point,
		Commit2:  p.Commit2.Point,
		Response: p.Response.Int,
	}
}

// broadcastFromWire reconstructs a dkg.Round1Broadcast from its wire
// form, the same conversion node.Engine performs on the receiving end,
// needed here so the coordinator can independently verify a peer's
// validation signature and resolve R3 complaints.
func broadcastFromWire(b wire.Round1Broadcast) (*dkg.Round1Broadcast, error) {
	senderID, err := parseNodeID(b.SenderID)
	if err != nil {
		return nil, err
	}
	commitments := make([]*curve.Point, len(b.Commitments))
	for i, c := range b.Commitments {
		if c.Point == nil {
			return nil, fmt.Errorf("coordinator: commitment %d from %s is missing", i, senderID)
		}
		commitments[i] = c.Point
	}
	ephemeralPub, err := ephemeral.UnmarshalPublicKey(b.EphemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("coordinator: parsing ephemeral public key from %s: %w", senderID, err)
	}
	return &dkg.Round1Broadcast{
		SenderID:    senderID,
		Commitments: commitments,
		LongTermKeyPoP: &schnorr.PoP{
			Nonce:    b.LongTermKeyPoP.Nonce.Point,
			Response: b.LongTermKeyPoP.Response.Int,
		},
		ConstantTermPoP: &schnorr.PoP{
			Nonce:    b.ConstantTermPoP.Nonce.Point,
			Response: b.ConstantTermPoP.Response.Int,
		},
		EphemeralPublicKey: ephemeralPub,
	}, nil
}
