package dkg

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/ephemeral"
	"github.com/meshsig/frost/frost"
	"github.com/meshsig/frost/shamir"
)

// Transcript is a single node's view of one DKG session, indexed by
// dkg_id. Fields relevant to a later phase are left nil until that phase
// is reached, so a transcript cannot be misread for state it does not
// yet hold.
type Transcript struct {
	DkgID     string
	SelfID    curve.NodeID
	Threshold int
	Phase     Phase

	group *group

	poly       *shamir.Polynomial // zeroized on transition to DONE or ABORTED
	ephemeral  *ephemeral.KeyPair
	broadcasts map[curve.NodeID]*Round1Broadcast

	receivedShares map[curve.NodeID]*big.Int // zeroized on transition to DONE or ABORTED

	// Result, populated only once Phase == PhaseDone.
	Result *frost.KeyShare
}

// New creates a Transcript at the start of Round One for a DKG with the
// given identity and party.
func New(dkgID string, selfID curve.NodeID, threshold int, party []curve.NodeID) *Transcript {
	return &Transcript{
		DkgID:          dkgID,
		SelfID:         selfID,
		Threshold:      threshold,
		Phase:          PhaseR1,
		group:          newGroup(party),
		receivedShares: make(map[curve.NodeID]*big.Int),
	}
}

// Abort transitions the transcript to ABORTED, zeroizing all secret
// material. It is idempotent.
func (t *Transcript) Abort(reason string) {
	if t.Phase == PhaseAborted || t.Phase == PhaseDone {
		return
	}
	t.zeroize()
	t.Phase = PhaseAborted
	_ = reason
}

func (t *Transcript) zeroize() {
	if t.poly != nil {
		t.poly.Zeroize()
		t.poly = nil
	}
	for id, s := range t.receivedShares {
		shamir.ZeroizeScalar(s)
		delete(t.receivedShares, id)
	}
	if t.ephemeral != nil && t.ephemeral.PrivateKey != nil {
		shamir.ZeroizeScalar((*btcec.PrivateKey)(t.ephemeral.PrivateKey).D)
	}
}

func (t *Transcript) requirePhase(p Phase) error {
	if t.Phase != p {
		return fmt.Errorf("dkg: transcript %s is in phase %s, expected %s", t.DkgID, t.Phase, p)
	}
	return nil
}
