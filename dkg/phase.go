// Package dkg implements the three-round distributed key generation
// protocol run by each node: Round One publishes polynomial commitments
// and proofs of possession, Round Two distributes pairwise-encrypted
// shares, and Round Three verifies received shares and finalizes (or
// raises a complaint against) the sending peer.
//
// Grounded in the teacher's gjkr package (group membership tracking,
// evidence log, message filtering) adapted from GJKR's five-round
// design to the spec's three-round, PoP-plus-DLEQ-complaint design.
package dkg

// Phase identifies where a Transcript is in the three-round protocol.
// A Transcript's phase only ever advances forward; fields relevant to a
// later phase are not populated until that phase is reached.
type Phase int

const (
	PhaseR1 Phase = iota
	PhaseR2
	PhaseR3
	PhaseDone
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseR1:
		return "R1"
	case PhaseR2:
		return "R2"
	case PhaseR3:
		return "R3"
	case PhaseDone:
		return "DONE"
	case PhaseAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}
