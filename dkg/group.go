package dkg

import "github.com/meshsig/frost/curve"

// group tracks which members of a DKG party are still operating (have
// neither timed out nor been disqualified) as the session progresses.
// Grounded in the teacher's gjkr/group.go, adapted from integer member
// indexes to curve.NodeID.
type group struct {
	party         []curve.NodeID
	disqualified  map[curve.NodeID]bool
	disqualifyFor map[curve.NodeID]string
}

func newGroup(party []curve.NodeID) *group {
	return &group{
		party:         append([]curve.NodeID(nil), party...),
		disqualified:  make(map[curve.NodeID]bool),
		disqualifyFor: make(map[curve.NodeID]string),
	}
}

// disqualify removes id from the operating set, recording why. A
// disqualification is permanent for the lifetime of the session.
func (g *group) disqualify(id curve.NodeID, reason string) {
	if !g.inParty(id) || g.disqualified[id] {
		return
	}
	g.disqualified[id] = true
	g.disqualifyFor[id] = reason
}

func (g *group) inParty(id curve.NodeID) bool {
	for _, p := range g.party {
		if p == id {
			return true
		}
	}
	return false
}

func (g *group) isOperating(id curve.NodeID) bool {
	return g.inParty(id) && !g.disqualified[id]
}

// operating returns the current set of non-disqualified party members.
func (g *group) operating() []curve.NodeID {
	out := make([]curve.NodeID, 0, len(g.party))
	for _, id := range g.party {
		if g.isOperating(id) {
			out = append(out, id)
		}
	}
	return out
}
