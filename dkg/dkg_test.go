package dkg

import (
	"math/big"
	"testing"

	"github.com/meshsig/frost/curve"
)

type testNode struct {
	longTerm   *LongTermKey
	transcript *Transcript
}

func newTestParty(t *testing.T, n, threshold int) []*testNode {
	t.Helper()

	nodes := make([]*testNode, n)
	party := make([]curve.NodeID, n)
	for i := range nodes {
		lt, err := GenerateLongTermKey()
		if err != nil {
			t.Fatalf("GenerateLongTermKey: %v", err)
		}
		nodes[i] = &testNode{longTerm: lt}
		party[i] = lt.NodeID()
	}
	for _, node := range nodes {
		node.transcript = New("dkg-1", node.longTerm.NodeID(), threshold, party)
	}
	return nodes
}

func longTermPublicKeys(nodes []*testNode) map[curve.NodeID]*curve.Point {
	out := make(map[curve.NodeID]*curve.Point, len(nodes))
	for _, n := range nodes {
		out[n.longTerm.NodeID()] = n.longTerm.Public
	}
	return out
}

func TestHappyPathDKG(t *testing.T) {
	nodes := newTestParty(t, 3, 2)
	ltPubs := longTermPublicKeys(nodes)

	broadcasts := make(map[curve.NodeID]*Round1Broadcast, len(nodes))
	for _, n := range nodes {
		b, err := n.transcript.Round1(n.longTerm)
		if err != nil {
			t.Fatalf("Round1(%s): %v", n.longTerm.NodeID(), err)
		}
		broadcasts[n.longTerm.NodeID()] = b
	}

	r2 := make(map[curve.NodeID]map[curve.NodeID][]byte, len(nodes))
	for _, n := range nodes {
		ciphertexts, err := n.transcript.Round2(broadcasts, ltPubs)
		if err != nil {
			t.Fatalf("Round2(%s): %v", n.longTerm.NodeID(), err)
		}
		r2[n.longTerm.NodeID()] = ciphertexts
	}

	var groupKey *curve.Point
	shares := make(map[curve.NodeID]*big.Int, len(nodes))
	for _, n := range nodes {
		id := n.longTerm.NodeID()
		ciphertextsForMe := make(map[curve.NodeID][]byte, len(nodes))
		for senderID, ciphertexts := range r2 {
			ciphertextsForMe[senderID] = ciphertexts[id]
		}

		result, err := n.transcript.Round3(ciphertextsForMe, n.longTerm)
		if err != nil {
			t.Fatalf("Round3(%s): %v", id, err)
		}
		if len(result.Complaints) > 0 {
			t.Fatalf("unexpected complaints from %s: %+v", id, result.Complaints)
		}
		if groupKey == nil {
			groupKey = result.KeyShare.GroupPublicKey
		} else if !curve.Equal(groupKey, result.KeyShare.GroupPublicKey) {
			t.Fatalf("group public key mismatch for %s", id)
		}
		shares[id] = result.KeyShare.Secret
	}

	xs := make([]*big.Int, 0, len(nodes))
	for _, n := range nodes {
		xs = append(xs, n.longTerm.NodeID().Scalar())
	}

	recovered := big.NewInt(0)
	for _, n := range nodes {
		id := n.longTerm.NodeID()
		lambda, err := lagrangeForTest(id.Scalar(), xs)
		if err != nil {
			t.Fatalf("lagrange: %v", err)
		}
		term := new(big.Int).Mul(lambda, shares[id])
		recovered.Add(recovered, term)
		recovered.Mod(recovered, curve.Order())
	}

	if !curve.Equal(curve.BaseMul(recovered), groupKey) {
		t.Fatal("interpolated secret does not match the group public key")
	}
}

func TestInconsistentShareRaisesComplaint(t *testing.T) {
	nodes := newTestParty(t, 3, 2)
	ltPubs := longTermPublicKeys(nodes)

	broadcasts := make(map[curve.NodeID]*Round1Broadcast, len(nodes))
	for _, n := range nodes {
		b, err := n.transcript.Round1(n.longTerm)
		if err != nil {
			t.Fatalf("Round1(%s): %v", n.longTerm.NodeID(), err)
		}
		broadcasts[n.longTerm.NodeID()] = b
	}

	r2 := make(map[curve.NodeID]map[curve.NodeID][]byte, len(nodes))
	for _, n := range nodes {
		ciphertexts, err := n.transcript.Round2(broadcasts, ltPubs)
		if err != nil {
			t.Fatalf("Round2(%s): %v", n.longTerm.NodeID(), err)
		}
		r2[n.longTerm.NodeID()] = ciphertexts
	}

	// Node 0 tampers with the ciphertext it sent to node 1, simulating an
	// inconsistent (or maliciously altered) Round Two share.
	victim := nodes[1].longTerm.NodeID()
	culprit := nodes[0].longTerm.NodeID()
	tampered := append([]byte(nil), r2[culprit][victim]...)
	tampered[len(tampered)-1] ^= 0xFF
	r2[culprit][victim] = tampered

	ciphertextsForMe := make(map[curve.NodeID][]byte, len(nodes))
	for senderID, ciphertexts := range r2 {
		ciphertextsForMe[senderID] = ciphertexts[victim]
	}

	result, err := nodes[1].transcript.Round3(ciphertextsForMe, nodes[1].longTerm)
	if err != nil {
		t.Fatalf("Round3: %v", err)
	}
	if len(result.Complaints) == 0 {
		t.Fatal("expected a complaint against the tampered sender")
	}
	if result.Complaints[0].Accused != culprit {
		t.Fatalf("expected complaint against %s, got %s", culprit, result.Complaints[0].Accused)
	}
}

func lagrangeForTest(xi *big.Int, indices []*big.Int) (*big.Int, error) {
	order := curve.Order()
	num := big.NewInt(1)
	den := big.NewInt(1)
	for _, xj := range indices {
		if xj.Cmp(xi) == 0 {
			continue
		}
		num.Mul(num, xj)
		num.Mod(num, order)
		diff := new(big.Int).Sub(xj, xi)
		diff.Mod(diff, order)
		den.Mul(den, diff)
		den.Mod(den, order)
	}
	denInv := new(big.Int).ModInverse(den, order)
	res := new(big.Int).Mul(num, denInv)
	return res.Mod(res, order), nil
}
