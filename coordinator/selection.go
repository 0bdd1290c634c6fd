package coordinator

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/meshsig/frost/curve"
)

// selectSubset derives a deterministic, seed-dependent subset of size n
// from candidates: every candidate is assigned an HMAC-SHA256(seed, id)
// rank, and the n lowest-ranked candidates are chosen. Any two
// coordinators given the same seed and candidate list produce the same
// subset without needing to communicate, and no candidate can predict
// or bias its own rank without already knowing the seed in advance.
func selectSubset(seed []byte, candidates []curve.NodeID, n int) ([]curve.NodeID, error) {
	if n <= 0 {
		return nil, fmt.Errorf("coordinator: requested party size must be positive")
	}
	if n > len(candidates) {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrTooFewCandidates, n, len(candidates))
	}

	type ranked struct {
		id   curve.NodeID
		rank []byte
	}
	ranks := make([]ranked, len(candidates))
	for i, id := range candidates {
		mac := hmac.New(sha256.New, seed)
		mac.Write(id[:])
		ranks[i] = ranked{id: id, rank: mac.Sum(nil)}
	}
	sort.Slice(ranks, func(i, j int) bool {
		return bytes.Compare(ranks[i].rank, ranks[j].rank) < 0
	})

	out := make([]curve.NodeID, n)
	for i := 0; i < n; i++ {
		out[i] = ranks[i].id
	}
	return out, nil
}
