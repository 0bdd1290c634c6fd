package coordinator

import (
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/meshsig/frost/curve"
)

// outcome names the observed result of a single peer's round, matching
// the penalty policy table: SUCCESSFUL and COMPLAINT are resolved
// elsewhere (a complaint's penalty is assigned to whichever party the
// DLEQ proof actually implicates) and never reach Penalize directly.
type outcome int

const (
	outcomeTimeout outcome = iota
	outcomeError
	outcomeMalicious
)

type reputationEntry struct {
	weight float64
	at     time.Time
}

// reputation tracks each peer's decaying penalty score in a bounded
// LRU cache, keyed by NodeId, so the table itself cannot grow without
// bound even if every candidate in a long-running deployment
// eventually misbehaves once.
type reputation struct {
	mu    sync.Mutex
	cache *lru.Cache
	cfg   Config
}

func newReputation(cfg Config) (*reputation, error) {
	cache, err := lru.New(cfg.ReputationCacheSize)
	if err != nil {
		return nil, err
	}
	return &reputation{cache: cache, cfg: cfg}, nil
}

func (r *reputation) weightFor(o outcome) float64 {
	switch o {
	case outcomeTimeout:
		return r.cfg.TimeoutPenalty
	case outcomeError:
		return r.cfg.ErrorPenalty
	case outcomeMalicious:
		return r.cfg.MaliciousPenalty
	default:
		return 0
	}
}

// penalize accumulates a new penalty event for id, adding to whatever
// effective score it currently carries rather than replacing it, so
// repeated misbehavior compounds.
func (r *reputation) penalize(id curve.NodeID, o outcome, now time.Time) {
	w := r.weightFor(o)
	if w == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.scoreLocked(id, now)
	r.cache.Add(id, reputationEntry{weight: current + w, at: now})
}

// score returns id's current decayed effective penalty score.
func (r *reputation) score(id curve.NodeID, now time.Time) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scoreLocked(id, now)
}

func (r *reputation) scoreLocked(id curve.NodeID, now time.Time) float64 {
	v, ok := r.cache.Get(id)
	if !ok {
		return 0
	}
	e := v.(reputationEntry)
	elapsed := now.Sub(e.at).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return e.weight * math.Exp(-r.cfg.DecayRate*elapsed)
}

// excluded reports whether id's current decayed score meets or exceeds
// REMOVE_THRESHOLD.
func (r *reputation) excluded(id curve.NodeID, now time.Time) bool {
	return r.score(id, now) >= r.cfg.RemoveThreshold
}

// filter returns the subset of candidates whose current decayed score
// is below REMOVE_THRESHOLD, preserving input order.
func (r *reputation) filter(candidates []curve.NodeID, now time.Time) []curve.NodeID {
	survivors := make([]curve.NodeID, 0, len(candidates))
	for _, id := range candidates {
		if !r.excluded(id, now) {
			survivors = append(survivors, id)
		}
	}
	return survivors
}
