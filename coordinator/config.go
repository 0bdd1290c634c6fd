package coordinator

import "time"

// Config holds the coordinator's tunables. The spec leaves penalty
// weights, REMOVE_THRESHOLD, and retry/timeout budgets as deployment
// configuration with documented defaults; DefaultConfig provides those
// defaults and every field is overridable by the embedding application
// (typically via cmd/frostd's TOML config).
type Config struct {
	// RemoveThreshold is the effective decayed penalty score at or
	// above which a peer is excluded from selection.
	RemoveThreshold float64

	// TimeoutPenalty, ErrorPenalty, and MaliciousPenalty are the
	// weights added to a peer's reputation on each corresponding
	// outcome, per the penalty policy table.
	TimeoutPenalty   float64
	ErrorPenalty     float64
	MaliciousPenalty float64

	// DecayRate controls how quickly a penalty's effective score
	// decays: score(t) = weight * exp(-DecayRate * elapsedSeconds).
	// The default halves a penalty's effective weight every five
	// minutes.
	DecayRate float64

	// ReputationCacheSize bounds the number of peers tracked at once,
	// the same unbounded-growth concern the nonce pool's cap
	// addresses, reusing golang-lru for eviction.
	ReputationCacheSize int

	// RoundTimeout bounds a single outbound R1/R2/R3 or signing
	// request-response round trip.
	RoundTimeout time.Duration

	// ConcurrencyLimit caps simultaneous outbound streams during a
	// fan-out. Zero disables the bound.
	ConcurrencyLimit int64

	// NonceLowWaterMark is the buffer depth below which the nonce
	// maintenance loop requests more nonces, at a target of
	// NonceLowWaterMark * 10 fresh pairs per request.
	NonceLowWaterMark int

	// NonceWaitTimeout is the short wait window a signing session
	// gives a peer to surface a buffered nonce before marking it
	// TIMEOUT and retrying signer selection.
	NonceWaitTimeout time.Duration

	// NonceMaxRetries bounds the number of signer-reselection retries
	// performed when a selected signer's nonce buffer is empty.
	NonceMaxRetries int
}

// DefaultConfig returns the documented defaults. Penalty weights and
// REMOVE_THRESHOLD are chosen so that three consecutive timeouts (but
// not one or two) push a peer over threshold, and a single MALICIOUS
// finding always does.
func DefaultConfig() Config {
	return Config{
		RemoveThreshold:     10,
		TimeoutPenalty:      4,
		ErrorPenalty:        4,
		MaliciousPenalty:    100,
		DecayRate:           0.0023, // ln(2) / 300s
		ReputationCacheSize: 4096,
		RoundTimeout:        50 * time.Second,
		ConcurrencyLimit:    0,
		NonceLowWaterMark:   10,
		NonceWaitTimeout:    2 * time.Second,
		NonceMaxRetries:     3,
	}
}
