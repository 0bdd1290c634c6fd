package coordinator

import "errors"

// Sentinel errors for session-level failures, wrapped with fmt.Errorf's
// %w at the call site so errors.Is/errors.As keep working across the
// go-multierror boundary.
var (
	// ErrInsufficientQuorum is returned when fewer than the threshold
	// number of peers survive selection, verification, or aggregation.
	ErrInsufficientQuorum = errors.New("coordinator: insufficient quorum")

	// ErrGroupKeyDisagreement is returned when two R3 responses report
	// different group public keys for the same dkg_id.
	ErrGroupKeyDisagreement = errors.New("coordinator: participants disagree on the group public key")

	// ErrInvalidSeed is returned when the selection seed fails the
	// injected SeedOracle's validation before any peer is contacted.
	ErrInvalidSeed = errors.New("coordinator: selection seed rejected by seed oracle")

	// ErrNonceMissing is returned when a signer's nonce buffer cannot
	// supply an unused commitment within the retry budget.
	ErrNonceMissing = errors.New("coordinator: no buffered nonce available")

	// ErrInconsistentNonce is returned when signers report disagreeing
	// aggregated public nonces for the same signing session.
	ErrInconsistentNonce = errors.New("coordinator: signers disagree on the aggregated nonce")

	// ErrTooFewCandidates is returned when the candidate list is
	// smaller than the requested party size.
	ErrTooFewCandidates = errors.New("coordinator: not enough candidates for requested party size")
)
