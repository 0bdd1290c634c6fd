package node

import "errors"

// Sentinel errors returned by Engine handlers, wrapped with additional
// context via fmt.Errorf("...: %w", ...) so callers can still recover
// the sentinel with errors.Is.
var (
	ErrUnauthorized   = errors.New("node: caller is not authorized for this protocol")
	ErrUnknownSession = errors.New("node: no transcript on file for this dkg_id")
	ErrWrongPhase     = errors.New("node: transcript is not in the expected phase")
	ErrNoKeyShare     = errors.New("node: no finalized key share on file for this dkg_id")
	ErrNonceMissing   = errors.New("node: no nonce on file for the requested commitment id")
	ErrInvalidRequest = errors.New("node: malformed request")
)
