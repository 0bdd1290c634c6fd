// Package node implements the per-node state machine: handling
// incoming DKG round requests, nonce-generation requests, and signing
// requests, and owning the node's secret share, nonce pool, and
// per-session transcripts.
package node

import (
	"sync"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/dkg"
	"github.com/meshsig/frost/frost"
	"github.com/meshsig/frost/internal/log"
	"github.com/meshsig/frost/transport"
)

// Engine is a single node's long-lived state: its identity, one
// transcript per in-flight (or completed) DKG session, one finalized
// key share per completed session, and a pool of precomputed signing
// nonces.
type Engine struct {
	LongTerm *dkg.LongTermKey
	Directory transport.NodeDirectory
	Auth      transport.AuthorizationPredicate
	Validator transport.AppValidator
	Data      transport.DataManager
	Logger    log.Logger

	Nonces *NoncePool

	sessionLocksMu sync.Mutex
	sessionLocks   map[string]*sync.Mutex

	mu          sync.Mutex
	transcripts map[string]*dkg.Transcript
	keyShares   map[string]*frost.KeyShare
}

// NewEngine constructs an Engine for a single node identity.
func NewEngine(
	longTerm *dkg.LongTermKey,
	directory transport.NodeDirectory,
	auth transport.AuthorizationPredicate,
	validator transport.AppValidator,
	data transport.DataManager,
	logger log.Logger,
) *Engine {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Engine{
		LongTerm:     longTerm,
		Directory:    directory,
		Auth:         auth,
		Validator:    validator,
		Data:         data,
		Logger:       logger.Named("node").With("node_id", longTerm.NodeID().String()),
		Nonces:       NewNoncePool(),
		sessionLocks: make(map[string]*sync.Mutex),
		transcripts:  make(map[string]*dkg.Transcript),
		keyShares:    make(map[string]*frost.KeyShare),
	}
}

// SelfID returns this node's self-certifying identifier.
func (e *Engine) SelfID() curve.NodeID {
	return e.LongTerm.NodeID()
}

// lockSession returns the mutex guarding all handler activity for
// dkgID, creating it on first use. Handlers for the same dkg_id are
// always serialized through this lock, per the engine's concurrency
// contract.
func (e *Engine) lockSession(dkgID string) *sync.Mutex {
	e.sessionLocksMu.Lock()
	defer e.sessionLocksMu.Unlock()

	l, ok := e.sessionLocks[dkgID]
	if !ok {
		l = &sync.Mutex{}
		e.sessionLocks[dkgID] = l
	}
	return l
}

func (e *Engine) transcript(dkgID string) (*dkg.Transcript, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.transcripts[dkgID]
	return t, ok
}

func (e *Engine) setTranscript(dkgID string, t *dkg.Transcript) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transcripts[dkgID] = t
}

func (e *Engine) keyShare(dkgID string) (*frost.KeyShare, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	k, ok := e.keyShares[dkgID]
	return k, ok
}

func (e *Engine) setKeyShare(dkgID string, k *frost.KeyShare) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keyShares[dkgID] = k
}
