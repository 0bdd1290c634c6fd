// Package transport defines the collaborator interfaces the protocol
// core is injected with — authenticated unicast transport, peer
// directory, authorization, application-level validation, a seed
// oracle for public randomness, and persistence — plus an in-memory
// reference implementation under transport/local for tests and the
// bundled cmd/frostd demo. The core never depends on a concrete
// transport, directory, or storage backend.
package transport

import (
	"context"
	"time"

	"github.com/meshsig/frost/curve"
)

// Transport provides authenticated unicast request/response streams
// keyed by peer node identifier. Implementations authenticate the
// remote identity before a handler ever sees a request.
type Transport interface {
	// Send delivers body to peer under protocol and blocks for the
	// reply, or until deadline elapses.
	Send(ctx context.Context, peer curve.NodeID, protocol string, body []byte, deadline time.Time) ([]byte, error)

	// RegisterHandler installs fn to answer every inbound request for
	// protocol. Registering the same protocol twice replaces the prior
	// handler.
	RegisterHandler(protocol string, fn HandlerFunc)
}

// HandlerFunc answers a single inbound request from caller.
type HandlerFunc func(ctx context.Context, caller curve.NodeID, body []byte) ([]byte, error)

// PeerInfo is what the NodeDirectory knows about a participant.
type PeerInfo struct {
	Address        string
	LongTermPubKey *curve.Point
}

// NodeDirectory resolves node identifiers to network addresses and
// long-term public keys, and can enumerate known peers.
type NodeDirectory interface {
	Lookup(id curve.NodeID) (PeerInfo, error)
	List(n int) ([]curve.NodeID, error)
}

// AuthorizationPredicate decides whether caller may invoke protocol at
// all, independent of any particular request's contents.
type AuthorizationPredicate interface {
	Authorized(caller curve.NodeID, protocol string) bool
}

// AuthorizationFunc adapts a plain function to AuthorizationPredicate.
type AuthorizationFunc func(caller curve.NodeID, protocol string) bool

func (f AuthorizationFunc) Authorized(caller curve.NodeID, protocol string) bool {
	return f(caller, protocol)
}

// ValidatedInput is the canonicalized form of a signing request's
// application payload.
type ValidatedInput struct {
	CanonicalBytes []byte
	Digest         []byte
}

// AppValidator decides admissibility of a signing request's
// application-level input and derives the canonical message digest
// that will actually be signed.
type AppValidator interface {
	Validate(inputData []byte) (ValidatedInput, error)
}

// SeedOracle validates and mints public randomness seeds (e.g. a
// recent beacon or blockchain block hash committed with a current
// timestamp) used to derandomize subset selection.
type SeedOracle interface {
	Validate(seed []byte) bool
	Fresh() ([]byte, error)
}

// DataManager persists nonce pools and key shares across restarts.
// Implementations are responsible for their own durability. node.Engine
// accepts a DataManager but keeps its nonce pool and key shares in
// memory only; it does not read from or write to it.
type DataManager interface {
	GetNonces(nodeID curve.NodeID) ([]StoredNonce, error)
	SetNonces(nodeID curve.NodeID, nonces []StoredNonce) error
	GetKey(dkgID string) (StoredKeyShare, bool, error)
	SetKey(dkgID string, key StoredKeyShare) error
}

// StoredNonce and StoredKeyShare are opaque, already-serialized
// payloads: DataManager implementations need not understand the
// cryptographic content, only store and retrieve it by key.
type StoredNonce struct {
	ID      string
	Payload []byte
}

type StoredKeyShare struct {
	Payload []byte
}
