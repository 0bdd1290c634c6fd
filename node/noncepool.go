package node

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/frost"
)

// noncePoolEntry pairs a not-yet-consumed NoncePair with the commitment
// published for it.
type noncePoolEntry struct {
	pair       *frost.NoncePair
	commitment *frost.NonceCommitment
}

// DefaultNoncePoolMaxSize bounds how many unconsumed nonce pairs a
// NoncePool will hold at once when constructed with NewNoncePool.
// Each entry retains a scalar pair in memory until consumed or the
// node restarts; without a cap a coordinator (malicious or merely
// overeager) asking for ever more nonces would grow this unbounded.
const DefaultNoncePoolMaxSize = 1024

// NoncePool is a node's local store of precomputed, not-yet-consumed
// nonce pairs, keyed by an opaque pool-local id minted at generation
// time. Signing consumes entries monotonically: Take removes an entry
// on success so a nonce can never be reused across two signing
// sessions. The pool holds at most maxSize entries; Generate requests
// that would exceed the cap are truncated and the shortfall is
// reported so the caller can back off.
type NoncePool struct {
	mu      sync.Mutex
	entries map[string]*noncePoolEntry
	maxSize int
}

// NewNoncePool constructs an empty pool capped at DefaultNoncePoolMaxSize
// entries.
func NewNoncePool() *NoncePool {
	return NewNoncePoolWithCap(DefaultNoncePoolMaxSize)
}

// NewNoncePoolWithCap constructs an empty pool capped at maxSize entries.
func NewNoncePoolWithCap(maxSize int) *NoncePool {
	return &NoncePool{entries: make(map[string]*noncePoolEntry), maxSize: maxSize}
}

// Generate samples up to n fresh nonce pairs bound to secretShare and
// adds them to the pool, returning their public commitments (tagged
// with selfID) for publication to the coordinator. If honoring the
// full request would push the pool past its cap, generation stops
// early; rejected reports how many of the n requested pairs were not
// generated as a result, so the caller can surface the shortfall and
// back off instead of silently under-provisioning the pool.
func (p *NoncePool) Generate(selfID curve.NodeID, secretShare *big.Int, n int) (commitments []*frost.NonceCommitment, rejected int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	room := p.maxSize - len(p.entries)
	if room < 0 {
		room = 0
	}
	toGenerate := n
	if toGenerate > room {
		toGenerate = room
	}

	commitments = make([]*frost.NonceCommitment, 0, toGenerate)
	for i := 0; i < toGenerate; i++ {
		pair, commitment, genErr := frost.GenerateNoncePair(secretShare)
		if genErr != nil {
			return nil, 0, fmt.Errorf("node: generating nonce pair: %w", genErr)
		}
		id := uuid.NewString()
		commitment.ID = selfID
		commitment.PoolID = id
		p.entries[id] = &noncePoolEntry{pair: pair, commitment: commitment}
		commitments = append(commitments, commitment)
	}
	return commitments, n - toGenerate, nil
}

// Take removes and returns the nonce pair stored under id, or
// ErrNonceMissing if none is on file.
func (p *NoncePool) Take(id string) (*frost.NoncePair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNonceMissing, id)
	}
	delete(p.entries, id)
	return entry.pair, nil
}

// Len reports the number of unconsumed nonce pairs in the pool.
func (p *NoncePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
