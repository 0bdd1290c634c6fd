package local

import (
	"sync"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/transport"
)

// MemoryDataManager is an in-process transport.DataManager backed by a
// plain map, for tests and the bundled demo. It has no durability
// across process restarts.
type MemoryDataManager struct {
	mu     sync.Mutex
	nonces map[curve.NodeID][]transport.StoredNonce
	keys   map[string]transport.StoredKeyShare
}

func NewMemoryDataManager() *MemoryDataManager {
	return &MemoryDataManager{
		nonces: make(map[curve.NodeID][]transport.StoredNonce),
		keys:   make(map[string]transport.StoredKeyShare),
	}
}

func (m *MemoryDataManager) GetNonces(nodeID curve.NodeID) ([]transport.StoredNonce, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transport.StoredNonce(nil), m.nonces[nodeID]...), nil
}

func (m *MemoryDataManager) SetNonces(nodeID curve.NodeID, nonces []transport.StoredNonce) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nonces[nodeID] = append([]transport.StoredNonce(nil), nonces...)
	return nil
}

func (m *MemoryDataManager) GetKey(dkgID string) (transport.StoredKeyShare, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[dkgID]
	return k, ok, nil
}

func (m *MemoryDataManager) SetKey(dkgID string, key transport.StoredKeyShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[dkgID] = key
	return nil
}
