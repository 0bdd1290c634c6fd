// Package local provides a non-networked, in-process implementation of
// the transport package's interfaces, for tests and the bundled
// cmd/frostd demo. It is adapted from shaimo-keep-core's
// pkg/net/local/local.go channel registry, but the shape underneath is
// different: that package mediates a broadcast channel shared by every
// subscriber, while every call here is a unicast request that blocks
// for a single reply, matching the protocol's
// send(peer, protocol, bytes, deadline) contract.
package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/transport"
)

// registryMutex and registries mirror local.go's package-level
// channelsMutex/channels: every Join call naming the same network joins
// the same registry of participants, so independently constructed
// Network values can address each other purely by name and NodeID.
var registryMutex sync.Mutex
var registries = map[string]*registry{}

type registry struct {
	mu      sync.RWMutex
	parties map[curve.NodeID]*Network
	info    map[curve.NodeID]transport.PeerInfo
}

func namedRegistry(name string) *registry {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	r, ok := registries[name]
	if !ok {
		r = &registry{
			parties: make(map[curve.NodeID]*Network),
			info:    make(map[curve.NodeID]transport.PeerInfo),
		}
		registries[name] = r
	}
	return r
}

// Network is a single participant's view of an in-memory network: it
// implements both transport.Transport and transport.NodeDirectory.
type Network struct {
	self     curve.NodeID
	registry *registry

	handlersMu sync.RWMutex
	handlers   map[string]transport.HandlerFunc
}

// Join registers id as a participant of the named in-memory network,
// publishing info for other participants' NodeDirectory lookups.
// Joining the same name from multiple goroutines (or multiple test
// nodes within one process) wires them into the same network.
func Join(name string, id curve.NodeID, info transport.PeerInfo) *Network {
	r := namedRegistry(name)

	n := &Network{
		self:     id,
		registry: r,
		handlers: make(map[string]transport.HandlerFunc),
	}

	r.mu.Lock()
	r.parties[id] = n
	r.info[id] = info
	r.mu.Unlock()

	return n
}

// Leave removes this participant from its network, so it stops
// receiving requests. Safe to call more than once.
func (n *Network) Leave() {
	n.registry.mu.Lock()
	defer n.registry.mu.Unlock()
	delete(n.registry.parties, n.self)
	delete(n.registry.info, n.self)
}

// RegisterHandler implements transport.Transport.
func (n *Network) RegisterHandler(protocol string, fn transport.HandlerFunc) {
	n.handlersMu.Lock()
	defer n.handlersMu.Unlock()
	n.handlers[protocol] = fn
}

// Send implements transport.Transport by looking up peer's registered
// handler for protocol and invoking it in-process, enforcing deadline
// as a context timeout.
func (n *Network) Send(ctx context.Context, peer curve.NodeID, protocol string, body []byte, deadline time.Time) ([]byte, error) {
	n.registry.mu.RLock()
	target, ok := n.registry.parties[peer]
	n.registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("transport/local: peer %s is not on the network", peer)
	}

	target.handlersMu.RLock()
	handler, ok := target.handlers[protocol]
	target.handlersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("transport/local: peer %s has no handler for protocol %q", peer, protocol)
	}

	callCtx := ctx
	if !deadline.IsZero() {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		respBody, err := handler(callCtx, n.self, body)
		done <- result{respBody, err}
	}()

	select {
	case <-callCtx.Done():
		return nil, fmt.Errorf("transport/local: request to %s on %q: %w", peer, protocol, callCtx.Err())
	case r := <-done:
		return r.body, r.err
	}
}

// Lookup implements transport.NodeDirectory.
func (n *Network) Lookup(id curve.NodeID) (transport.PeerInfo, error) {
	n.registry.mu.RLock()
	defer n.registry.mu.RUnlock()

	info, ok := n.registry.info[id]
	if !ok {
		return transport.PeerInfo{}, fmt.Errorf("transport/local: unknown peer %s", id)
	}
	return info, nil
}

// List implements transport.NodeDirectory, returning up to n known
// peer identifiers in no particular order.
func (n *Network) List(limit int) ([]curve.NodeID, error) {
	n.registry.mu.RLock()
	defer n.registry.mu.RUnlock()

	out := make([]curve.NodeID, 0, limit)
	for id := range n.registry.parties {
		if len(out) >= limit {
			break
		}
		out = append(out, id)
	}
	return out, nil
}
