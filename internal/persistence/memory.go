package persistence

import (
	"context"
	"sync"
)

// MemoryGateway keeps snapshots in process memory.
type MemoryGateway struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{blobs: make(map[string][]byte)}
}

// Read implements Gateway.
func (g *MemoryGateway) Read(_ context.Context, key string) ([]byte, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	payload, ok := g.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), payload...), true, nil
}

// Write implements Gateway.
func (g *MemoryGateway) Write(_ context.Context, key string, payload []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blobs[key] = append([]byte(nil), payload...)
	return nil
}

// Keys returns the keys currently stored.
func (g *MemoryGateway) Keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := make([]string, 0, len(g.blobs))
	for k := range g.blobs {
		keys = append(keys, k)
	}
	return keys
}
