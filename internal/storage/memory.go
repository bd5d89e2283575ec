package storage

import (
	"context"
	"maps"
	"sync"
)

// MemoryPreferences keeps preferences in process memory.
type MemoryPreferences struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryPreferences creates an empty in-memory store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: make(map[string]string)}
}

func (p *MemoryPreferences) Name() string { return "memory" }

func (p *MemoryPreferences) Get(_ context.Context, key string) (string, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok, nil
}

func (p *MemoryPreferences) Set(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}

func (p *MemoryPreferences) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.values, key)
	return nil
}

func (p *MemoryPreferences) All(_ context.Context) (map[string]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.values), nil
}

func (p *MemoryPreferences) Close() error { return nil }
