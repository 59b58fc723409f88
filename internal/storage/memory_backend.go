package storage

import (
	"context"
	"sync"

	"github.com/archivekit/relic/internal/graph"
)

// MemoryBackend is an in-memory storage implementation used by tests
// and by commands that run against a transient graph.
type MemoryBackend struct {
	mu        sync.RWMutex
	namespace string
	triples   map[string]graph.Triple
	stored    bool
}

// NewMemoryBackend creates a new in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{triples: make(map[string]graph.Triple)}
}

// Initialize is a no-op; the path and readOnly flag are ignored.
func (m *MemoryBackend) Initialize(path string, readOnly bool) error {
	return nil
}

// Close is a no-op.
func (m *MemoryBackend) Close() error {
	return nil
}

// SaveGraph replaces the stored graph with the given one.
func (m *MemoryBackend) SaveGraph(ctx context.Context, g *graph.Graph) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.namespace = g.Namespace()
	m.triples = make(map[string]graph.Triple)
	for _, t := range g.Triples() {
		m.triples[t.Key()] = t
	}
	m.stored = true
	return nil
}

// LoadGraph returns the stored graph, or ErrNoGraph when empty.
func (m *MemoryBackend) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.stored {
		return nil, ErrNoGraph
	}

	g := graph.New(m.namespace)
	for _, t := range m.triples {
		g.Add(t)
	}
	return g, nil
}

// AddTriples appends statements to the stored graph.
func (m *MemoryBackend) AddTriples(ctx context.Context, triples []graph.Triple) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.stored {
		return ErrNoGraph
	}
	for _, t := range triples {
		m.triples[t.Key()] = t
	}
	return nil
}

// Stats summarizes the stored graph.
func (m *MemoryBackend) Stats(ctx context.Context) (Stats, error) {
	g, err := m.LoadGraph(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Namespace: g.Namespace(),
		Triples:   g.Len(),
		Entities:  len(g.Entities()),
		Relations: len(g.Relations()),
	}, nil
}
