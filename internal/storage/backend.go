// Package storage persists relation graphs between CLI invocations.
//
// It defines the Backend interface that all storage implementations
// must satisfy. The graph lives in memory while a command runs; a
// backend keeps it durable across ingest, relate, validate, and export
// runs against the same collection.
package storage

import (
	"context"
	"errors"

	"github.com/archivekit/relic/internal/graph"
)

// ErrNoGraph is returned by LoadGraph when the store holds no graph yet.
var ErrNoGraph = errors.New("storage: no graph stored")

// Stats summarizes the stored graph.
type Stats struct {
	// Namespace is the collection namespace the graph is bound to.
	Namespace string

	// Triples is the total statement count.
	Triples int

	// Entities is the number of typed file entities.
	Entities int

	// Relations is the number of entity-to-entity relation statements.
	Relations int
}

// Backend defines the interface for storage implementations.
//
// Implementations must be thread-safe and support concurrent access.
type Backend interface {
	// Initialize opens or creates the store at the given path.
	// If readOnly is true, the backend is opened in read-only mode.
	Initialize(path string, readOnly bool) error

	// Close releases all resources held by the backend.
	Close() error

	// SaveGraph replaces the stored graph with the given one.
	SaveGraph(ctx context.Context, g *graph.Graph) error

	// LoadGraph returns the stored graph, or ErrNoGraph when the
	// store is empty.
	LoadGraph(ctx context.Context) (*graph.Graph, error)

	// AddTriples appends statements to the stored graph atomically:
	// either every triple lands or none do.
	AddTriples(ctx context.Context, triples []graph.Triple) error

	// Stats summarizes the stored graph without materializing it.
	Stats(ctx context.Context) (Stats, error)
}
