package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/archivekit/relic/internal/graph"
)

// Key prefixes for different data types
const (
	prefixTriple = "t:" // one statement per key
	keyNamespace = "m:namespace"
)

// BadgerBackend is a BadgerDB-backed storage implementation.
type BadgerBackend struct {
	db          *badger.DB
	initialized bool
	mu          sync.RWMutex
}

// NewBadgerBackend creates a new BadgerDB backend.
func NewBadgerBackend() *BadgerBackend {
	return &BadgerBackend{}
}

// Initialize opens or creates the BadgerDB database at the given path.
func (b *BadgerBackend) Initialize(path string, readOnly bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := badger.DefaultOptions(path).
		WithNumCompactors(2).
		WithNumMemtables(5).
		WithLoggingLevel(badger.ERROR) // Suppress INFO/WARNING logs

	if readOnly {
		opts = opts.WithReadOnly(true)
	}

	var err error
	b.db, err = badger.Open(opts)
	if err != nil {
		return fmt.Errorf("opening badger DB: %w", err)
	}

	b.initialized = true
	return nil
}

// Close releases all resources held by the backend.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	b.initialized = false
	return err
}

// SaveGraph replaces the stored graph with the given one.
func (b *BadgerBackend) SaveGraph(ctx context.Context, g *graph.Graph) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.dropTriples(); err != nil {
		return err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	if err := wb.Set([]byte(keyNamespace), []byte(g.Namespace())); err != nil {
		return fmt.Errorf("setting namespace: %w", err)
	}

	for _, t := range g.Triples() {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshaling triple: %w", err)
		}
		if err := wb.Set(tripleKey(t), data); err != nil {
			return fmt.Errorf("setting triple: %w", err)
		}
	}

	return wb.Flush()
}

// LoadGraph returns the stored graph, or ErrNoGraph when empty.
func (b *BadgerBackend) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	namespace, err := b.readNamespace()
	if err != nil {
		return nil, err
	}

	g := graph.New(namespace)
	err = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixTriple)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var t graph.Triple
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			}); err != nil {
				return fmt.Errorf("unmarshaling triple: %w", err)
			}
			g.Add(t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

// AddTriples appends statements in a single transaction.
func (b *BadgerBackend) AddTriples(ctx context.Context, triples []graph.Triple) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.readNamespace(); err != nil {
		return err
	}

	txn := b.db.NewTransaction(true)
	defer txn.Discard()

	for _, t := range triples {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshaling triple: %w", err)
		}
		if err := txn.Set(tripleKey(t), data); err != nil {
			return fmt.Errorf("setting triple: %w", err)
		}
	}

	return txn.Commit()
}

// Stats summarizes the stored graph.
func (b *BadgerBackend) Stats(ctx context.Context) (Stats, error) {
	g, err := b.LoadGraph(ctx)
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

// readNamespace fetches the stored collection namespace. Callers hold
// at least a read lock.
func (b *BadgerBackend) readNamespace() (string, error) {
	var namespace string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyNamespace))
		if err == badger.ErrKeyNotFound {
			return ErrNoGraph
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			namespace = string(val)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return namespace, nil
}

// dropTriples removes all stored statements and the namespace key.
// Callers hold the write lock.
func (b *BadgerBackend) dropTriples() error {
	return b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixTriple)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("deleting triple: %w", err)
			}
		}
		return txn.Delete([]byte(keyNamespace))
	})
}

// tripleKey builds the storage key for a statement.
func tripleKey(t graph.Triple) []byte {
	return []byte(prefixTriple + t.Key())
}
