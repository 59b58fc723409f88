package graph

import (
	"sort"
	"sync"
)

// Graph is a set of triples for one collection snapshot.
//
// Adding a triple that is already present is a no-op, so construction is
// idempotent by design. The graph may transiently hold dangling or
// self-referential relations; integrity is checked by the validate
// package before export, never at insertion time.
type Graph struct {
	mu        sync.RWMutex
	namespace string
	triples   map[string]Triple

	// bySubject indexes triple keys per subject IRI.
	bySubject map[string]map[string]struct{}
}

// New creates an empty graph for the given collection namespace.
func New(namespace string) *Graph {
	return &Graph{
		namespace: namespace,
		triples:   make(map[string]Triple),
		bySubject: make(map[string]map[string]struct{}),
	}
}

// Namespace returns the collection namespace the graph was created with.
func (g *Graph) Namespace() string {
	return g.namespace
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.triples)
}

// Add inserts a triple. Returns true when the triple was new, false when
// the identical statement was already present.
func (g *Graph) Add(t Triple) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := t.Key()
	if _, ok := g.triples[key]; ok {
		return false
	}
	g.triples[key] = t

	if g.bySubject[t.Subject] == nil {
		g.bySubject[t.Subject] = make(map[string]struct{})
	}
	g.bySubject[t.Subject][key] = struct{}{}
	return true
}

// AddAll inserts a batch of triples and returns the ones that were new.
func (g *Graph) AddAll(triples []Triple) []Triple {
	added := make([]Triple, 0, len(triples))
	for _, t := range triples {
		if g.Add(t) {
			added = append(added, t)
		}
	}
	return added
}

// Has reports whether the identical triple is present.
func (g *Graph) Has(t Triple) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.triples[t.Key()]
	return ok
}

// Triples returns all triples in canonical order (sorted by key), so
// repeated calls over an unchanged graph always agree.
func (g *Graph) Triples() []Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := make([]string, 0, len(g.triples))
	for k := range g.triples {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Triple, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.triples[k])
	}
	return out
}

// Objects returns the object terms of all (subject, predicate) triples.
func (g *Graph) Objects(subject, predicate string) []Term {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keys, ok := g.bySubject[subject]
	if !ok {
		return nil
	}

	var out []Term
	for k := range keys {
		t := g.triples[k]
		if t.Predicate == predicate {
			out = append(out, t.Object)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// Entities returns the IRIs of all subjects typed as file entities,
// sorted for deterministic iteration.
func (g *Graph) Entities() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	class := ClassFile(g.namespace)
	var out []string
	for subject, keys := range g.bySubject {
		for k := range keys {
			t := g.triples[k]
			if t.Predicate == PredType && t.Object.IsIRI() && t.Object.Value == class {
				out = append(out, subject)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// HasEntity reports whether the IRI is a typed file entity in this graph.
func (g *Graph) HasEntity(iri string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	class := ClassFile(g.namespace)
	keys, ok := g.bySubject[iri]
	if !ok {
		return false
	}
	for k := range keys {
		t := g.triples[k]
		if t.Predicate == PredType && t.Object.IsIRI() && t.Object.Value == class {
			return true
		}
	}
	return false
}

// Relations returns all relation triples (IRI objects, excluding
// rdf:type) in canonical order.
func (g *Graph) Relations() []Triple {
	var out []Triple
	for _, t := range g.Triples() {
		if t.IsRelation() {
			out = append(out, t)
		}
	}
	return out
}

// Equal reports whether both graphs hold exactly the same triple set.
// Namespace is not compared; equality is statement-for-statement.
func (g *Graph) Equal(other *Graph) bool {
	if other == nil {
		return false
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	if len(g.triples) != len(other.triples) {
		return false
	}
	for k := range g.triples {
		if _, ok := other.triples[k]; !ok {
			return false
		}
	}
	return true
}
