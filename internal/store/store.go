// Package store provides a graph.Store that remembers insertion order, so
// listings and renderings of a graph are stable from one run to the next.
package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dominikbraun/graph"
)

// Store is a graph.Store whose vertex properties can be edited in place.
type Store[K comparable, T any] interface {
	graph.Store[K, T]
	UpdateVertex(k K, options ...func(*graph.VertexProperties)) error
	// Predecessors returns the sources of the edges ending at k, in
	// insertion order.
	Predecessors(k K) []K
	// Successors returns the targets of the edges starting at k, in
	// insertion order.
	Successors(k K) []K
}

// OrderedStore keeps vertices and edges in the order they were added.
type OrderedStore[K comparable, T any] struct {
	lock             sync.RWMutex
	order            []K
	vertices         map[K]T
	vertexProperties map[K]*graph.VertexProperties

	// outEdges and inEdges hold the edges by source and by target. The slices
	// in outOrder and inOrder remember the insertion order of each map.
	outEdges map[K]map[K]graph.Edge[K]
	inEdges  map[K]map[K]graph.Edge[K]
	outOrder map[K][]K
	inOrder  map[K][]K
}

// NewOrdered returns an empty store.
func NewOrdered[K comparable, T any]() *OrderedStore[K, T] {
	return &OrderedStore[K, T]{
		vertices:         make(map[K]T),
		vertexProperties: make(map[K]*graph.VertexProperties),
		outEdges:         make(map[K]map[K]graph.Edge[K]),
		inEdges:          make(map[K]map[K]graph.Edge[K]),
		outOrder:         make(map[K][]K),
		inOrder:          make(map[K][]K),
	}
}

func (s *OrderedStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}

	s.vertices[k] = t
	s.vertexProperties[k] = &p
	s.order = append(s.order, k)

	return nil
}

func (s *OrderedStore[K, T]) ListVertices() ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return slices.Clone(s.order), nil
}

func (s *OrderedStore[K, T]) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.order), nil
}

func (s *OrderedStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		return v, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v, *s.vertexProperties[k], nil
}

func (s *OrderedStore[K, T]) RemoveVertex(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}
	if len(s.inEdges[k]) > 0 || len(s.outEdges[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.inEdges, k)
	delete(s.outEdges, k)
	delete(s.inOrder, k)
	delete(s.outOrder, k)
	delete(s.vertices, k)
	delete(s.vertexProperties, k)
	s.order = slices.DeleteFunc(s.order, func(o K) bool { return o == k })

	return nil
}

// UpdateVertex applies options to the properties of k.
func (s *OrderedStore[K, T]) UpdateVertex(k K, options ...func(*graph.VertexProperties)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.vertexProperties[k]
	if !ok {
		return graph.ErrVertexNotFound
	}
	for _, opt := range options {
		opt(p)
	}

	return nil
}

func (s *OrderedStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[sourceHash][targetHash]; ok {
		return graph.ErrEdgeAlreadyExists
	}

	if _, ok := s.outEdges[sourceHash]; !ok {
		s.outEdges[sourceHash] = make(map[K]graph.Edge[K])
	}
	s.outEdges[sourceHash][targetHash] = edge
	s.outOrder[sourceHash] = append(s.outOrder[sourceHash], targetHash)

	if _, ok := s.inEdges[targetHash]; !ok {
		s.inEdges[targetHash] = make(map[K]graph.Edge[K])
	}
	s.inEdges[targetHash][sourceHash] = edge
	s.inOrder[targetHash] = append(s.inOrder[targetHash], sourceHash)

	return nil
}

func (s *OrderedStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[sourceHash][targetHash]; !ok {
		return graph.ErrEdgeNotFound
	}

	s.outEdges[sourceHash][targetHash] = edge
	s.inEdges[targetHash][sourceHash] = edge

	return nil
}

func (s *OrderedStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.inEdges[targetHash], sourceHash)
	delete(s.outEdges[sourceHash], targetHash)
	s.inOrder[targetHash] = slices.DeleteFunc(s.inOrder[targetHash], func(o K) bool { return o == sourceHash })
	s.outOrder[sourceHash] = slices.DeleteFunc(s.outOrder[sourceHash], func(o K) bool { return o == targetHash })

	return nil
}

func (s *OrderedStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	edge, ok := s.outEdges[sourceHash][targetHash]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

// ListEdges returns the edges grouped by source, sources and targets both in
// insertion order.
func (s *OrderedStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	res := make([]graph.Edge[K], 0)
	for _, source := range s.order {
		for _, target := range s.outOrder[source] {
			res = append(res, s.outEdges[source][target])
		}
	}

	return res, nil
}

func (s *OrderedStore[K, T]) Predecessors(k K) []K {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return slices.Clone(s.inOrder[k])
}

func (s *OrderedStore[K, T]) Successors(k K) []K {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return slices.Clone(s.outOrder[k])
}

// CreatesCycle is a fastpath version of [graph.CreatesCycle] that walks the
// stored inEdges instead of building a predecessor map.
func (s *OrderedStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	if _, _, err := s.Vertex(source); err != nil {
		return false, fmt.Errorf("could not get vertex with hash %v: %w", source, err)
	}

	if _, _, err := s.Vertex(target); err != nil {
		return false, fmt.Errorf("could not get vertex with hash %v: %w", target, err)
	}

	if source == target {
		return true, nil
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	stack := []K{source}
	visited := make(map[K]struct{})
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[current]; ok {
			continue
		}
		// Reaching target from source through incoming edges means target
		// is already an ancestor of source.
		if current == target {
			return true, nil
		}
		visited[current] = struct{}{}
		stack = append(stack, s.inOrder[current]...)
	}

	return false, nil
}

var _ Store[string, string] = (*OrderedStore[string, string])(nil)
