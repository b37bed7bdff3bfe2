package pipeline

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/internal/store"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// dependencies is the step graph: an edge goes from a producer to every later
// step that requires one of the fields it produces.
type dependencies struct {
	store store.Store[string, model.Step]
	graph graph.Graph[string, model.Step]
	index map[string]int
}

func stepHash(s model.Step) string {
	return s.Name
}

func newDependencies(steps []model.Step) (*dependencies, error) {
	st := store.NewOrdered[string, model.Step]()
	deps := &dependencies{
		store: st,
		graph: graph.NewWithStore(stepHash, st, graph.Directed(), graph.Acyclic(), graph.PreventCycles()),
		index: make(map[string]int, len(steps)),
	}

	for i, s := range steps {
		err := deps.graph.AddVertex(s, graph.VertexAttribute("shape", "box"))
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, errors.Wrapf(ErrDuplicateStep, "'%s'", s.Name)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add step '%s'", s.Name)
		}
		deps.index[s.Name] = i
	}

	for i, consumer := range steps {
		for _, producer := range steps[:i] {
			shared := producer.Produces & consumer.Requires
			if shared == 0 {
				continue
			}
			err := deps.graph.AddEdge(producer.Name, consumer.Name, graph.EdgeAttribute("label", shared.String()))
			if err != nil {
				return nil, errors.Wrapf(err, "unable to link '%s' to '%s'", producer.Name, consumer.Name)
			}
		}
		for _, producer := range steps[i+1:] {
			if late := producer.Produces & consumer.Requires; late != 0 {
				return nil, errors.Wrapf(ErrStepOrder, "'%s' reads %s from '%s'", consumer.Name, late, producer.Name)
			}
		}
	}

	return deps, nil
}

// producers returns the direct producers of name in pipeline order.
func (d *dependencies) producers(name string) []string {
	return d.store.Predecessors(name)
}

// consumers returns the direct consumers of name in pipeline order.
func (d *dependencies) consumers(name string) []string {
	return d.store.Successors(name)
}

// closure returns the named steps plus every step they transitively depend
// on.
func (d *dependencies) closure(names []string) (map[string]bool, error) {
	out := make(map[string]bool, len(names))
	stack := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := d.index[name]; !ok {
			return nil, errors.Wrapf(ErrUnknownStep, "'%s'", name)
		}
		stack = append(stack, name)
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out[current] {
			continue
		}
		out[current] = true
		stack = append(stack, d.producers(current)...)
	}

	return out, nil
}
