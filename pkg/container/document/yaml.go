package document

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-kanaval/pkg/container"
)

// parseYAML also reads JSON, which YAML decodes as flow style.
func parseYAML(data []byte) (*node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	// An empty document has no content.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return newMapping(), nil
	}

	d := &yamlDecoder{expanding: make(map[*yaml.Node]bool)}

	return d.fromYAML(doc.Content[0])
}

// yamlDecoder follows aliases with the expansion limits of the yaml.v3
// decoder. Self-referencing anchors are rejected.
type yamlDecoder struct {
	// expanding holds the anchored nodes currently being expanded.
	expanding map[*yaml.Node]bool
	// decoded counts every converted node, aliased those reached through an
	// alias.
	decoded int
	aliased int
}

func aliasRatio(decoded int) float64 {
	const low, high = 400_000, 4_000_000
	switch {
	case decoded <= low:
		return 0.99
	case decoded >= high:
		return 0.10
	default:
		return 0.99 - 0.89*float64(decoded-low)/float64(high-low)
	}
}

func (d *yamlDecoder) fromYAML(yn *yaml.Node) (*node, error) {
	d.decoded++
	if len(d.expanding) > 0 {
		d.aliased++
	}
	if d.aliased > 100 && d.decoded > 1000 && float64(d.aliased)/float64(d.decoded) > aliasRatio(d.decoded) {
		return nil, errors.Wrap(ErrMalformed, "document expands too many aliases")
	}

	switch yn.Kind {
	case yaml.DocumentNode:
		if len(yn.Content) == 0 {
			return newMapping(), nil
		}
		return d.fromYAML(yn.Content[0])
	case yaml.AliasNode:
		if d.expanding[yn.Alias] {
			return nil, errors.Wrapf(ErrMalformed, "line %d: alias '%s' refers to itself", yn.Line, yn.Value)
		}
		d.expanding[yn.Alias] = true
		n, err := d.fromYAML(yn.Alias)
		delete(d.expanding, yn.Alias)
		return n, err
	case yaml.MappingNode:
		n := newMapping()
		for i := 0; i+1 < len(yn.Content); i += 2 {
			key := yn.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, errors.Wrapf(ErrMalformed, "line %d: keys must be scalars", key.Line)
			}
			child, err := d.fromYAML(yn.Content[i+1])
			if err != nil {
				return nil, err
			}
			if err := n.set(key.Value, child); err != nil {
				return nil, errors.WithMessagef(err, "line %d", key.Line)
			}
		}
		return n, nil
	case yaml.SequenceNode:
		n := &node{kind: listNode, items: make([]*node, 0, len(yn.Content))}
		for _, item := range yn.Content {
			child, err := d.fromYAML(item)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, child)
		}
		return n, nil
	case yaml.ScalarNode:
		return yamlScalar(yn)
	default:
		return nil, errors.Wrapf(ErrMalformed, "line %d: unexpected node", yn.Line)
	}
}

func yamlScalar(yn *yaml.Node) (*node, error) {
	n := &node{kind: scalarNode}
	switch yn.ShortTag() {
	case "!!int":
		var v int64
		if err := yn.Decode(&v); err != nil {
			return nil, errors.Wrapf(ErrMalformed, "line %d: %v", yn.Line, err)
		}
		n.dtype, n.value = container.Integer, v
	case "!!float":
		var v float64
		if err := yn.Decode(&v); err != nil {
			return nil, errors.Wrapf(ErrMalformed, "line %d: %v", yn.Line, err)
		}
		n.dtype, n.value = container.Float, v
	case "!!str":
		n.dtype, n.value = container.String, yn.Value
	default:
		return nil, errors.Wrapf(ErrMalformed, "line %d: unsupported scalar %s", yn.Line, yn.ShortTag())
	}

	return n, nil
}
