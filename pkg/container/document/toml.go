package document

import (
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/container"
)

// parseTOML keeps the order in which keys are defined in the document.
func parseTOML(data []byte) (*node, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}

	order := make(map[string][]string)
	for _, key := range md.Keys() {
		if len(key) == 0 {
			continue
		}
		parent := tomlPath(key[:len(key)-1])
		name := key[len(key)-1]
		if !slices.Contains(order[parent], name) {
			order[parent] = append(order[parent], name)
		}
	}

	return fromTOML(raw, nil, order)
}

func tomlPath(key []string) string {
	return strings.Join(key, "\x00")
}

func fromTOML(v any, key []string, order map[string][]string) (*node, error) {
	switch x := v.(type) {
	case map[string]any:
		n := newMapping()
		for _, name := range tomlKeys(x, order[tomlPath(key)]) {
			child, err := fromTOML(x[name], append(slices.Clone(key), name), order)
			if err != nil {
				return nil, err
			}
			if err := n.set(name, child); err != nil {
				return nil, err
			}
		}
		return n, nil
	case []map[string]any:
		return nil, errors.Wrapf(ErrMalformed, "'%s': arrays of tables are not supported", strings.Join(key, "."))
	case []any:
		n := &node{kind: listNode, items: make([]*node, 0, len(x))}
		for _, item := range x {
			child, err := fromTOML(item, key, order)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, child)
		}
		return n, nil
	case int64:
		return &node{kind: scalarNode, dtype: container.Integer, value: x}, nil
	case float64:
		return &node{kind: scalarNode, dtype: container.Float, value: x}, nil
	case string:
		return &node{kind: scalarNode, dtype: container.String, value: x}, nil
	default:
		return nil, errors.Wrapf(ErrMalformed, "'%s': unsupported value of type %T", strings.Join(key, "."), v)
	}
}

// tomlKeys returns the keys of m in definition order. Keys the metadata does
// not list come last, sorted.
func tomlKeys(m map[string]any, defined []string) []string {
	keys := make([]string, 0, len(m))
	for _, name := range defined {
		if _, ok := m[name]; ok {
			keys = append(keys, name)
		}
	}
	var rest []string
	for name := range m {
		if !slices.Contains(keys, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)

	return append(keys, rest...)
}
