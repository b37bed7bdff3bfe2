// Package document reads state files written as YAML, JSON or TOML documents
// into a container tree.
//
// A mapping is a group unless it holds a "dtype" key, in which case it is a
// leaf:
//
//	pcs:
//	  dtype: float
//	  shape: [2, 0]
//	  data: [[], []]
//
// "data" is a scalar or nested rectangular lists and "shape" is only needed
// for empty multi-dimensional arrays. A bare scalar or list is a leaf whose
// type is inferred from its values, empty lists are float.
package document

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/container"
)

// Format names a document syntax.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
	TOML Format = "toml"
)

var (
	// ErrUnsupportedFormat is returned for a file extension with no decoder.
	ErrUnsupportedFormat = errors.Wrap(container.ErrIO, "unsupported document format")
	// ErrMalformed is returned when a document does not describe a container
	// tree.
	ErrMalformed = errors.Wrap(container.ErrIO, "malformed document")
)

// FormatOf picks the format from the extension of path.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	case ".toml":
		return TOML, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "'%s'", ext)
	}
}

// Open reads the document at path and returns its root group.
func Open(path string) (container.Group, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(container.ErrIO, "unable to read %s: %v", path, err)
	}
	root, err := Decode(data, format)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}

	return root, nil
}

// Decode parses a document held in memory.
func Decode(data []byte, format Format) (*container.MemGroup, error) {
	var (
		tree *node
		err  error
	)
	switch format {
	case YAML, JSON:
		tree, err = parseYAML(data)
	case TOML:
		tree, err = parseTOML(data)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "'%s'", format)
	}
	if err != nil {
		return nil, err
	}
	if tree.kind != mappingNode {
		return nil, errors.Wrap(ErrMalformed, "root should be a mapping")
	}

	root := container.NewMemory()
	if err := build(root, tree); err != nil {
		return nil, err
	}

	return root, nil
}
