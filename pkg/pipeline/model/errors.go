package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Programming errors. These never describe the state file, they describe a
// misuse of the validators.
var (
	// ErrFieldAlreadySet is returned when a delta writes a context field that
	// an earlier step already set.
	ErrFieldAlreadySet = errors.New("context field already set")
	// ErrBadVersion is returned for an unparsable format version.
	ErrBadVersion = errors.New("invalid format version")
)

// Kind classifies a schema violation.
type Kind uint8

const (
	// KindMissingNode means a required group or dataset is absent.
	KindMissingNode Kind = iota + 1
	// KindWrongKind means a group was found where a dataset was expected, or
	// the reverse.
	KindWrongKind
	// KindTypeMismatch means a dataset has the wrong primitive type.
	KindTypeMismatch
	// KindShapeMismatch means a dataset has the wrong rank or extent.
	KindShapeMismatch
	// KindNotScalar means a scalar dataset has one or more dimensions.
	KindNotScalar
	// KindConstraintViolation means a value broke a semantic rule.
	KindConstraintViolation
	// KindStructuralMismatch means a keyed group has the wrong children.
	KindStructuralMismatch
)

var kindNames = map[Kind]string{
	KindMissingNode:         "missing node",
	KindWrongKind:           "wrong kind",
	KindTypeMismatch:        "type mismatch",
	KindShapeMismatch:       "shape mismatch",
	KindNotScalar:           "not scalar",
	KindConstraintViolation: "constraint violation",
	KindStructuralMismatch:  "structural mismatch",
}

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// SchemaError is the terminal cause of a validation failure.
type SchemaError struct {
	Kind Kind
	// Node is the name of the offending group or dataset, if any.
	Node    string
	Message string
}

// Sentinels for errors.Is matching on the kind alone.
var (
	ErrMissingNode         = &SchemaError{Kind: KindMissingNode}
	ErrWrongKind           = &SchemaError{Kind: KindWrongKind}
	ErrTypeMismatch        = &SchemaError{Kind: KindTypeMismatch}
	ErrShapeMismatch       = &SchemaError{Kind: KindShapeMismatch}
	ErrNotScalar           = &SchemaError{Kind: KindNotScalar}
	ErrConstraintViolation = &SchemaError{Kind: KindConstraintViolation}
	ErrStructuralMismatch  = &SchemaError{Kind: KindStructuralMismatch}
)

// NewSchemaError builds a terminal schema error.
func NewSchemaError(kind Kind, node, format string, args ...any) error {
	return &SchemaError{Kind: kind, Node: node, Message: fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return e.Kind.String()
	}

	return e.Message
}

// Is matches a kind sentinel: a SchemaError with only Kind set.
func (e *SchemaError) Is(target error) bool {
	t, ok := target.(*SchemaError)
	if !ok || e == nil || t == nil {
		return false
	}

	return t.Node == "" && t.Message == "" && t.Kind == e.Kind
}

// KindOf returns the kind of the schema violation carried by err, or 0 when
// err is not a schema violation.
func KindOf(err error) Kind {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Kind
	}

	return 0
}

// IsSchemaError reports whether err describes a state file violation rather
// than an access failure or a programming error.
func IsSchemaError(err error) bool {
	return KindOf(err) != 0
}

// Chain is an error annotated with the scopes it crossed on its way out.
// Scopes are kept as a list and only joined when the error is printed.
type Chain struct {
	cause error
	// trail is innermost first.
	trail []string
}

// Wrap annotates err with the scope msg. It returns nil for a nil err.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	chain, ok := err.(*Chain)
	if !ok {
		return &Chain{cause: err, trail: []string{msg}}
	}
	trail := make([]string, len(chain.trail), len(chain.trail)+1)
	copy(trail, chain.trail)

	return &Chain{cause: chain.cause, trail: append(trail, msg)}
}

// Wrapf is Wrap with a formatted scope.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return Wrap(err, fmt.Sprintf(format, args...))
}

// Trail returns the scopes outermost first.
func (c *Chain) Trail() []string {
	out := make([]string, len(c.trail))
	for i, msg := range c.trail {
		out[len(c.trail)-1-i] = msg
	}

	return out
}

// Cause returns the terminal error. It satisfies the github.com/pkg/errors
// causer interface.
func (c *Chain) Cause() error { return c.cause }

// Unwrap returns the terminal error.
func (c *Chain) Unwrap() error { return c.cause }

// Error renders the path from the outermost scope down to the cause.
func (c *Chain) Error() string {
	var b strings.Builder
	for i, msg := range c.Trail() {
		if i > 0 {
			b.WriteString("\n  - ")
		}
		b.WriteString(msg)
	}
	b.WriteString("\n  - ")
	b.WriteString(c.cause.Error())

	return b.String()
}
