package check

import (
	"fmt"
	"strings"

	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// Rule is a semantic constraint on a loaded scalar. value is an int64, a
// float64 or a string depending on the field type.
type Rule func(name string, value any) error

func violation(name, format string, args ...any) error {
	return model.NewSchemaError(model.KindConstraintViolation, name, format, args...)
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func subject(desc, name string) string {
	if desc == "" {
		return fmt.Sprintf("'%s'", name)
	}

	return desc
}

// Positive requires a number strictly above zero. desc, when set, replaces the
// quoted field name at the start of the message.
func Positive(desc string) Rule {
	return func(name string, value any) error {
		if v, ok := number(value); !ok || v <= 0 {
			if desc == "" {
				return violation(name, "'%s' must be positive", name)
			}
			return violation(name, "%s must be positive in '%s'", desc, name)
		}
		return nil
	}
}

// NonNegative requires a number at or above zero.
func NonNegative(desc string) Rule {
	return func(name string, value any) error {
		if v, ok := number(value); !ok || v < 0 {
			return violation(name, "%s must be non-negative", subject(desc, name))
		}
		return nil
	}
}

// Between requires a number in the closed interval [lo, hi].
func Between(lo, hi float64) Rule {
	return func(name string, value any) error {
		if v, ok := number(value); !ok || v < lo || v > hi {
			return violation(name, "'%s' must lie in [%g, %g]", name, lo, hi)
		}
		return nil
	}
}

// Flag requires an integer boolean, 0 or 1.
func Flag() Rule {
	return func(name string, value any) error {
		if v, ok := value.(int64); !ok || (v != 0 && v != 1) {
			return violation(name, "'%s' must be 0 or 1", name)
		}
		return nil
	}
}

// OneOf requires a string from a closed set.
func OneOf(allowed ...string) Rule {
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = "'" + a + "'"
	}
	choices := quoted[0]
	if len(quoted) > 1 {
		choices = strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
	}

	return func(name string, value any) error {
		s, _ := value.(string)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return violation(name, "unrecognized value '%s' for '%s', must be one of %s", s, name, choices)
	}
}
