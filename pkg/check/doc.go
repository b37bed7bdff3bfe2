// Package check holds the primitive validators shared by every pipeline step.
//
// Each primitive combines existence, kind, type and shape checking into one
// fallible call and reports violations as *model.SchemaError values. Access
// failures from the container are returned wrapped but are never schema
// errors.
//
// Steps describe their scalar parameters and fixed-shape results as a
// [Schema]: an ordered list of entries tagged with the format versions they
// apply to. The list is filtered once per step, which keeps version handling
// in one place.
package check
