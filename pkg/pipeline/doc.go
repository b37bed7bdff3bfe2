// Package pipeline validates a state file step by step.
//
// A Pipeline holds an ordered list of steps. Each step opens its own group at
// the root of the file, checks its "parameters" then its "results" subgroup,
// and may publish scalars (the number of cells, the number of principal
// components...) that later steps use to size their own datasets. Those
// scalars live in a model.Context that the pipeline threads from one step to
// the next.
//
// Steps are linked by a dependency graph: an edge goes from a step to every
// later step that reads one of the scalars it produces. The graph decides
// which steps run when only a subset is requested, and whether a step is "in
// use", that is whether its optional outputs are needed downstream.
//
// By default the pipeline stops at the first failing step and returns its
// error, annotated with the scopes it crossed. With BestEffort it keeps going,
// skips the steps whose inputs could not be computed, and returns a *Report
// listing every failure.
//
// The caller's context is never modified: Validate works on a copy and
// returns it once every step passed.
package pipeline
