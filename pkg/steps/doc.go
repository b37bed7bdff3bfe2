// Package steps holds the schema of every step of the analysis pipeline.
//
// Each step is a model.Step: a parameters phase checking the step's settings
// and a results phase checking its outputs against the sizes carried by the
// validation context. Steps never open their own top-level group, the
// orchestrator in package pipeline does that and wraps their errors.
package steps
