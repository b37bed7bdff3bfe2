// Package model provides the data structures shared by the pipeline package,
// the step validators and the pipeline options.
// It defines the validation context threaded between steps, the step contract,
// the hooks pipeline options implement, and the structured schema errors.
package model
