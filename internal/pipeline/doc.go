// Package pipeline is the command-line driver: it discovers source files,
// probes each one, seeds a request from the probe, applies the user's
// overrides, and runs conversions with bounded concurrency before printing
// a batch summary. Analyze is the read-only variant behind --probe.
package pipeline
