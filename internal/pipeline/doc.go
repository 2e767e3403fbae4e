// Package pipeline dispatches discovered file pairs to a bounded worker
// pool, reconstructs and writes each codon alignment, and reports batch
// statistics.
//
// Run is the batch entry point; Analyze reads every pair without
// reconstructing; Watch re-runs a batch whenever the input directories
// change.
package pipeline
