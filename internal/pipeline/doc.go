// Package pipeline provides a framework for executing analysis steps in sequence.
//
// A run moves a batch of filings through fixed stages: document loading,
// risk section extraction, word scoring, sentence scoring, history
// recording and report synthesis. Each stage is a Step that receives the
// run's model.AnalysisResult and fills in its part.
//
// Document loading is the only concurrent stage. BatchProcessor reads and
// extracts files with bounded concurrency using errgroup and keeps results
// in input order, so every later stage sees the same deterministic batch.
//
// Per-document problems are recorded as outcomes and never stop a run. A
// step returns an error only when the whole stage cannot proceed.
package pipeline
