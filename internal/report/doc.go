// Package report turns an analysis result into reports and artifacts.
//
// Writers render a model.AnalysisResult:
//   - MarkdownWriter: the human-readable risk report (output.md)
//   - JSONWriter: the machine-readable summary (analysis/summary.json)
//   - SimpleWriter: a short plain text summary for the terminal
//
// Artifacts persists the intermediate files of a run: extracted texts, risk
// sections, and the word and sentence tables as CSV.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
