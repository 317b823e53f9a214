package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/riskscan/internal/lexical"
	"github.com/nao1215/riskscan/internal/model"
)

// JSONWriter outputs the analysis result in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is the riskscan version recorded in the output.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport wraps the result with derived summaries.
type JSONReport struct {
	// Version is the riskscan version that generated this report.
	Version string `json:"version,omitempty"`

	// Summary holds the outcome counters.
	Summary JSONSummary `json:"summary"`

	// TopFrequent is the aggregated word frequency ranking.
	TopFrequent []lexical.WordFrequency `json:"top_frequent,omitempty"`

	// Result is the full analysis result.
	Result *model.AnalysisResult `json:"result"`
}

// JSONSummary counts documents and findings.
type JSONSummary struct {
	Documents         int `json:"documents"`
	Extracted         int `json:"extracted"`
	Empty             int `json:"empty"`
	Failed            int `json:"failed"`
	Words             int `json:"words"`
	Sentences         int `json:"sentences"`
	NegativeSentences int `json:"negative_sentences"`
}

// NewJSONReport creates the JSON representation of result.
func NewJSONReport(result *model.AnalysisResult, version string) *JSONReport {
	negatives := 0
	for _, r := range result.Sentences {
		if r.Label == model.LabelNegative {
			negatives++
		}
	}

	return &JSONReport{
		Version: version,
		Summary: JSONSummary{
			Documents:         len(result.Outcomes),
			Extracted:         result.Count(model.OutcomeSuccess),
			Empty:             result.Count(model.OutcomeEmpty),
			Failed:            result.Count(model.OutcomeFailed),
			Words:             len(result.Words),
			Sentences:         len(result.Sentences),
			NegativeSentences: negatives,
		},
		TopFrequent: lexical.TopFrequent(result.Words, DefaultFrequentWords),
		Result:      result,
	}
}

// Write outputs the result in JSON format.
func (w *JSONWriter) Write(result *model.AnalysisResult) (int, error) {
	return w.writeJSON(NewJSONReport(result, w.version))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
