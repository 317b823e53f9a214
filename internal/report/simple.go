package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/riskscan/internal/lexical"
	"github.com/nao1215/riskscan/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs a short human-readable summary for terminal display.
type SimpleWriter struct {
	baseWriter

	// topWords is the number of negative words listed.
	topWords int

	// topSentences is the number of negative sentences listed.
	topSentences int

	// minConfidence is the score a listed negative sentence must exceed.
	minConfidence float64

	// verbose lists every document outcome.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables listing every document outcome.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithLimits sets how many words and sentences are listed.
func WithLimits(words, sentences int, minConfidence float64) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if words > 0 {
			w.topWords = words
		}
		if sentences > 0 {
			w.topSentences = sentences
		}
		w.minConfidence = minConfidence
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:    newBaseWriter(output),
		topWords:      DefaultTopWords,
		topSentences:  DefaultTopSentences,
		minConfidence: DefaultMinConfidence,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(result *model.AnalysisResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeDocuments(&sb, result)
	w.writeStages(&sb, result)
	w.writeWords(&sb, result)
	w.writeSentences(&sb, result)

	return w.output.Write([]byte(sb.String()))
}

func writeRule(sb *strings.Builder, ch, title string) {
	sb.WriteString(strings.Repeat(ch, ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(ch, ruleWidth))
	sb.WriteString("\n\n")
}

// writeHeader writes run information and counters.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.AnalysisResult) {
	sb.WriteString("\n")
	writeRule(sb, "=", "                        RISK ANALYSIS SUMMARY")

	fmt.Fprintf(sb, "Input:      %s\n", result.InputDir)
	fmt.Fprintf(sb, "Output:     %s\n", result.OutputDir)
	fmt.Fprintf(sb, "Documents:  %d (%d extracted, %d empty, %d failed)\n",
		len(result.Outcomes),
		result.Count(model.OutcomeSuccess),
		result.Count(model.OutcomeEmpty),
		result.Count(model.OutcomeFailed))
	fmt.Fprintf(sb, "Words:      %d\n", len(result.Words))
	fmt.Fprintf(sb, "Sentences:  %d\n", len(result.Sentences))
	if d := result.Duration(); d > 0 {
		fmt.Fprintf(sb, "Duration:   %s\n", d.Round(time.Millisecond))
	}
	sb.WriteString("\n")
}

// writeDocuments lists failed and empty documents, or all of them when verbose.
func (w *SimpleWriter) writeDocuments(sb *strings.Builder, result *model.AnalysisResult) {
	var lines []string
	for _, o := range result.Outcomes {
		if o.Status == model.OutcomeSuccess && !w.verbose {
			continue
		}
		line := fmt.Sprintf("  [%s] %s", strings.ToUpper(o.Status.String()), o.Path)
		if o.Reason != "" {
			line += ": " + o.Reason
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}

	writeRule(sb, "-", "DOCUMENTS")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\n")
}

// writeStages lists the stage timings when verbose.
func (w *SimpleWriter) writeStages(sb *strings.Builder, result *model.AnalysisResult) {
	if !w.verbose || len(result.Stages) == 0 {
		return
	}

	writeRule(sb, "-", "STAGES")
	for _, st := range result.Stages {
		fmt.Fprintf(sb, "  %-20s %s", st.Name, st.Elapsed.Round(time.Millisecond))
		if st.Error != "" {
			fmt.Fprintf(sb, "  (failed: %s)", st.Error)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeWords lists the most negative words.
func (w *SimpleWriter) writeWords(sb *strings.Builder, result *model.AnalysisResult) {
	if len(result.Words) == 0 {
		return
	}

	writeRule(sb, "-", "MOST NEGATIVE WORDS")
	for i, s := range lexical.NewPool(result.Words).TopNegative(w.topWords) {
		fmt.Fprintf(sb, "  %2d. %-20s %.3f  (%s)\n", i+1, s.Word, s.Negative, CleanSource(s.Document))
	}
	sb.WriteString("\n")
}

// writeSentences lists the most negative sentences.
func (w *SimpleWriter) writeSentences(sb *strings.Builder, result *model.AnalysisResult) {
	top := NegativeSentences(result.Sentences, w.minConfidence, w.topSentences)
	if len(top) == 0 {
		return
	}

	writeRule(sb, "-", "MOST NEGATIVE SENTENCES")
	for i, r := range top {
		fmt.Fprintf(sb, "  %d. [%.3f] %s (%s)\n", i+1, r.Score, truncateString(r.Sentence, 120), CleanSource(r.Document))
	}
	sb.WriteString("\n")
}
