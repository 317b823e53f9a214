package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/riskscan/internal/lexical"
	"github.com/nao1215/riskscan/internal/model"
)

// Default report limits.
const (
	DefaultTopWords      = 10
	DefaultTopSentences  = 5
	DefaultFrequentWords = 20
	DefaultMinConfidence = 0.5
)

// maxPieSlices caps the pie chart so labels stay readable.
const maxPieSlices = 8

// MarkdownWriter outputs the risk report in Markdown format.
//
// Sections appear in a fixed order and only when their data exists:
// most frequent words, most negative words, most negative sentences and
// the extraction summary. No section is ever rendered without content.
type MarkdownWriter struct {
	baseWriter

	topWords      int
	topSentences  int
	frequentWords int
	minConfidence float64
	now           func() time.Time
}

// MarkdownOption configures a MarkdownWriter.
type MarkdownOption func(*MarkdownWriter)

// WithTopWords sets how many negative words are listed.
func WithTopWords(n int) MarkdownOption {
	return func(w *MarkdownWriter) {
		if n > 0 {
			w.topWords = n
		}
	}
}

// WithTopSentences sets how many negative sentences are listed.
func WithTopSentences(n int) MarkdownOption {
	return func(w *MarkdownWriter) {
		if n > 0 {
			w.topSentences = n
		}
	}
}

// WithFrequentWords sets how many words the frequency table shows.
func WithFrequentWords(n int) MarkdownOption {
	return func(w *MarkdownWriter) {
		if n > 0 {
			w.frequentWords = n
		}
	}
}

// WithMinConfidence sets the score a negative sentence must exceed to be listed.
func WithMinConfidence(v float64) MarkdownOption {
	return func(w *MarkdownWriter) {
		w.minConfidence = v
	}
}

// WithClock sets the time source for the generation timestamp.
func WithClock(now func() time.Time) MarkdownOption {
	return func(w *MarkdownWriter) {
		if now != nil {
			w.now = now
		}
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter:    newBaseWriter(output),
		topWords:      DefaultTopWords,
		topSentences:  DefaultTopSentences,
		frequentWords: DefaultFrequentWords,
		minConfidence: DefaultMinConfidence,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(result *model.AnalysisResult) (int, error) {
	md := w.build(result)
	return len(md.String()), md.Build()
}

// Build returns the report as a string without writing it.
func (w *MarkdownWriter) Build(result *model.AnalysisResult) string {
	return w.build(result).String()
}

func (w *MarkdownWriter) build(result *model.AnalysisResult) *markdown.Markdown {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md)
	w.writeFrequentWords(md, result)
	w.writeNegativeWords(md, result)
	w.writeNegativeSentences(md, result)
	w.writeExtractionSummary(md, result)
	w.writeFooter(md)

	return md
}

// writeHeader writes the title and generation timestamp.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown) {
	md.H1("Risk Analysis Report")
	md.PlainText("")
	md.PlainTextf("Generated on: %s", w.now().Format(time.DateTime))
	md.PlainText("")
}

// writeFrequentWords writes the frequency table and pie chart. It is only
// present when the word frequency artifact was produced.
func (w *MarkdownWriter) writeFrequentWords(md *markdown.Markdown, result *model.AnalysisResult) {
	if result.FrequencyArtifact == "" || len(result.Words) == 0 {
		return
	}

	top := lexical.TopFrequent(result.Words, w.frequentWords)

	md.H2("Most Frequent Words")
	md.PlainText("")
	md.PlainText("The words that occur most often in the risk factors, regardless of their sentiment. " +
		"Frequency is the mean share of qualifying words across documents.")
	md.PlainText("")

	rows := make([][]string, len(top))
	for i, wf := range top {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			wf.Word,
			fmt.Sprintf("%.3f", wf.Frequency),
			strconv.Itoa(wf.Documents),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Frequency (%)", "Documents"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Most Frequent Words"),
		piechart.WithShowData(true),
	)
	for i, wf := range top {
		if i == maxPieSlices {
			break
		}
		chart.LabelAndFloatValue(wf.Word, wf.Frequency)
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeNegativeWords writes the most negative words of the pool.
func (w *MarkdownWriter) writeNegativeWords(md *markdown.Markdown, result *model.AnalysisResult) {
	if len(result.Words) == 0 {
		return
	}

	pool := lexical.NewPool(result.Words)
	top := pool.TopNegative(w.topWords)

	md.H2("Most Negative Words")
	md.PlainText("")
	md.H3(fmt.Sprintf("Top %d Most Negative Words", w.topWords))
	md.PlainText("")

	items := make([]string, len(top))
	for i, s := range top {
		items[i] = fmt.Sprintf("%s (Negative Score: %.3f)", markdown.Bold(s.Word), s.Negative)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeNegativeSentences writes the most confidently negative sentences.
func (w *MarkdownWriter) writeNegativeSentences(md *markdown.Markdown, result *model.AnalysisResult) {
	top := NegativeSentences(result.Sentences, w.minConfidence, w.topSentences)
	if len(top) == 0 {
		return
	}

	md.H2("Most Negative Sentences")
	md.PlainText("")

	items := make([]string, len(top))
	for i, r := range top {
		items[i] = fmt.Sprintf("%s - %s (from %s)",
			markdown.Bold(fmt.Sprintf("Score: %.3f", r.Score)), r.Sentence, CleanSource(r.Document))
	}
	md.OrderedList(items...)
	md.PlainText("")
}

// writeExtractionSummary writes one row per attempted document.
func (w *MarkdownWriter) writeExtractionSummary(md *markdown.Markdown, result *model.AnalysisResult) {
	if len(result.Outcomes) == 0 {
		return
	}

	md.H2("Extraction Summary")
	md.PlainText("")

	rows := make([][]string, len(result.Outcomes))
	for i, o := range result.Outcomes {
		name, year := o.Path, "-"
		if o.Document != nil {
			name = o.Document.ID
			year = strconv.Itoa(o.Document.Year)
		}
		detail := o.Reason
		if detail == "" {
			detail = "-"
		}
		rows[i] = []string{name, year, statusText(o.Status), truncateString(detail, 60)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Document", "Year", "Status", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText(markdown.Italic("Report generated by riskscan"))
}

func statusText(s model.OutcomeStatus) string {
	switch s {
	case model.OutcomeSuccess:
		return "✅ Extracted"
	case model.OutcomeEmpty:
		return "⚠️ No risk factors"
	default:
		return "❌ Failed"
	}
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
