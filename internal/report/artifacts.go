package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/sentence"
)

// Artifact directory and file names below the output directory.
const (
	ExtractedDir       = "extracted_texts"
	RiskDir            = "risk_factors"
	AnalysisDir        = "analysis"
	WordFrequencyFile  = "word_frequencies_summary.csv"
	SentenceFile       = "sentence_sentiment_summary.csv"
	SummaryFile        = "summary.json"
	ReportFile         = "output.md"
	sentenceFilePrefix = "sentence_sentiment_"
	negativeFilePrefix = "negative_words_"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Word and sentence CSV headers.
var (
	wordHeader     = []string{"word", "frequency", "compound", "negative", "neutral", "positive", "file"}
	sentenceHeader = []string{"label", "score", "sentence", "file"}
)

// Artifacts writes the files of one run below an output directory.
type Artifacts struct {
	root string
}

// NewArtifacts creates an Artifacts rooted at dir.
func NewArtifacts(dir string) *Artifacts {
	return &Artifacts{root: dir}
}

// Root returns the output directory.
func (a *Artifacts) Root() string {
	return a.root
}

// Prepare creates the output directory tree. Failure here means the output
// directory is unusable and the run cannot continue.
func (a *Artifacts) Prepare() error {
	for _, dir := range []string{a.root, a.path(ExtractedDir), a.path(RiskDir), a.path(AnalysisDir)} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}

func (a *Artifacts) path(elem ...string) string {
	return filepath.Join(append([]string{a.root}, elem...)...)
}

// WriteExtractedText saves the normalized text of doc and returns its path.
func (a *Artifacts) WriteExtractedText(doc *model.Document) (string, error) {
	path := a.path(ExtractedDir, doc.TextFileName())
	if err := writeFile(path, doc.Text); err != nil {
		return "", err
	}
	return path, nil
}

// WriteRiskSection saves a non-empty section and returns its path.
// Empty sections are not written and return an empty path.
func (a *Artifacts) WriteRiskSection(sec model.RiskSection) (string, error) {
	if sec.Empty() {
		return "", nil
	}
	path := a.path(RiskDir, sec.Source)
	if err := writeFile(path, sec.Text); err != nil {
		return "", err
	}
	return path, nil
}

// WriteWordFrequencies saves the pooled word statistics and returns the
// path. Nothing is written when stats is empty.
func (a *Artifacts) WriteWordFrequencies(stats []model.WordStat) (string, error) {
	if len(stats) == 0 {
		return "", nil
	}
	path := a.path(AnalysisDir, WordFrequencyFile)
	if err := writeWordCSV(path, stats); err != nil {
		return "", err
	}
	return path, nil
}

// WriteDocumentNegativeWords saves the top negative words of one document
// to "analysis/negative_words_<source>.csv" and returns the path.
func (a *Artifacts) WriteDocumentNegativeWords(source string, stats []model.WordStat) (string, error) {
	if len(stats) == 0 {
		return "", nil
	}
	base := strings.TrimSuffix(source, filepath.Ext(source))
	path := a.path(AnalysisDir, negativeFilePrefix+base+".csv")
	if err := writeWordCSV(path, stats); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSentences saves the ranked sentence records to the summary CSV and
// one CSV per source document. It returns the summary path. Nothing is
// written when records is empty.
func (a *Artifacts) WriteSentences(records []model.SentenceRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	path := a.path(AnalysisDir, SentenceFile)
	if err := writeSentenceCSV(path, records); err != nil {
		return "", err
	}

	var sources []string
	seen := make(map[string]bool)
	for _, r := range records {
		if !seen[r.Document] {
			seen[r.Document] = true
			sources = append(sources, r.Document)
		}
	}
	for _, src := range sources {
		if err := writeSentenceCSV(a.DocumentSentencePath(src), sentence.ByDocument(records, src)); err != nil {
			return "", err
		}
	}
	return path, nil
}

// DocumentSentencePath returns the per-document sentence CSV path for a
// risk section source name, "analysis/sentence_sentiment_<source>.csv".
func (a *Artifacts) DocumentSentencePath(source string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return a.path(AnalysisDir, sentenceFilePrefix+base+".csv")
}

// WriteSummary saves the JSON representation of result.
func (a *Artifacts) WriteSummary(result *model.AnalysisResult, version string) (string, error) {
	path := a.path(AnalysisDir, SummaryFile)
	err := withFile(path, func(f io.Writer) error {
		_, err := NewJSONWriter(f, WithPrettyPrint(), WithVersion(version)).Write(result)
		return err
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteReport renders the Markdown report to output.md.
func (a *Artifacts) WriteReport(result *model.AnalysisResult, opts ...MarkdownOption) (string, error) {
	path := a.path(ReportFile)
	err := withFile(path, func(f io.Writer) error {
		_, err := NewMarkdownWriter(f, opts...).Write(result)
		return err
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func writeWordCSV(path string, stats []model.WordStat) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write(wordHeader); err != nil {
			return err
		}
		for _, s := range stats {
			if err := w.Write([]string{
				s.Word,
				formatFloat(s.Frequency),
				formatFloat(s.Compound),
				formatFloat(s.Negative),
				formatFloat(s.Neutral),
				formatFloat(s.Positive),
				s.Document,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeSentenceCSV(path string, records []model.SentenceRecord) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write(sentenceHeader); err != nil {
			return err
		}
		for _, r := range records {
			if err := w.Write([]string{r.Label.String(), formatFloat(r.Score), r.Sentence, r.Document}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, fill func(*csv.Writer) error) error {
	return withFile(path, func(f io.Writer) error {
		w := csv.NewWriter(f)
		if err := fill(w); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	})
}

func withFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm) //nolint:gosec // path is built from the output directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := fn(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
