package section

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nao1215/riskscan/internal/model"
)

const (
	// DefaultStartMarker matches the heading that opens the section.
	DefaultStartMarker = `Item\s+1A\s*[.:\-–—]?\s*Risk\s+Factors`

	// DefaultStopMarker matches the heading of the following section.
	DefaultStopMarker = `Item\s+1B\s*[.:\-–—]?\s*Unresolved`
)

// ErrInvalidMarker is returned when a marker pattern does not compile.
var ErrInvalidMarker = errors.New("invalid section marker")

var (
	blankLineRun  = regexp.MustCompile(`\n\s*\n`)
	whitespaceRun = regexp.MustCompile(`\s+`)

	defaultExtractor = mustNew(DefaultStartMarker, DefaultStopMarker)
)

// Extractor locates the risk-factors section between a start and a stop
// marker. An Extractor is safe for concurrent use.
type Extractor struct {
	pattern *regexp.Regexp
	body    int
}

// New creates an Extractor for the given start and stop marker patterns.
// Both are regular expressions and are matched case-insensitively.
func New(start, stop string) (*Extractor, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(stop) == "" {
		return nil, fmt.Errorf("%w: start and stop markers are required", ErrInvalidMarker)
	}
	re, err := regexp.Compile(`(?is)(?:` + start + `)(?P<body>.*?)(?:` + stop + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMarker, err)
	}
	return &Extractor{pattern: re, body: re.SubexpIndex("body")}, nil
}

func mustNew(start, stop string) *Extractor {
	e, err := New(start, stop)
	if err != nil {
		panic(err)
	}
	return e
}

// Extract returns the risk-factors section of text using the default markers.
func Extract(text string) model.RiskSection {
	return defaultExtractor.Extract(text)
}

// Extract returns the whitespace-normalized text strictly between the first
// start marker and the nearest following stop marker. The result is empty
// when either marker is missing.
func (e *Extractor) Extract(text string) model.RiskSection {
	m := e.pattern.FindStringSubmatch(text)
	if m == nil {
		return model.RiskSection{}
	}

	span := strings.TrimSpace(m[e.body])
	span = blankLineRun.ReplaceAllString(span, "\n\n")
	span = whitespaceRun.ReplaceAllString(span, " ")

	return model.RiskSection{Text: strings.TrimSpace(span)}
}

// ExtractDocument extracts the section of doc and attributes it to the
// document's risk file name.
func (e *Extractor) ExtractDocument(doc *model.Document) model.RiskSection {
	sec := e.Extract(doc.Text)
	sec.Document = doc.ID
	sec.Source = model.RiskFileName(filepath.Base(doc.TextFileName()))
	return sec
}
