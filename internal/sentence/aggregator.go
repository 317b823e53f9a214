package sentence

import (
	"cmp"
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"

	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/sentiment"
)

// minWords is the smallest word count a sentence needs to be scored.
const minWords = 4

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	numberMarker  = regexp.MustCompile(`^\d+\.\s*`)
	letterMarker  = regexp.MustCompile(`^[A-Z]\.\s*`)
)

// Aggregator classifies the unique sentences of a batch of risk sections.
type Aggregator struct {
	classifier sentiment.Classifier
	seen       *Seen
	logger     *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSeen shares a dedup set between aggregators.
func WithSeen(seen *Seen) Option {
	return func(a *Aggregator) {
		if seen != nil {
			a.seen = seen
		}
	}
}

// New creates an Aggregator that classifies with classifier.
func New(classifier sentiment.Classifier, opts ...Option) *Aggregator {
	a := &Aggregator{
		classifier: classifier,
		seen:       NewSeen(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Clean collapses whitespace and strips one leading numeric list marker
// followed by one leading single-letter marker.
func Clean(s string) string {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	s = numberMarker.ReplaceAllString(s, "")
	s = letterMarker.ReplaceAllString(s, "")
	return s
}

// Split returns the cleaned sentences of text that have more than three
// words, in order of appearance. Duplicates are kept.
func Split(text string) []string {
	var out []string
	it := sentences.FromString(text)
	for it.Next() {
		s := Clean(it.Value())
		if len(strings.Fields(s)) < minWords {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ScoreDocument classifies the sentences of sec not yet seen in this batch.
// A sentence whose classification fails is logged and omitted; it remains
// marked as seen.
func (a *Aggregator) ScoreDocument(ctx context.Context, sec model.RiskSection) ([]model.SentenceRecord, error) {
	if sec.Empty() {
		return nil, nil
	}

	var records []model.SentenceRecord
	for _, s := range Split(sec.Text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !a.seen.CheckAndInsert(s) {
			continue
		}

		c, err := a.classifier.Classify(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Error("failed to classify sentence", "document", sec.Source, "sentence", s, "error", err)
			continue
		}
		records = append(records, model.SentenceRecord{
			Sentence: s,
			Label:    c.Label,
			Score:    c.Score,
			Document: sec.Source,
		})
	}
	return records, nil
}

// Aggregate classifies every section in batch order and returns the ranked
// union of their records.
func (a *Aggregator) Aggregate(ctx context.Context, sections []model.RiskSection) ([]model.SentenceRecord, error) {
	var all []model.SentenceRecord
	for _, sec := range sections {
		records, err := a.ScoreDocument(ctx, sec)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("scored document sentences", "document", sec.Source, "sentences", len(records))
		all = append(all, records...)
	}
	Rank(all)
	return all, nil
}

// Rank stable-sorts records by negative score, highest first. Records not
// labeled negative rank as zero and keep their relative order.
func Rank(records []model.SentenceRecord) {
	slices.SortStableFunc(records, func(x, y model.SentenceRecord) int {
		return cmp.Compare(y.NegativeScore(), x.NegativeScore())
	})
}

// ByDocument returns the records attributed to document, in input order.
func ByDocument(records []model.SentenceRecord, document string) []model.SentenceRecord {
	var out []model.SentenceRecord
	for _, r := range records {
		if r.Document == document {
			out = append(out, r)
		}
	}
	return out
}
