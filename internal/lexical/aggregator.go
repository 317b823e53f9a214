package lexical

import (
	"cmp"
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/sentiment"
)

// DefaultTopNegative is the number of words kept in a per-document ranking.
const DefaultTopNegative = 30

// minWordLength is the minimum length of a qualifying token.
const minWordLength = 3

var (
	nonLetter     = regexp.MustCompile(`[^a-zA-Z\s]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Aggregator scores the vocabulary of risk sections.
type Aggregator struct {
	scorer    sentiment.LexicalScorer
	stopWords StopWords
	logger    *slog.Logger
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

// WithStopWords replaces the stop-word set.
func WithStopWords(s StopWords) Option {
	return func(a *Aggregator) {
		if s != nil {
			a.stopWords = s
		}
	}
}

// New creates an Aggregator that scores words with scorer.
func New(scorer sentiment.LexicalScorer, opts ...Option) *Aggregator {
	a := &Aggregator{
		scorer:    scorer,
		stopWords: NewStopWords(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Tokens returns the qualifying tokens of text in order of appearance.
func (a *Aggregator) Tokens(text string) []string {
	text = cases.Lower(language.English).String(text)
	text = nonLetter.ReplaceAllString(text, " ")
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}

	fields := strings.Split(text, " ")
	tokens := fields[:0]
	for _, w := range fields {
		if len(w) < minWordLength || a.stopWords.Contains(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// Frequencies returns each distinct qualifying word with its percentage of
// all qualifying tokens, in first-seen order.
func (a *Aggregator) Frequencies(text string) (words []string, freq map[string]float64) {
	tokens := a.Tokens(text)
	counts := make(map[string]int, len(tokens))
	for _, w := range tokens {
		if counts[w] == 0 {
			words = append(words, w)
		}
		counts[w]++
	}

	freq = make(map[string]float64, len(counts))
	for w, n := range counts {
		freq[w] = float64(n) / float64(len(tokens)) * 100
	}
	return words, freq
}

// ScoreDocument returns the word statistics of one section sorted by
// negative score, highest first. Ties keep first-seen order. A word whose
// scoring fails is logged and omitted. An empty section yields no words.
func (a *Aggregator) ScoreDocument(ctx context.Context, sec model.RiskSection) ([]model.WordStat, error) {
	if sec.Empty() {
		return nil, nil
	}

	words, freq := a.Frequencies(sec.Text)
	stats := make([]model.WordStat, 0, len(words))
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := a.scorer.Score(w)
		if err != nil {
			a.logger.Error("failed to score word", "word", w, "document", sec.Source, "error", err)
			continue
		}
		stats = append(stats, model.WordStat{
			Word:      w,
			Frequency: freq[w],
			Compound:  p.Compound,
			Negative:  p.Negative,
			Neutral:   p.Neutral,
			Positive:  p.Positive,
			Document:  sec.Source,
		})
	}

	SortByNegative(stats)
	return stats, nil
}

// Aggregate scores every section in order and pools the results.
func (a *Aggregator) Aggregate(ctx context.Context, sections []model.RiskSection) (*Pool, error) {
	pool := &Pool{}
	for _, sec := range sections {
		stats, err := a.ScoreDocument(ctx, sec)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("scored document words", "document", sec.Source, "words", len(stats))
		pool.Add(stats)
	}
	pool.Sort()
	return pool, nil
}

// SortByNegative stable-sorts stats by negative score, highest first.
func SortByNegative(stats []model.WordStat) {
	slices.SortStableFunc(stats, func(x, y model.WordStat) int {
		return cmp.Compare(y.Negative, x.Negative)
	})
}

// TopNegative returns the first n entries of stats, which must already be
// sorted by SortByNegative.
func TopNegative(stats []model.WordStat, n int) []model.WordStat {
	if n < 0 || n >= len(stats) {
		return stats
	}
	return stats[:n]
}
