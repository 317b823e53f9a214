package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/nao1215/riskscan/internal/model"
)

const (
	// compoundThreshold is the absolute compound score at which a sentence
	// stops being neutral.
	compoundThreshold = 0.05

	// negationScalar dampens and flips the valence of a negated word.
	negationScalar = -0.74

	// negationWindow is how many preceding tokens are searched for a negator.
	negationWindow = 3
)

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nor": {}, "neither": {},
	"without": {}, "cannot": {}, "isn't": {}, "aren't": {}, "wasn't": {},
	"don't": {}, "doesn't": {}, "didn't": {}, "won't": {}, "can't": {},
}

// Classification is the label and confidence assigned to one sentence.
type Classification struct {
	Label model.Label
	Score float64
}

// Classifier assigns a sentiment label to a sentence.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, sentence string) (Classification, error)
}

// LexiconClassifier classifies sentences by summing the valences of a custom
// lexicon with simple negation handling. It is used when a lexicon file
// replaces the VADER lexicon.
type LexiconClassifier struct {
	lexicon *Lexicon
}

var _ Classifier = (*LexiconClassifier)(nil)

// NewLexiconClassifier creates a classifier backed by lex.
func NewLexiconClassifier(lex *Lexicon) *LexiconClassifier {
	return &LexiconClassifier{lexicon: lex}
}

// Classify labels sentence negative, positive or neutral from its compound score.
func (c *LexiconClassifier) Classify(ctx context.Context, sentence string) (Classification, error) {
	if err := ctx.Err(); err != nil {
		return Classification{}, err
	}
	tokens := tokenize(sentence)
	if len(tokens) == 0 {
		return Classification{}, ErrEmptyInput
	}

	valences := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, ok := c.lexicon.Valence(tok)
		if !ok {
			continue
		}
		if negated(tokens, i) {
			v *= negationScalar
		}
		valences[i] = v
	}

	return classify(polarityOf(valences).Compound), nil
}

// classify maps a compound score to a label. The confidence is the absolute
// compound score for polar labels and one minus it for neutral.
func classify(compound float64) Classification {
	switch {
	case compound <= -compoundThreshold:
		return Classification{Label: model.LabelNegative, Score: math.Abs(compound)}
	case compound >= compoundThreshold:
		return Classification{Label: model.LabelPositive, Score: compound}
	default:
		return Classification{Label: model.LabelNeutral, Score: round(1-math.Abs(compound), 4)}
	}
}

func negated(tokens []string, i int) bool {
	for j := max(0, i-negationWindow); j < i; j++ {
		if _, ok := negators[tokens[j]]; ok {
			return true
		}
	}
	return false
}

// tokenize lowercases s and splits it into words, keeping apostrophes
// inside words.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
