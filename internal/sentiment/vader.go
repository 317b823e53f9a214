package sentiment

import (
	"context"
	"strings"

	"github.com/jonreiter/govader"
)

// Vader scores words and sentences with the VADER rule-based model.
// It is the default scorer and classifier. A Vader is safe for concurrent
// use because scoring only reads the analyzer's lexicon.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

var (
	_ LexicalScorer = (*Vader)(nil)
	_ Classifier    = (*Vader)(nil)
)

// NewVader creates a Vader backed by the standard VADER lexicon.
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the VADER polarity of a single word.
func (v *Vader) Score(word string) (Polarity, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Polarity{}, ErrEmptyInput
	}
	return v.polarity(word), nil
}

// Classify labels sentence from its VADER compound score.
func (v *Vader) Classify(ctx context.Context, sentence string) (Classification, error) {
	if err := ctx.Err(); err != nil {
		return Classification{}, err
	}
	if len(tokenize(sentence)) == 0 {
		return Classification{}, ErrEmptyInput
	}
	return classify(v.polarity(sentence).Compound), nil
}

func (v *Vader) polarity(text string) Polarity {
	s := v.analyzer.PolarityScores(text)
	return Polarity{
		Compound: round(s.Compound, 4),
		Negative: round(s.Negative, 3),
		Neutral:  round(s.Neutral, 3),
		Positive: round(s.Positive, 3),
	}
}
