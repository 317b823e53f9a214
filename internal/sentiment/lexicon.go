package sentiment

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// normalizationAlpha approximates the maximum expected valence sum when
// mapping a raw score into [-1, 1].
const normalizationAlpha = 15.0

// Polarity is the sentiment of a word or text as VADER-style scores.
type Polarity struct {
	// Compound is the normalized overall polarity in [-1, 1].
	Compound float64
	// Negative, Neutral and Positive are proportions in [0, 1] summing to 1.
	Negative float64
	Neutral  float64
	Positive float64
}

// LexicalScorer scores a single word.
type LexicalScorer interface {
	Score(word string) (Polarity, error)
}

// Lexicon is a custom word valence table scored with VADER-style polarity
// proportions. A Lexicon is read-only after creation and safe for concurrent use.
type Lexicon struct {
	valence map[string]float64
}

var _ LexicalScorer = (*Lexicon)(nil)

// LoadLexicon reads a lexicon of "word<TAB>valence" lines.
// Blank lines and lines starting with '#' are ignored.
func LoadLexicon(r io.Reader) (*Lexicon, error) {
	lex := &Lexicon{valence: make(map[string]float64)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected word and valence", ErrInvalidLexicon, lineNo)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidLexicon, lineNo, err)
		}
		lex.valence[strings.ToLower(fields[0])] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}

	return lex, nil
}

// Len returns the number of entries.
func (l *Lexicon) Len() int {
	return len(l.valence)
}

// Valence returns the valence of word and whether it is listed.
func (l *Lexicon) Valence(word string) (float64, bool) {
	v, ok := l.valence[strings.ToLower(word)]
	return v, ok
}

// Score returns the polarity of a single word. Unlisted words are neutral.
func (l *Lexicon) Score(word string) (Polarity, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Polarity{}, ErrEmptyInput
	}
	v, _ := l.Valence(word)
	return polarityOf([]float64{v}), nil
}

// polarityOf computes VADER-style scores for a sequence of valences.
// Each positive valence contributes v+1 to the positive mass, each negative
// valence v-1 to the negative mass, and each zero one unit of neutral mass.
func polarityOf(valences []float64) Polarity {
	var sum, pos, neg, neu float64
	for _, v := range valences {
		sum += v
		switch {
		case v > 0:
			pos += v + 1
		case v < 0:
			neg += v - 1
		default:
			neu++
		}
	}

	total := pos + math.Abs(neg) + neu
	if total == 0 {
		return Polarity{Neutral: 1}
	}

	return Polarity{
		Compound: round(normalize(sum), 4),
		Negative: round(math.Abs(neg)/total, 3),
		Neutral:  round(neu/total, 3),
		Positive: round(pos/total, 3),
	}
}

func normalize(score float64) float64 {
	n := score / math.Sqrt(score*score+normalizationAlpha)
	return math.Max(-1, math.Min(1, n))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
