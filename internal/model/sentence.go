package model

import "strings"

// Label is the sentiment class assigned by a sentence classifier.
type Label string

// Sentiment labels.
const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
)

// ParseLabel converts a classifier label string to a Label.
// Matching is case-insensitive. Unknown labels map to LabelNeutral and
// ok is false.
func ParseLabel(s string) (label Label, ok bool) {
	switch Label(strings.ToLower(strings.TrimSpace(s))) {
	case LabelPositive:
		return LabelPositive, true
	case LabelNegative:
		return LabelNegative, true
	case LabelNeutral:
		return LabelNeutral, true
	default:
		return LabelNeutral, false
	}
}

// String returns the label text.
func (l Label) String() string {
	return string(l)
}

// SentenceRecord is the classification of one cleaned, deduplicated sentence.
type SentenceRecord struct {
	// Sentence is the cleaned sentence text. It is also the dedup key.
	Sentence string `json:"sentence"`

	// Label is the classifier's predicted class.
	Label Label `json:"label"`

	// Score is the classifier's confidence in Label, in [0, 1].
	Score float64 `json:"score"`

	// Document is the source attribution (risk section file name) of the
	// first document the sentence appeared in.
	Document string `json:"file"`
}

// NegativeScore returns the ranking key of the record: Score when the
// label is negative, zero otherwise.
func (r SentenceRecord) NegativeScore() float64 {
	if r.Label == LabelNegative {
		return r.Score
	}
	return 0
}
