package model

// WordStat is the frequency and lexical sentiment of one word in one
// document. The same word found in two documents yields two WordStats.
type WordStat struct {
	// Word is the lowercase token.
	Word string `json:"word"`

	// Frequency is the percentage of the document's qualifying tokens
	// that are this word. Per document, frequencies sum to 100.
	Frequency float64 `json:"frequency"`

	// Compound is the lexicon's normalized overall polarity in [-1, 1].
	Compound float64 `json:"compound"`

	// Negative, Neutral and Positive are the lexicon's proportions in [0, 1].
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Positive float64 `json:"positive"`

	// Document is the source attribution (risk section file name).
	Document string `json:"file"`
}
