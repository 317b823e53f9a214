// Package lexical computes word frequencies and per-word sentiment for risk
// sections and pools them across a batch of filings.
//
// For each section the text is lowercased, stripped of everything but ASCII
// letters and tokenized. Stop words and tokens of two letters or fewer are
// discarded. Each remaining distinct word receives its share of the
// section's qualifying tokens as a percentage and a polarity from a
// sentiment.LexicalScorer. Words are ranked by negative score.
package lexical
