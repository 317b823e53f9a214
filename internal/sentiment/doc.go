// Package sentiment provides the scoring services used by the aggregators.
//
// Two capabilities are defined:
//   - LexicalScorer scores a single word against a valence lexicon
//   - Classifier assigns a label and confidence to a whole sentence
//
// Vader implements both with the VADER model from github.com/jonreiter/govader
// and is the default. Lexicon and LexiconClassifier score against a custom
// valence file instead. HTTPClassifier implements Classifier by calling an
// external model server that hosts a transformer sentiment model.
//
// Scorers never retry. A failed call is reported to the caller, which drops
// the affected word or sentence.
package sentiment
