package sentiment

import "errors"

var (
	// ErrEmptyInput is returned when a word or sentence to score is blank.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidLexicon is returned when a lexicon source cannot be parsed.
	ErrInvalidLexicon = errors.New("invalid lexicon")

	// ErrUnexpectedResponse is returned when a model server reply carries no usable label.
	ErrUnexpectedResponse = errors.New("unexpected classifier response")
)
