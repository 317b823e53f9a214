package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// headerTail matches "| <yyyy> Form 10-K | <page>".
const headerTail = `\|[ \t]*\d{4}[ \t]+Form[ \t]+10-K[ \t]*\|[ \t]*\d+`

// DefaultHeaderPattern matches the running page header of a 10-K filing,
// "<Company> | <yyyy> Form 10-K | <page>". A header alone on its line may
// carry a name of up to eight words. Inside running text the name is limited
// to four capitalized words on the same line so surrounding prose survives.
const DefaultHeaderPattern = `(?m)^[ \t]*(?:(?:[A-Z0-9&][^\s|]*|of|and|the)[ \t]+){1,8}` + headerTail + `[ \t\r]*$` +
	`|(?:(?:[A-Z][\w.,&'-]*|&)[ \t]+){1,4}` + headerTail + `[ \t]*`

var (
	pageNumberLine  = regexp.MustCompile(`(?m)^[ \t\r]*\d+[ \t\r]*$`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	sentenceBreak   = regexp.MustCompile(`([.!?])\s+([A-Z])`)
	defaultHeaderRe = regexp.MustCompile(DefaultHeaderPattern)
)

// Normalizer cleans extracted filing text.
// A Normalizer is safe for concurrent use.
type Normalizer struct {
	header *regexp.Regexp
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithHeaderPattern replaces the running header pattern.
// The pattern must already be compiled; see config.Validate.
func WithHeaderPattern(re *regexp.Regexp) Option {
	return func(n *Normalizer) {
		if re != nil {
			n.header = re
		}
	}
}

// New creates a Normalizer with the given options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{header: defaultHeaderRe}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize cleans raw with the default Normalizer.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

var defaultNormalizer = New()

// Normalize cleans raw extracted text. Line based cleanup runs while the
// line structure of the source still exists:
//  1. NFKC normalization, which splits ligatures such as "ﬁ"
//  2. drop running page headers
//  3. drop lines that hold only a page number
//  4. collapse whitespace runs, line breaks included, to single spaces
//  5. break the line after sentence punctuation followed by a capital
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := norm.NFKC.String(raw)
	text = n.header.ReplaceAllString(text, "")
	text = pageNumberLine.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	return sentenceBreak.ReplaceAllString(text, "$1\n$2")
}
