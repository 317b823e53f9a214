package lexical

import "strings"

// defaultStopWords are excluded from word statistics: function words,
// numerals spelled out, filing boilerplate and discourse connectives.
var defaultStopWords = []string{
	// articles
	"the", "a", "an",
	// prepositions
	"in", "on", "at", "to", "for", "of", "with", "by", "as", "from", "about",
	"like", "through", "over", "before", "between", "after", "since", "without",
	"under", "within", "along", "following", "across", "behind", "beyond",
	"plus", "except", "but", "up", "out", "around", "down", "off", "above", "near",
	// conjunctions
	"and", "or", "nor", "yet", "so", "because", "although", "unless", "while",
	"where", "if", "than", "though", "whether",
	// pronouns
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us",
	"them", "my", "your", "his", "its", "our", "their", "mine", "yours", "hers",
	"ours", "theirs", "this", "that", "these", "those", "who", "whom", "whose",
	"which", "what", "when", "why", "how",
	// auxiliaries
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"do", "does", "did", "will", "would", "shall", "should", "may", "might",
	"must", "can", "could",
	// determiners and quantifiers
	"all", "any", "both", "each", "few", "more", "most", "other", "some",
	"such", "no", "not", "only", "own", "same", "too", "very",
	// numerals
	"one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "first", "second", "third", "fourth", "fifth",
	// filing boilerplate
	"item", "risk", "factors", "unresolved", "staff", "comments", "section",
	"part", "page", "table", "figure", "note", "notes",
	// connectives
	"also", "however", "therefore", "thus", "furthermore", "moreover",
	"nevertheless", "nonetheless", "accordingly", "consequently", "hence",
	"meanwhile", "subsequently", "thereby", "whereby",
}

// StopWords is a set of words excluded from statistics.
type StopWords map[string]struct{}

// NewStopWords returns the default stop-word set extended with extra words.
func NewStopWords(extra ...string) StopWords {
	s := make(StopWords, len(defaultStopWords)+len(extra))
	for _, w := range defaultStopWords {
		s[w] = struct{}{}
	}
	for _, w := range extra {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether word is a stop word.
func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}
