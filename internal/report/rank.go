package report

import (
	"cmp"
	"regexp"
	"slices"

	"github.com/nao1215/riskscan/internal/model"
)

var (
	yearSuffix = regexp.MustCompile(`_\d{4}\.[A-Za-z0-9]+$`)
	extSuffix  = regexp.MustCompile(`\.[A-Za-z0-9]+$`)
)

// CleanSource turns an artifact file name into a display label by removing
// a trailing "_yyyy.ext" or ".ext".
func CleanSource(name string) string {
	if yearSuffix.MatchString(name) {
		return yearSuffix.ReplaceAllString(name, "")
	}
	return extSuffix.ReplaceAllString(name, "")
}

// NegativeSentences returns at most n records labeled negative with a score
// above minScore, highest score first. Ties keep input order.
//
// This filter is independent of sentence.Rank: ranking floors non-negative
// records at zero, while the report drops them and any negative record at
// or below minScore.
func NegativeSentences(records []model.SentenceRecord, minScore float64, n int) []model.SentenceRecord {
	var out []model.SentenceRecord
	for _, r := range records {
		if r.Label == model.LabelNegative && r.Score > minScore {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(x, y model.SentenceRecord) int {
		return cmp.Compare(y.Score, x.Score)
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
