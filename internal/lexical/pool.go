package lexical

import (
	"cmp"
	"slices"

	"github.com/nao1215/riskscan/internal/model"
)

// Pool is the concatenation of per-document word statistics.
// The same word from two documents appears twice.
type Pool struct {
	stats []model.WordStat
}

// NewPool creates a pool from existing statistics and sorts it.
func NewPool(stats []model.WordStat) *Pool {
	p := &Pool{stats: slices.Clone(stats)}
	p.Sort()
	return p
}

// Add appends stats in order.
func (p *Pool) Add(stats []model.WordStat) {
	p.stats = append(p.stats, stats...)
}

// Sort stable-sorts the pool by negative score, highest first.
func (p *Pool) Sort() {
	SortByNegative(p.stats)
}

// Stats returns the pooled statistics.
func (p *Pool) Stats() []model.WordStat {
	return p.stats
}

// Len returns the number of pooled records.
func (p *Pool) Len() int {
	return len(p.stats)
}

// TopNegative returns the n most negative records.
func (p *Pool) TopNegative(n int) []model.WordStat {
	return TopNegative(p.stats, n)
}

// ByDocument returns the records attributed to document, in pool order.
func (p *Pool) ByDocument(document string) []model.WordStat {
	var out []model.WordStat
	for _, s := range p.stats {
		if s.Document == document {
			out = append(out, s)
		}
	}
	return out
}

// WordFrequency is a word's mean frequency across the pooled documents.
type WordFrequency struct {
	Word      string  `json:"word"`
	Frequency float64 `json:"frequency"`
	Documents int     `json:"documents"`
}

// TopFrequent returns the n words with the highest mean frequency across
// all documents in the pool. A document that does not use a word counts as
// zero for it. Ties are broken alphabetically.
func (p *Pool) TopFrequent(n int) []WordFrequency {
	return TopFrequent(p.stats, n)
}

// TopFrequent ranks the words of stats by mean frequency across the
// documents present in stats.
func TopFrequent(stats []model.WordStat, n int) []WordFrequency {
	docs := make(map[string]struct{})
	byWord := make(map[string]*WordFrequency)
	for _, s := range stats {
		docs[s.Document] = struct{}{}
		wf, ok := byWord[s.Word]
		if !ok {
			wf = &WordFrequency{Word: s.Word}
			byWord[s.Word] = wf
		}
		wf.Frequency += s.Frequency
		wf.Documents++
	}

	out := make([]WordFrequency, 0, len(byWord))
	for _, wf := range byWord {
		wf.Frequency /= float64(len(docs))
		out = append(out, *wf)
	}
	slices.SortFunc(out, func(x, y WordFrequency) int {
		if c := cmp.Compare(y.Frequency, x.Frequency); c != 0 {
			return c
		}
		return cmp.Compare(x.Word, y.Word)
	})

	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
