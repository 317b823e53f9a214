// Package textnorm cleans text produced by page-layout extraction of
// annual-report filings.
//
// Extracted text carries artifacts of the printed page: hard line wraps,
// ligature glyphs, bare page numbers and a running header repeated on
// every page. Normalize removes them and leaves paragraph-separated prose
// that the section extractor and the aggregators can work on.
//
// Normalization is pure and deterministic. The same input always yields the
// same output.
package textnorm
