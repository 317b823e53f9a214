// Package extract turns filing files into raw text.
//
// An Extractor reads one file and returns its text content. Registry picks
// the Extractor for a file by its extension:
//   - .pdf: page-by-page plain text via github.com/ledongthuc/pdf
//   - .htm, .html: visible text of the DOM via golang.org/x/net/html
//   - .txt: the file content as UTF-8
//
// Extractors return ErrNoText when a file holds no usable text, so callers
// can report an empty document rather than a failure.
package extract
