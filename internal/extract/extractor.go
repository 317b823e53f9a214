package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrNoText is returned when a file contains no extractable text.
	ErrNoText = errors.New("no extractable text")

	// ErrUnsupportedFormat is returned when no extractor handles a file extension.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Extractor reads the text content of a file.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Registry dispatches extraction by lowercase file extension.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates a registry with the PDF, HTML and plain text extractors.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register(&PDFExtractor{}, ".pdf")
	r.Register(&HTMLExtractor{}, ".htm", ".html")
	r.Register(&TextExtractor{}, ".txt")
	return r
}

// Register associates e with the given extensions, replacing earlier entries.
func (r *Registry) Register(e Extractor, exts ...string) {
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Extract reads path with the extractor registered for its extension.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	return e.Extract(ctx, path)
}
