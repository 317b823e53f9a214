package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// TextExtractor reads a plain text file.
type TextExtractor struct{}

// Extract returns the content of the file at path. Invalid UTF-8 sequences
// are replaced with U+FFFD.
func (e *TextExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the input directory listing
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
