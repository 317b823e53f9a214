package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// TestTextExtractor tests plain text extraction.
func TestTextExtractor(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e := &TextExtractor{}

	t.Run("content", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, dir, "a.txt", "Item 1A. Risk Factors")
		got, err := e.Extract(context.Background(), path)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if got != "Item 1A. Risk Factors" {
			t.Errorf("Extract() = %q", got)
		}
	})

	t.Run("blank file", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, dir, "blank.txt", " \n\t ")
		_, err := e.Extract(context.Background(), path)
		if !errors.Is(err, ErrNoText) {
			t.Errorf("expected ErrNoText, got %v", err)
		}
	})

	t.Run("invalid utf8", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, dir, "bad.txt", "risk \xff text")
		got, err := e.Extract(context.Background(), path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, "�") {
			t.Errorf("expected replacement character in %q", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := e.Extract(context.Background(), filepath.Join(dir, "missing.txt"))
		if err == nil || errors.Is(err, ErrNoText) {
			t.Errorf("expected read error, got %v", err)
		}
	})
}

// TestHTMLExtractor tests visible text extraction.
func TestHTMLExtractor(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e := &HTMLExtractor{}

	t.Run("visible text", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, dir, "filing.htm", `<html><head><title>10-K</title><style>p{}</style></head>
<body><script>var x = 1;</script><!-- hidden -->
<p>Item 1A. <b>Risk Factors</b></p><div>Supply risk.</div></body></html>`)

		got, err := e.Extract(context.Background(), path)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		for _, unwanted := range []string{"var x", "hidden", "p{}", "10-K"} {
			if strings.Contains(got, unwanted) {
				t.Errorf("text should not contain %q: %q", unwanted, got)
			}
		}
		if !strings.Contains(got, "Risk Factors") || !strings.Contains(got, "Supply risk.") {
			t.Errorf("missing visible text: %q", got)
		}
	})

	t.Run("no text", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, dir, "empty.html", `<html><body><script>x()</script></body></html>`)
		_, err := e.Extract(context.Background(), path)
		if !errors.Is(err, ErrNoText) {
			t.Errorf("expected ErrNoText, got %v", err)
		}
	})
}

// TestPDFExtractor_Errors tests that unreadable PDFs fail without panicking.
func TestPDFExtractor_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e := &PDFExtractor{}

	if _, err := e.Extract(context.Background(), filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeFile(t, dir, "garbage.pdf", "this is not a pdf")
	if _, err := e.Extract(context.Background(), path); err == nil {
		t.Error("expected error for corrupt file")
	}
}

// TestRegistry tests dispatch by extension.
func TestRegistry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := NewRegistry()

	if !r.Supports("A.PDF") || !r.Supports("b.htm") || r.Supports("c.docx") {
		t.Error("unexpected Supports result")
	}
	if got := r.Extensions(); strings.Join(got, ",") != ".htm,.html,.pdf,.txt" {
		t.Errorf("Extensions() = %v", got)
	}

	path := writeFile(t, dir, "x.TXT", "some text")
	got, err := r.Extract(context.Background(), path)
	if err != nil || got != "some text" {
		t.Errorf("Extract() = %q, %v", got, err)
	}

	_, err = r.Extract(context.Background(), filepath.Join(dir, "x.docx"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

// TestRegistry_Register tests overriding an extractor.
func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(stubExtractor("stub"), ".docx")

	got, err := r.Extract(context.Background(), "file.docx")
	if err != nil || got != "stub" {
		t.Errorf("Extract() = %q, %v", got, err)
	}
}

type stubExtractor string

func (s stubExtractor) Extract(context.Context, string) (string, error) {
	return string(s), nil
}
