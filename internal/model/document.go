package model

import (
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// yearPattern matches the filing year embedded in a file name such as
// "apple_2024.pdf" or "10k-2023-q4.txt". The first match wins.
var yearPattern = regexp.MustCompile(`20\d{2}`)

// Document is an annual-report filing after raw text extraction.
// A Document is immutable once created by NewDocument.
type Document struct {
	// ID identifies the document and is derived from the source file name
	// without its extension (e.g. "apple_2024").
	ID string `json:"id"`

	// Path is the source file path the text was extracted from.
	Path string `json:"path"`

	// Text is the normalized full text of the filing.
	Text string `json:"-"` // Excluded from JSON due to size

	// Year is the four-digit filing year found in the file name.
	// Defaults to the current year when the name carries none.
	Year int `json:"year"`

	// Fingerprint is the hex SHA3-256 digest of Text.
	// Used by the history database to recognize re-analyzed filings.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// NewDocument creates a Document for the file at path holding text.
// The identifier and year are derived from the file name.
func NewDocument(path, text string) *Document {
	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))

	return &Document{
		ID:          id,
		Path:        path,
		Text:        text,
		Year:        YearFromName(base, time.Now()),
		Fingerprint: Fingerprint(text),
	}
}

// QualifiedID returns the identifier of the file at path with its extension
// kept, e.g. "apple_2024.pdf". It tells apart filings sharing a base name.
func QualifiedID(path string) string {
	return filepath.Base(path)
}

// WithID returns a copy of d identified by id.
func (d *Document) WithID(id string) *Document {
	c := *d
	c.ID = id
	return &c
}

// YearFromName returns the first "20xx" year in name, or now's year when
// the name contains none.
func YearFromName(name string, now time.Time) int {
	if match := yearPattern.FindString(name); match != "" {
		if year, err := strconv.Atoi(match); err == nil {
			return year
		}
	}
	return now.Year()
}

// Fingerprint returns the hex SHA3-256 digest of text.
// Empty text produces an empty fingerprint.
func Fingerprint(text string) string {
	if text == "" {
		return ""
	}
	sum := sha3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// TextFileName returns the name used when persisting the extracted text,
// "<id>_<year>.txt". The year is not repeated when the ID already holds it.
func (d *Document) TextFileName() string {
	year := strconv.Itoa(d.Year)
	if strings.Contains(d.ID, year) {
		return d.ID + ".txt"
	}
	return d.ID + "_" + year + ".txt"
}

// RiskSection is the text of the "Item 1A. Risk Factors" section of one
// Document, whitespace-normalized. An empty Text means the section could
// not be located; that is a reported outcome, not an error.
type RiskSection struct {
	// Document is the ID of the owning Document.
	Document string `json:"document"`

	// Source is the file name the section is attributed to in artifacts
	// and reports, e.g. "risk_apple_2024.txt".
	Source string `json:"source"`

	// Text is the normalized section text.
	Text string `json:"-"`
}

// Empty reports whether the section could not be extracted.
func (s RiskSection) Empty() bool {
	return strings.TrimSpace(s.Text) == ""
}

// RiskFileName returns the artifact name for a section of the given
// document text file, "risk_<basename>".
func RiskFileName(textFileName string) string {
	return "risk_" + filepath.Base(textFileName)
}
