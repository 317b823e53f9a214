package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/riskscan/internal/pipeline"
	"github.com/nao1215/riskscan/internal/report"
	"github.com/nao1215/riskscan/internal/section"
	"github.com/nao1215/riskscan/internal/sentiment"
	"github.com/nao1215/riskscan/internal/textnorm"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "riskscan"

	// DefaultOutputDir is created in the working directory when no output
	// directory is given.
	DefaultOutputDir = "output"

	// DefaultConcurrency is the number of filings loaded in parallel.
	// PDF extraction is CPU bound, so a small number is enough.
	DefaultConcurrency = pipeline.DefaultConcurrency
)

// Config holds all configuration options for riskscan.
// It is populated from the config file and CLI flags and passed through
// the application rather than kept in global state.
type Config struct {
	// InputDir is the directory containing the 10-K filings.
	InputDir string

	// OutputDir receives extracted texts, CSV tables and the report.
	OutputDir string

	// Concurrency is the number of filings loaded at once.
	Concurrency int

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches the log format to JSON.
	JSONLog bool

	// JSONOutput prints the run summary as JSON instead of plain text.
	JSONOutput bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .riskscan is searched in the current and home directories.
	ConfigFilePath string

	// StopWords are added to the built-in stop-word list.
	StopWords []string

	// StartMarker and StopMarker are the regular expressions delimiting
	// the risk factors section.
	StartMarker string
	StopMarker  string

	// HeaderPattern matches running page headers removed during normalization.
	HeaderPattern string

	// LexiconPath points to a "word<TAB>valence" file replacing the
	// VADER lexicon.
	LexiconPath string

	// ClassifierEndpoint selects a hosted sentence classifier. When empty
	// sentences are labeled locally.
	ClassifierEndpoint string

	// ClassifierToken is the bearer token for the hosted classifier.
	ClassifierToken string

	// ClassifierMaxChars truncates sentences before classification.
	ClassifierMaxChars int

	// ClassifierRPS limits classifier requests per second. Zero is unlimited.
	ClassifierRPS float64

	// ClassifierTimeout bounds each classifier request.
	ClassifierTimeout time.Duration

	// TopWords, TopSentences and FrequentWords bound the report lists.
	TopWords      int
	TopSentences  int
	FrequentWords int

	// MinConfidence is the score a negative sentence must exceed to be reported.
	MinConfidence float64

	// DBDir is the directory of the run history database.
	// Defaults to the XDG data directory (~/.local/share/riskscan on Linux).
	DBDir string

	// SaveToDB records the run in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputDir:          DefaultOutputDir,
		Concurrency:        DefaultConcurrency,
		StartMarker:        section.DefaultStartMarker,
		StopMarker:         section.DefaultStopMarker,
		HeaderPattern:      textnorm.DefaultHeaderPattern,
		ClassifierMaxChars: sentiment.DefaultMaxChars,
		ClassifierTimeout:  sentiment.DefaultHTTPTimeout,
		TopWords:           report.DefaultTopWords,
		TopSentences:       report.DefaultTopSentences,
		FrequentWords:      report.DefaultFrequentWords,
		MinConfidence:      report.DefaultMinConfidence,
		DBDir:              XDGDataDir(),
		SaveToDB:           true,
	}
}

// XDGDataDir returns the XDG data directory for riskscan.
// On Linux: ~/.local/share/riskscan
// On macOS: ~/Library/Application Support/riskscan
// On Windows: %LOCALAPPDATA%\riskscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for riskscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// UsesRemoteClassifier reports whether sentences go to a hosted model.
func (c *Config) UsesRemoteClassifier() bool {
	return c.ClassifierEndpoint != ""
}

// Validate checks if the configuration is valid.
// It returns the first problem found, wrapping one of the package's
// sentinel errors.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return ErrNoInputDir
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	for name, pattern := range map[string]string{"start": c.StartMarker, "stop": c.StopMarker} {
		if pattern == "" {
			return fmt.Errorf("%w: empty %s marker", ErrInvalidMarker, name)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w: %s marker: %w", ErrInvalidMarker, name, err)
		}
	}
	if c.HeaderPattern != "" {
		if _, err := regexp.Compile(c.HeaderPattern); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidHeaderPattern, err)
		}
	}

	if c.UsesRemoteClassifier() {
		u, err := url.Parse(c.ClassifierEndpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidClassifierEndpoint
		}
		if c.ClassifierTimeout <= 0 {
			return ErrInvalidTimeout
		}
	}
	if c.ClassifierMaxChars <= 0 {
		return ErrInvalidMaxChars
	}
	if c.ClassifierRPS < 0 {
		return ErrInvalidRateLimit
	}

	if c.TopWords < 0 || c.TopSentences < 0 || c.FrequentWords < 0 {
		return ErrInvalidReportLimit
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return ErrInvalidMinConfidence
	}

	return nil
}
