package config

import "time"

// Markers holds the regular expressions that delimit the risk section.
type Markers struct {
	// Start matches the heading that opens the section.
	Start string `yaml:"start,omitempty"`

	// Stop matches the heading that follows the section.
	Stop string `yaml:"stop,omitempty"`
}

// ClassifierConfig selects a remote sentence classifier.
// When Endpoint is empty sentences are labeled locally.
type ClassifierConfig struct {
	// Endpoint is the URL of the hosted classification model.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Token is sent as a bearer token.
	Token string `yaml:"token,omitempty"`

	// MaxChars truncates sentences before they are sent.
	MaxChars int `yaml:"maxChars,omitempty"`

	// RPS limits requests per second. Zero means unlimited.
	RPS float64 `yaml:"rps,omitempty"`

	// Timeout bounds each request, e.g. "30s".
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ReportConfig tunes the Markdown report.
type ReportConfig struct {
	TopWords      int      `yaml:"topWords,omitempty"`
	TopSentences  int      `yaml:"topSentences,omitempty"`
	FrequentWords int      `yaml:"frequentWords,omitempty"`
	MinConfidence *float64 `yaml:"minConfidence,omitempty"`
}

// File represents the structure of the .riskscan configuration file.
// Zero values leave the corresponding Config field unchanged.
type File struct {
	// OutputDir is where artifacts are written.
	OutputDir string `yaml:"outputDir,omitempty"`

	// Concurrency is the number of filings loaded at once.
	Concurrency int `yaml:"concurrency,omitempty"`

	// StopWords are added to the built-in stop-word list.
	StopWords []string `yaml:"stopWords,omitempty"`

	// Markers override the risk section markers.
	Markers Markers `yaml:"markers,omitempty"`

	// HeaderPattern overrides the running page header pattern.
	HeaderPattern string `yaml:"headerPattern,omitempty"`

	// Lexicon is the path of a custom sentiment lexicon.
	Lexicon string `yaml:"lexicon,omitempty"`

	// Classifier configures sentence classification.
	Classifier ClassifierConfig `yaml:"classifier,omitempty"`

	// Report tunes the Markdown report.
	Report ReportConfig `yaml:"report,omitempty"`
}

// Apply copies the values set in f onto c.
func (f *File) Apply(c *Config) {
	if f == nil {
		return
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if len(f.StopWords) > 0 {
		c.StopWords = append(c.StopWords, f.StopWords...)
	}
	if f.Markers.Start != "" {
		c.StartMarker = f.Markers.Start
	}
	if f.Markers.Stop != "" {
		c.StopMarker = f.Markers.Stop
	}
	if f.HeaderPattern != "" {
		c.HeaderPattern = f.HeaderPattern
	}

	if f.Lexicon != "" {
		c.LexiconPath = f.Lexicon
	}

	cl := f.Classifier
	if cl.Endpoint != "" {
		c.ClassifierEndpoint = cl.Endpoint
	}
	if cl.Token != "" {
		c.ClassifierToken = cl.Token
	}
	if cl.MaxChars != 0 {
		c.ClassifierMaxChars = cl.MaxChars
	}
	if cl.RPS != 0 {
		c.ClassifierRPS = cl.RPS
	}
	if cl.Timeout != 0 {
		c.ClassifierTimeout = cl.Timeout
	}

	r := f.Report
	if r.TopWords != 0 {
		c.TopWords = r.TopWords
	}
	if r.TopSentences != 0 {
		c.TopSentences = r.TopSentences
	}
	if r.FrequentWords != 0 {
		c.FrequentWords = r.FrequentWords
	}
	if r.MinConfidence != nil {
		c.MinConfidence = *r.MinConfidence
	}
}
