package model

import "time"

// AnalysisResult holds everything a single analysis run produced.
// It is the input to report writers and the history database.
type AnalysisResult struct {
	// RunID is the history database identifier. Zero until saved.
	RunID int64 `json:"run_id,omitempty"`

	// InputDir is the directory the filings were read from.
	InputDir string `json:"input_dir"`

	// OutputDir is the directory artifacts were written to.
	OutputDir string `json:"output_dir"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run completed.
	FinishedAt time.Time `json:"finished_at"`

	// Outcomes holds one entry per input document in batch order.
	Outcomes []Outcome `json:"outcomes"`

	// Words is the pooled word statistics sorted by negative score desc.
	Words []WordStat `json:"words"`

	// Sentences is the ranked sentence records.
	Sentences []SentenceRecord `json:"sentences"`

	// FrequencyArtifact is the path of the written word frequency CSV.
	// Empty when the artifact was not produced.
	FrequencyArtifact string `json:"frequency_artifact,omitempty"`

	// SentenceArtifact is the path of the written sentence CSV.
	SentenceArtifact string `json:"sentence_artifact,omitempty"`

	// Stages records the pipeline stages run so far in execution order.
	Stages []StageTiming `json:"stages,omitempty"`
}

// StageTiming is how long one pipeline stage took. Error holds the stage
// failure message and is empty on success.
type StageTiming struct {
	Name    string        `json:"name"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Error   string        `json:"error,omitempty"`
}

// NewAnalysisResult creates an empty result for the given directories.
func NewAnalysisResult(inputDir, outputDir string) *AnalysisResult {
	return &AnalysisResult{
		InputDir:  inputDir,
		OutputDir: outputDir,
		StartedAt: time.Now(),
		Outcomes:  make([]Outcome, 0),
		Words:     make([]WordStat, 0),
		Sentences: make([]SentenceRecord, 0),
	}
}

// Sections returns the risk sections of all usable outcomes in batch order.
// Empty sections are included so aggregators can account for them.
func (r *AnalysisResult) Sections() []RiskSection {
	sections := make([]RiskSection, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Usable() {
			sections = append(sections, o.Section)
		}
	}
	return sections
}

// Count returns the number of outcomes with the given status.
func (r *AnalysisResult) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Duration returns how long the run took.
func (r *AnalysisResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Finish marks the run as completed.
func (r *AnalysisResult) Finish() {
	r.FinishedAt = time.Now()
}
