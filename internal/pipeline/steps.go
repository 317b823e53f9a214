package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/riskscan/internal/extract"
	"github.com/nao1215/riskscan/internal/lexical"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/report"
	"github.com/nao1215/riskscan/internal/section"
	"github.com/nao1215/riskscan/internal/sentence"
)

// PrepareStep creates the output directory tree.
type PrepareStep struct {
	artifacts *report.Artifacts
}

// NewPrepareStep creates a new output preparation step.
func NewPrepareStep(artifacts *report.Artifacts) *PrepareStep {
	return &PrepareStep{artifacts: artifacts}
}

// Name returns the step name.
func (s *PrepareStep) Name() string {
	return "prepare_output"
}

// Do creates the output directories. Failure aborts the run.
func (s *PrepareStep) Do(_ context.Context, _ *model.AnalysisResult) error {
	if s.artifacts == nil {
		return ErrNoArtifacts
	}
	return s.artifacts.Prepare()
}

// LoadStep lists the input directory and loads every supported filing.
type LoadStep struct {
	registry  *extract.Registry
	batch     *BatchProcessor
	artifacts *report.Artifacts
	logger    *slog.Logger
}

// NewLoadStep creates a new document loading step. artifacts may be nil,
// in which case extracted texts are not persisted.
func NewLoadStep(registry *extract.Registry, batch *BatchProcessor, artifacts *report.Artifacts, logger *slog.Logger) *LoadStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadStep{registry: registry, batch: batch, artifacts: artifacts, logger: logger}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load_documents"
}

// Do loads the documents of result.InputDir in file name order. A document
// whose extracted text cannot be saved becomes a failed outcome.
func (s *LoadStep) Do(ctx context.Context, result *model.AnalysisResult) error {
	paths, err := ListDocuments(result.InputDir, s.registry)
	if err != nil {
		return err
	}
	s.logger.Info("found documents", "count", len(paths), "dir", result.InputDir)

	outcomes, err := s.batch.ProcessBatch(ctx, paths)
	if err != nil {
		return err
	}
	disambiguateIDs(outcomes, s.logger)

	if s.artifacts != nil {
		for i := range outcomes {
			o := &outcomes[i]
			if o.Status != model.OutcomeSuccess {
				continue
			}
			path, err := s.artifacts.WriteExtractedText(o.Document)
			if err != nil {
				s.logger.Warn("failed to save extracted text", "document", o.Document.ID, "error", err)
				*o = model.NewFailedOutcome(o.Path, fmt.Errorf("failed to save extracted text: %w", err))
				continue
			}
			s.logger.Debug("saved extracted text", "path", path)
		}
	}

	result.Outcomes = outcomes
	return nil
}

// disambiguateIDs gives documents that share an ID, such as "x_2024.pdf"
// and "x_2024.htm", their file name as ID so their artifacts and word
// attributions stay apart. It repeats until every ID is unique.
func disambiguateIDs(outcomes []model.Outcome, logger *slog.Logger) {
	for {
		seen := make(map[string]int)
		for _, o := range outcomes {
			if o.Document != nil {
				seen[o.Document.ID]++
			}
		}

		changed := false
		for i := range outcomes {
			doc := outcomes[i].Document
			if doc == nil || seen[doc.ID] < 2 {
				continue
			}
			qualified := model.QualifiedID(doc.Path)
			if qualified == doc.ID {
				continue
			}
			logger.Warn("document id shared by several files", "id", doc.ID, "path", doc.Path, "new_id", qualified)
			outcomes[i].Document = doc.WithID(qualified)
			changed = true
		}
		if !changed {
			return
		}
	}
}

// ListDocuments returns the regular files in dir that registry supports,
// sorted by name.
func ListDocuments(dir string, registry *extract.Registry) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !registry.Supports(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s (supported: %v)", ErrNoDocuments, dir, registry.Extensions())
	}
	return paths, nil
}

// SectionStep isolates the risk factors section of every loaded document.
type SectionStep struct {
	extractor *section.Extractor
	artifacts *report.Artifacts
	logger    *slog.Logger
}

// NewSectionStep creates a new section extraction step. artifacts may be nil.
func NewSectionStep(extractor *section.Extractor, artifacts *report.Artifacts, logger *slog.Logger) *SectionStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SectionStep{extractor: extractor, artifacts: artifacts, logger: logger}
}

// Name returns the step name.
func (s *SectionStep) Name() string {
	return "extract_sections"
}

// Do extracts sections. Documents without one become empty outcomes and
// documents whose section cannot be saved become failed ones.
func (s *SectionStep) Do(_ context.Context, result *model.AnalysisResult) error {
	for i := range result.Outcomes {
		o := &result.Outcomes[i]
		if o.Status != model.OutcomeSuccess || o.Document == nil {
			continue
		}

		sec := s.extractor.ExtractDocument(o.Document)
		if sec.Empty() {
			s.logger.Warn("risk factors section not found", "document", o.Document.ID)
			*o = model.NewEmptyOutcome(o.Document, "risk factors section not found")
			o.Section = sec
			continue
		}

		if s.artifacts != nil {
			if _, err := s.artifacts.WriteRiskSection(sec); err != nil {
				s.logger.Warn("failed to save risk section", "document", o.Document.ID, "error", err)
				*o = model.NewFailedOutcome(o.Path, fmt.Errorf("failed to save risk section: %w", err))
				continue
			}
		}
		*o = model.NewSuccessOutcome(o.Document, sec)
		s.logger.Debug("extracted section", "document", o.Document.ID, "chars", len(sec.Text))
	}
	return nil
}

// WordStep scores the vocabulary of all sections and pools the results.
type WordStep struct {
	aggregator *lexical.Aggregator
	artifacts  *report.Artifacts
	topN       int
	logger     *slog.Logger
}

// NewWordStep creates a new word scoring step. artifacts may be nil.
func NewWordStep(aggregator *lexical.Aggregator, artifacts *report.Artifacts, logger *slog.Logger) *WordStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WordStep{aggregator: aggregator, artifacts: artifacts, topN: lexical.DefaultTopNegative, logger: logger}
}

// Name returns the step name.
func (s *WordStep) Name() string {
	return "score_words"
}

// Do fills result.Words and writes the word tables.
func (s *WordStep) Do(ctx context.Context, result *model.AnalysisResult) error {
	sections := result.Sections()
	pool, err := s.aggregator.Aggregate(ctx, sections)
	if err != nil {
		return err
	}
	result.Words = pool.Stats()
	s.logger.Info("scored words", "records", pool.Len())

	if s.artifacts == nil {
		return nil
	}

	for _, sec := range sections {
		if sec.Empty() {
			continue
		}
		top := lexical.TopNegative(pool.ByDocument(sec.Source), s.topN)
		if _, err := s.artifacts.WriteDocumentNegativeWords(sec.Source, top); err != nil {
			return err
		}
	}

	path, err := s.artifacts.WriteWordFrequencies(result.Words)
	if err != nil {
		return err
	}
	result.FrequencyArtifact = path
	return nil
}

// SentenceStep classifies the unique sentences of all sections.
type SentenceStep struct {
	aggregator *sentence.Aggregator
	artifacts  *report.Artifacts
	logger     *slog.Logger
}

// NewSentenceStep creates a new sentence scoring step. artifacts may be nil.
func NewSentenceStep(aggregator *sentence.Aggregator, artifacts *report.Artifacts, logger *slog.Logger) *SentenceStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SentenceStep{aggregator: aggregator, artifacts: artifacts, logger: logger}
}

// Name returns the step name.
func (s *SentenceStep) Name() string {
	return "score_sentences"
}

// Do fills result.Sentences and writes the sentence tables.
func (s *SentenceStep) Do(ctx context.Context, result *model.AnalysisResult) error {
	records, err := s.aggregator.Aggregate(ctx, result.Sections())
	if err != nil {
		return err
	}
	result.Sentences = records
	s.logger.Info("scored sentences", "records", len(records))

	if s.artifacts == nil {
		return nil
	}
	path, err := s.artifacts.WriteSentences(records)
	if err != nil {
		return err
	}
	result.SentenceArtifact = path
	return nil
}

// Recorder stores completed runs.
type Recorder interface {
	SaveRun(ctx context.Context, result *model.AnalysisResult) (int64, error)
}

// HistoryStep records the run in the history database.
type HistoryStep struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewHistoryStep creates a new history recording step.
func NewHistoryStep(recorder Recorder, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{recorder: recorder, logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "record_history"
}

// Do saves the run. A storage failure is logged and does not fail the run.
func (s *HistoryStep) Do(ctx context.Context, result *model.AnalysisResult) error {
	result.Finish()

	id, err := s.recorder.SaveRun(ctx, result)
	if err != nil {
		s.logger.Warn("failed to record run history", "error", err)
		return nil
	}
	result.RunID = id
	s.logger.Debug("recorded run", "id", id)
	return nil
}

// ReportStep writes the JSON summary and the Markdown report.
type ReportStep struct {
	artifacts *report.Artifacts
	version   string
	options   []report.MarkdownOption
	logger    *slog.Logger
}

// NewReportStep creates a new report synthesis step.
func NewReportStep(artifacts *report.Artifacts, version string, logger *slog.Logger, opts ...report.MarkdownOption) *ReportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportStep{artifacts: artifacts, version: version, options: opts, logger: logger}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "write_report"
}

// Do writes summary.json and output.md.
func (s *ReportStep) Do(_ context.Context, result *model.AnalysisResult) error {
	if s.artifacts == nil {
		return ErrNoArtifacts
	}
	if result.FinishedAt.IsZero() {
		result.Finish()
	}

	if _, err := s.artifacts.WriteSummary(result, s.version); err != nil {
		return err
	}
	path, err := s.artifacts.WriteReport(result, s.options...)
	if err != nil {
		return err
	}
	s.logger.Info("report written", "path", path)
	return nil
}

// Components holds everything DefaultPipeline wires together.
type Components struct {
	Registry    *extract.Registry
	Loader      *Loader
	Sections    *section.Extractor
	Words       *lexical.Aggregator
	Sentences   *sentence.Aggregator
	Artifacts   *report.Artifacts
	History     Recorder
	Version     string
	Concurrency int
	Report      []report.MarkdownOption
	Logger      *slog.Logger
}

// DefaultPipeline creates a pipeline with the standard analysis steps in
// order. The history step is included only when c.History is set.
func DefaultPipeline(c Components, opts ...Option) *Pipeline {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	batch := NewBatchProcessor(c.Loader.Load,
		WithConcurrency(c.Concurrency),
		WithBatchLogger(logger),
	)

	p := New(append([]Option{WithLogger(logger)}, opts...)...)
	p.AddSteps(
		NewPrepareStep(c.Artifacts),
		NewLoadStep(c.Registry, batch, c.Artifacts, logger),
		NewSectionStep(c.Sections, c.Artifacts, logger),
		NewWordStep(c.Words, c.Artifacts, logger),
		NewSentenceStep(c.Sentences, c.Artifacts, logger),
	)
	if c.History != nil {
		p.AddStep(NewHistoryStep(c.History, logger))
	}
	p.AddStep(NewReportStep(c.Artifacts, c.Version, logger, c.Report...))

	return p
}
