package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/riskscan/internal/extract"
	"github.com/nao1215/riskscan/internal/lexical"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/report"
	"github.com/nao1215/riskscan/internal/section"
	"github.com/nao1215/riskscan/internal/sentence"
	"github.com/nao1215/riskscan/internal/sentiment"
)

const exampleFiling = "Item 1A. Risk Factors Our business faces significant risks. " +
	"Item 1B. Unresolved Staff Comments None."

// fixedClassifier labels every sentence negative with a fixed score.
type fixedClassifier struct{}

func (fixedClassifier) Classify(_ context.Context, s string) (sentiment.Classification, error) {
	if strings.TrimSpace(s) == "" {
		return sentiment.Classification{}, sentiment.ErrEmptyInput
	}
	return sentiment.Classification{Label: model.LabelNegative, Score: 0.87}, nil
}

// stubRecorder records saved runs.
type stubRecorder struct {
	saved []*model.AnalysisResult
	err   error
}

func (r *stubRecorder) SaveRun(_ context.Context, result *model.AnalysisResult) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.saved = append(r.saved, result)
	return int64(len(r.saved)), nil
}

func writeInput(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func newTestPipeline(t *testing.T, outDir string, recorder Recorder) *Pipeline {
	t.Helper()

	registry := extract.NewRegistry()
	c := Components{
		Registry:    registry,
		Loader:      NewLoader(registry, nil, nil),
		Sections:    mustSection(t),
		Words:       lexical.New(sentiment.NewVader()),
		Sentences:   sentence.New(fixedClassifier{}),
		Artifacts:   report.NewArtifacts(outDir),
		History:     recorder,
		Version:     "test",
		Concurrency: 2,
	}
	return DefaultPipeline(c)
}

func mustSection(t *testing.T) *section.Extractor {
	t.Helper()
	e, err := section.New(section.DefaultStartMarker, section.DefaultStopMarker)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// TestDefaultPipeline_EndToEnd tests the full run on a single filing.
func TestDefaultPipeline_EndToEnd(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeInput(t, in, "acme_2024.txt", exampleFiling)

	recorder := &stubRecorder{}
	p := newTestPipeline(t, out, recorder)
	result := model.NewAnalysisResult(in, out)

	if err := p.Execute(context.Background(), result); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Outcomes) != 1 || result.Outcomes[0].Status != model.OutcomeSuccess {
		t.Fatalf("unexpected outcomes %+v", result.Outcomes)
	}
	if got := result.Outcomes[0].Section.Text; got != "Our business faces significant risks." {
		t.Errorf("section = %q", got)
	}

	words := map[string]bool{}
	for _, w := range result.Words {
		words[w.Word] = true
	}
	for _, w := range []string{"business", "faces", "significant", "risks"} {
		if !words[w] {
			t.Errorf("word pool should contain %q", w)
		}
	}
	if words["our"] || len(words) != 4 {
		t.Errorf("unexpected word pool %v", words)
	}

	if len(result.Sentences) != 1 || result.Sentences[0].Sentence != "Our business faces significant risks." {
		t.Errorf("unexpected sentences %+v", result.Sentences)
	}

	if result.RunID != 1 || len(recorder.saved) != 1 {
		t.Errorf("expected run to be recorded, got id %d", result.RunID)
	}

	for _, rel := range []string{
		"extracted_texts/acme_2024.txt",
		"risk_factors/risk_acme_2024.txt",
		"analysis/word_frequencies_summary.csv",
		"analysis/sentence_sentiment_summary.csv",
		"analysis/sentence_sentiment_risk_acme_2024.csv",
		"analysis/negative_words_risk_acme_2024.csv",
		"analysis/summary.json",
		"output.md",
	} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("expected artifact %s: %v", rel, err)
		}
	}

	md, err := os.ReadFile(filepath.Join(out, "output.md")) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"## Most Frequent Words", "## Most Negative Words", "## Most Negative Sentences"} {
		if !strings.Contains(string(md), want) {
			t.Errorf("report should contain %q", want)
		}
	}
}

// TestDefaultPipeline_PartialFailure tests a batch where one filing has no markers,
// one is blank and one cannot be parsed.
func TestDefaultPipeline_PartialFailure(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeInput(t, in, "a_nomarkers_2023.txt", "Annual report without the usual headings. Sales were fine.")
	writeInput(t, in, "b_example_2024.txt", exampleFiling)
	writeInput(t, in, "c_blank.txt", "   ")
	writeInput(t, in, "d_corrupt_2024.pdf", "this is not a PDF document")
	writeInput(t, in, "notes.docx", "ignored")

	p := newTestPipeline(t, out, nil)
	result := model.NewAnalysisResult(in, out)

	if err := p.Execute(context.Background(), result); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(result.Outcomes))
	}
	if result.Outcomes[0].Status != model.OutcomeEmpty {
		t.Errorf("document without markers should be empty, got %s", result.Outcomes[0].Status)
	}
	if result.Outcomes[1].Status != model.OutcomeSuccess {
		t.Errorf("example document should succeed, got %s", result.Outcomes[1].Status)
	}
	if result.Outcomes[2].Status != model.OutcomeEmpty {
		t.Errorf("blank document should be empty, got %s", result.Outcomes[2].Status)
	}
	if corrupt := result.Outcomes[3]; corrupt.Status != model.OutcomeFailed || corrupt.Err == nil {
		t.Errorf("corrupt PDF should fail, got %+v", corrupt)
	}
	if result.Count(model.OutcomeFailed) != 1 {
		t.Errorf("expected 1 failed outcome, got %d", result.Count(model.OutcomeFailed))
	}

	for _, w := range result.Words {
		if w.Document != "risk_b_example_2024.txt" {
			t.Errorf("unexpected word attribution %s", w.Document)
		}
	}
	for _, s := range result.Sentences {
		if s.Document != "risk_b_example_2024.txt" {
			t.Errorf("unexpected sentence attribution %s", s.Document)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "risk_factors", "risk_a_nomarkers_2023.txt")); !os.IsNotExist(err) {
		t.Error("empty section should not be written")
	}
	if _, err := os.Stat(filepath.Join(out, "output.md")); err != nil {
		t.Errorf("report should be generated: %v", err)
	}
}

// TestDefaultPipeline_SharedBaseName tests that filings differing only in
// extension keep separate artifacts and word attributions.
func TestDefaultPipeline_SharedBaseName(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeInput(t, in, "x_2024.txt", exampleFiling)
	writeInput(t, in, "x_2024.htm", "<html><body><p>Item 1A. Risk Factors Cyber attacks may disrupt operations.</p>"+
		"<p>Item 1B. Unresolved Staff Comments</p></body></html>")

	p := newTestPipeline(t, out, nil)
	result := model.NewAnalysisResult(in, out)
	if err := p.Execute(context.Background(), result); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(result.Outcomes))
	}
	sources := map[string]string{}
	for _, o := range result.Outcomes {
		if o.Status != model.OutcomeSuccess {
			t.Fatalf("expected success, got %+v", o)
		}
		sources[o.Section.Source] = o.Section.Text
	}
	want := map[string]string{
		"risk_x_2024.htm.txt": "Cyber attacks may disrupt operations.",
		"risk_x_2024.txt.txt": "Our business faces significant risks.",
	}
	for source, text := range want {
		if sources[source] != text {
			t.Errorf("section %s = %q, want %q", source, sources[source], text)
		}
		data, err := os.ReadFile(filepath.Join(out, report.RiskDir, source)) //nolint:gosec // test file
		if err != nil {
			t.Errorf("expected risk file %s: %v", source, err)
			continue
		}
		if strings.TrimSpace(string(data)) != text {
			t.Errorf("risk file %s = %q, want %q", source, data, text)
		}
	}

	attributed := map[string]string{}
	for _, w := range result.Words {
		attributed[w.Word] = w.Document
	}
	if attributed["cyber"] != "risk_x_2024.htm.txt" || attributed["business"] != "risk_x_2024.txt.txt" {
		t.Errorf("words should keep their own document, got %v", attributed)
	}
}

// TestDefaultPipeline_ArtifactWriteFailure tests that a document whose
// artifacts cannot be saved fails alone and the run continues.
func TestDefaultPipeline_ArtifactWriteFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		blocked string
		reason  string
	}{
		{"extracted text", filepath.Join(report.ExtractedDir, "a_2024.txt"), "failed to save extracted text"},
		{"risk section", filepath.Join(report.RiskDir, "risk_a_2024.txt"), "failed to save risk section"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := t.TempDir()
			out := filepath.Join(t.TempDir(), "out")
			writeInput(t, in, "a_2024.txt", exampleFiling)
			writeInput(t, in, "b_2024.txt", exampleFiling)
			// a directory in place of the artifact makes the write fail
			if err := os.MkdirAll(filepath.Join(out, tt.blocked), 0o750); err != nil {
				t.Fatal(err)
			}

			p := newTestPipeline(t, out, nil)
			result := model.NewAnalysisResult(in, out)
			if err := p.Execute(context.Background(), result); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			if len(result.Outcomes) != 2 {
				t.Fatalf("expected 2 outcomes, got %d", len(result.Outcomes))
			}
			failed := result.Outcomes[0]
			if failed.Status != model.OutcomeFailed || !strings.Contains(failed.Reason, tt.reason) {
				t.Errorf("expected failed outcome with %q, got %+v", tt.reason, failed)
			}
			if result.Outcomes[1].Status != model.OutcomeSuccess {
				t.Errorf("other document should succeed, got %s", result.Outcomes[1].Status)
			}
			for _, w := range result.Words {
				if w.Document != "risk_b_2024.txt" {
					t.Errorf("unexpected word attribution %s", w.Document)
				}
			}
			if _, err := os.Stat(filepath.Join(out, "output.md")); err != nil {
				t.Errorf("report should be generated: %v", err)
			}
		})
	}
}

// TestDisambiguateIDs tests ID qualification of colliding documents.
func TestDisambiguateIDs(t *testing.T) {
	t.Parallel()

	outcomes := []model.Outcome{
		{Document: model.NewDocument("in/x_2024.htm", "a")},
		{Document: model.NewDocument("in/x_2024.pdf", "b")},
		{Document: model.NewDocument("in/x_2024.pdf.txt", "c")},
		{Document: model.NewDocument("in/y_2024.txt", "d")},
		model.NewFailedOutcome("in/x_2024.html", errors.New("broken")),
	}
	disambiguateIDs(outcomes, slog.New(slog.DiscardHandler))

	want := []string{"x_2024.htm", "x_2024.pdf", "x_2024.pdf.txt", "y_2024"}
	for i, id := range want {
		if got := outcomes[i].Document.ID; got != id {
			t.Errorf("outcome %d id = %s, want %s", i, got, id)
		}
	}
	if outcomes[4].Document != nil {
		t.Error("failed outcome should stay without document")
	}
}

// TestDefaultPipeline_NoSentences tests that the sentence section is omitted.
func TestDefaultPipeline_NoSentences(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeInput(t, in, "x_2024.txt", "Item 1A. Risk Factors Tariffs. Item 1B. Unresolved")

	p := newTestPipeline(t, out, nil)
	result := model.NewAnalysisResult(in, out)
	if err := p.Execute(context.Background(), result); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Sentences) != 0 {
		t.Fatalf("expected no sentences, got %d", len(result.Sentences))
	}
	md, err := os.ReadFile(filepath.Join(out, "output.md")) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(md), "Most Negative Sentences") {
		t.Error("report should not contain the sentence section")
	}
}

// TestDefaultPipeline_Errors tests run-level failures.
func TestDefaultPipeline_Errors(t *testing.T) {
	t.Parallel()

	t.Run("no documents", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		writeInput(t, in, "readme.md", "nothing")
		p := newTestPipeline(t, filepath.Join(t.TempDir(), "out"), nil)

		err := p.Execute(context.Background(), model.NewAnalysisResult(in, ""))
		if !errors.Is(err, ErrNoDocuments) {
			t.Errorf("expected ErrNoDocuments, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "load_documents: ") {
			t.Errorf("expected error wrapped with step name, got %q", err.Error())
		}
	})

	t.Run("missing input directory", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, filepath.Join(t.TempDir(), "out"), nil)
		err := p.Execute(context.Background(), model.NewAnalysisResult(filepath.Join(t.TempDir(), "missing"), ""))
		if err == nil {
			t.Error("expected error for missing input directory")
		}
	})

	t.Run("unwritable output", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		writeInput(t, in, "a.txt", exampleFiling)
		blocker := filepath.Join(t.TempDir(), "file")
		writeInput(t, filepath.Dir(blocker), "file", "x")

		p := newTestPipeline(t, filepath.Join(blocker, "out"), nil)
		err := p.Execute(context.Background(), model.NewAnalysisResult(in, ""))
		if err == nil || !strings.HasPrefix(err.Error(), "prepare_output: ") {
			t.Errorf("expected prepare_output error, got %v", err)
		}
	})

	t.Run("history failure is not fatal", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		writeInput(t, in, "a.txt", exampleFiling)
		p := newTestPipeline(t, filepath.Join(t.TempDir(), "out"), &stubRecorder{err: errors.New("disk full")})

		result := model.NewAnalysisResult(in, "")
		if err := p.Execute(context.Background(), result); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result.RunID != 0 {
			t.Error("run id should stay unset")
		}
	})
}

// TestLoader tests outcome classification of single files.
func TestLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInput(t, dir, "ok_2022.txt", "Some  text.  More text.")
	writeInput(t, dir, "blank.txt", "\n\n")

	l := NewLoader(extract.NewRegistry(), nil, nil)

	ok := l.Load(context.Background(), filepath.Join(dir, "ok_2022.txt"))
	if ok.Status != model.OutcomeSuccess || ok.Document.Year != 2022 {
		t.Errorf("unexpected outcome %+v", ok)
	}
	if ok.Document.Text != "Some text.\nMore text." {
		t.Errorf("text should be normalized, got %q", ok.Document.Text)
	}

	blank := l.Load(context.Background(), filepath.Join(dir, "blank.txt"))
	if blank.Status != model.OutcomeEmpty {
		t.Errorf("expected empty outcome, got %s", blank.Status)
	}

	missing := l.Load(context.Background(), filepath.Join(dir, "missing.txt"))
	if missing.Status != model.OutcomeFailed || missing.Err == nil {
		t.Errorf("expected failed outcome, got %+v", missing)
	}

	unsupported := l.Load(context.Background(), filepath.Join(dir, "x.docx"))
	if !errors.Is(unsupported.Err, extract.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", unsupported.Err)
	}
}

// TestLoader_RecoversPanic tests that a panicking extractor yields a failed outcome.
func TestLoader_RecoversPanic(t *testing.T) {
	t.Parallel()

	l := NewLoader(panicExtractor{}, nil, nil)
	o := l.Load(context.Background(), "x.pdf")
	if o.Status != model.OutcomeFailed {
		t.Errorf("expected failed outcome, got %s", o.Status)
	}
}

type panicExtractor struct{}

func (panicExtractor) Extract(context.Context, string) (string, error) {
	panic("corrupt stream")
}
