package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/riskscan/internal/extract"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/textnorm"
)

// Loader reads one filing, extracts its text and normalizes it.
type Loader struct {
	extractor  extract.Extractor
	normalizer *textnorm.Normalizer
	logger     *slog.Logger
}

// NewLoader creates a Loader. A nil normalizer uses the default one.
func NewLoader(extractor extract.Extractor, normalizer *textnorm.Normalizer, logger *slog.Logger) *Loader {
	if normalizer == nil {
		normalizer = textnorm.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{extractor: extractor, normalizer: normalizer, logger: logger}
}

// Load returns the outcome of reading path. Readable documents are marked
// successful; section extraction may later downgrade them to empty. A file
// without text yields an empty outcome and read errors a failed one.
func (l *Loader) Load(ctx context.Context, path string) (outcome model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = model.NewFailedOutcome(path, fmt.Errorf("panic during extraction: %v", r))
		}
	}()

	raw, err := l.extractor.Extract(ctx, path)
	switch {
	case errors.Is(err, extract.ErrNoText):
		l.logger.Warn("no text extracted", "path", path)
		return model.NewEmptyOutcome(model.NewDocument(path, ""), "no extractable text")
	case err != nil:
		return model.NewFailedOutcome(path, err)
	}

	text := l.normalizer.Normalize(raw)
	doc := model.NewDocument(path, text)
	if strings.TrimSpace(text) == "" {
		l.logger.Warn("no text after normalization", "path", path)
		return model.NewEmptyOutcome(doc, "no extractable text")
	}

	l.logger.Debug("loaded document", "path", path, "id", doc.ID, "year", doc.Year, "chars", len(text))
	return model.Outcome{
		Path:       path,
		Status:     model.OutcomeSuccess,
		StatusText: model.OutcomeSuccess.String(),
		Document:   doc,
	}
}
