package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/riskscan/internal/model"
)

// DefaultConcurrency is the number of documents loaded at once.
const DefaultConcurrency = 4

// LoadFunc loads one document and reports the outcome. It must not panic
// and must record failures in the outcome rather than returning them.
type LoadFunc func(ctx context.Context, path string) model.Outcome

// BatchProcessor loads multiple documents concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// load produces the outcome of one document.
	load LoadFunc

	// concurrency is the maximum number of concurrent loads.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent loads.
// Default is DefaultConcurrency if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor that loads each path with load.
func NewBatchProcessor(load LoadFunc, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		load:        load,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch loads all paths with bounded concurrency.
// Outcomes are returned in the order of paths. A failed document does not
// stop the batch; only cancellation does, and its error is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]model.Outcome, error) {
	bp.logger.Info("starting batch processing",
		"total_documents", len(paths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	outcomes := make([]model.Outcome, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("loading document",
				"path", path,
				"index", i+1,
				"total", len(paths),
			)

			outcome := bp.load(ctx, path)
			outcomes[i] = outcome

			if outcome.Status == model.OutcomeFailed {
				bp.logger.Warn("document failed",
					"path", path,
					"error", outcome.Err,
				)
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_documents", len(paths),
		"elapsed", time.Since(startTime),
	)

	return outcomes, err
}
