package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/riskscan/internal/model"
)

// Step is one stage of an analysis run.
type Step interface {
	// Do runs the stage against the accumulated result. An error means the
	// whole stage failed; per-document problems are recorded as outcomes.
	Do(ctx context.Context, result *model.AnalysisResult) error

	// Name identifies the stage in logs, errors and stage timings.
	Name() string
}

// Pipeline runs its steps in order and stops at the first failing one.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithClock sets the time source used for stage timings.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in the given order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order and appends one model.StageTiming per
// started step to result.Stages. Cancellation is checked before each step.
// A failing step ends the run with the error wrapped as "<step>: <error>".
func (p *Pipeline) Execute(ctx context.Context, result *model.AnalysisResult) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("analysis cancelled", "stage", step.Name(), "reason", err)
			return err
		}

		p.logger.Info("stage started", "stage", step.Name())
		start := p.now()
		err := step.Do(ctx, result)
		timing := model.StageTiming{Name: step.Name(), Elapsed: p.now().Sub(start)}

		if err != nil {
			timing.Error = err.Error()
			result.Stages = append(result.Stages, timing)
			p.logger.Error("stage failed", "stage", step.Name(), "elapsed", timing.Elapsed, "error", err)
			return fmt.Errorf("%s: %w", step.Name(), err)
		}

		result.Stages = append(result.Stages, timing)
		p.logger.Debug("stage completed", "stage", step.Name(), "elapsed", timing.Elapsed)
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
