package lattice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/driftml/lattice/internal/logging"
	"github.com/driftml/lattice/pkg/domain"
	"github.com/driftml/lattice/pkg/search"
	"github.com/google/uuid"
)

// DefaultBeamSize is used when no beam size is configured.
const DefaultBeamSize = 10

// Engine is the high-level entry point for the lattice library. It ties
// a transition table to a configured beam search and produces recorded
// runs ready for persistence or rendering.
type Engine struct {
	table           *domain.Table
	beamSize        int
	perNodeBeamSize int
	batchSize       int
	keepBeamDetails bool
	observer        func(search.StepStats)
	logger          *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithBeamSize sets how many hypotheses survive per batch instance at
// each step (default DefaultBeamSize).
func WithBeamSize(n int) Option {
	return func(e *Engine) {
		e.beamSize = n
	}
}

// WithPerNodeBeamSize caps candidates per hypothesis per step. Defaults
// to the beam size.
func WithPerNodeBeamSize(n int) Option {
	return func(e *Engine) {
		e.perNodeBeamSize = n
	}
}

// WithBatchSize sets how many independent instances are searched in one
// call (default 1).
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		e.batchSize = n
	}
}

// WithBeamDetails records the full beam trajectory on every run.
func WithBeamDetails() Option {
	return func(e *Engine) {
		e.keepBeamDetails = true
	}
}

// WithStepObserver registers a per-step callback, typically for metrics.
func WithStepObserver(fn func(search.StepStats)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine over the given transition table.
func New(table *domain.Table, opts ...Option) (*Engine, error) {
	if table == nil {
		return nil, fmt.Errorf("a transition table is required")
	}

	e := &Engine{
		table:     table,
		beamSize:  DefaultBeamSize,
		batchSize: 1,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.perNodeBeamSize == 0 {
		e.perNodeBeamSize = e.beamSize
	}

	if e.beamSize <= 0 {
		return nil, fmt.Errorf("beam size must be positive, got %d", e.beamSize)
	}
	if e.perNodeBeamSize <= 0 {
		return nil, fmt.Errorf("per-node beam size must be positive, got %d", e.perNodeBeamSize)
	}
	if e.batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", e.batchSize)
	}
	return e, nil
}

// Open initializes an Engine from a YAML transition table file.
func Open(path string, opts ...Option) (*Engine, error) {
	table, err := domain.LoadTable(path)
	if err != nil {
		return nil, err
	}
	return New(table, opts...)
}

// Table returns the engine's transition table.
func (e *Engine) Table() *domain.Table {
	return e.table
}

// Decode runs an unconstrained beam search for at most numSteps steps.
func (e *Engine) Decode(ctx context.Context, numSteps int) (*domain.Run, error) {
	return e.decode(ctx, numSteps, nil)
}

// DecodeConstrained forces the search along the given action sequence
// before letting it continue freely. Beam details are always recorded
// for constrained runs, so callers can check whether the forced prefix
// stayed on the beam.
func (e *Engine) DecodeConstrained(ctx context.Context, numSteps int, constraint []int) (*domain.Run, error) {
	if len(constraint) == 0 {
		return nil, fmt.Errorf("constraint sequence must not be empty")
	}
	return e.decode(ctx, numSteps, constraint)
}

func (e *Engine) decode(ctx context.Context, numSteps int, constraint []int) (*domain.Run, error) {
	searchOpts := []search.Option{search.WithPerNodeBeamSize(e.perNodeBeamSize)}
	if e.keepBeamDetails {
		searchOpts = append(searchOpts, search.WithBeamDetails())
	}
	if e.observer != nil {
		searchOpts = append(searchOpts, search.WithStepObserver(e.observer))
	}

	engine, err := search.New[*domain.State](e.beamSize, searchOpts...)
	if err != nil {
		return nil, err
	}
	if constraint != nil {
		engine = engine.ConstrainedTo(constraint)
	}

	started := time.Now().UTC()
	best, err := engine.Search(ctx, numSteps, domain.NewInitialState(e.table, e.batchSize), e.table)
	if err != nil {
		return nil, err
	}

	run := &domain.Run{
		ID:              uuid.NewString(),
		Table:           e.table.Name(),
		CreatedAt:       started,
		NumSteps:        numSteps,
		BeamSize:        e.beamSize,
		PerNodeBeamSize: e.perNodeBeamSize,
		BatchSize:       e.batchSize,
		Constraint:      constraint,
		Results:         make(map[int][]domain.Hypothesis, len(best)),
	}
	for batchIndex, states := range best {
		hypotheses := make([]domain.Hypothesis, 0, len(states))
		for _, state := range states {
			hypotheses = append(hypotheses, domain.Hypothesis{
				Score:   state.Scores()[0],
				Actions: state.ActionHistories()[0],
			})
		}
		run.Results[batchIndex] = hypotheses
	}
	for _, step := range engine.Beams() {
		entries := make([]domain.Hypothesis, 0, len(step))
		for _, entry := range step {
			entries = append(entries, domain.Hypothesis{Score: entry.Score, Actions: entry.ActionHistory})
		}
		run.Beams = append(run.Beams, entries)
	}

	e.logger.Debug("search complete",
		"run_id", run.ID,
		"table", run.Table,
		"num_steps", numSteps,
		"batches", len(run.Results),
	)
	return run, nil
}
