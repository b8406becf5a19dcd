// Package batch generates and stores daily puzzles for a range of dates.
//
// A run is idempotent: dates that already have a puzzle are skipped, and
// every other date is seeded from its ISO string, so re-running a range
// writes nothing new. All inserts of a run are committed together.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/ports"
)

var tracer = otel.Tracer("tiles.batch")

var puzzlesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tiles_batch_puzzles_total",
	Help: "Dates processed by the batch generator, by outcome (generated, skipped)",
}, []string{"outcome"})

// Summary reports what a run did.
type Summary struct {
	RunID     string
	Start     domain.Date
	End       domain.Date
	Generated []domain.Date
	Skipped   []domain.Date
}

// Runner drives the generator over a date range.
type Runner struct {
	Store     ports.PuzzleStore
	Generator ports.Generator
	Validator ports.Validator
	Words     ports.WordSource
	Rules     ports.RulesLoader
	Salt      string
	Logger    *slog.Logger
}

// Run generates puzzles for every date in [start, end] that has none.
// start after end fails with domain.ErrRange before anything is read or
// written. Nothing is committed unless every date succeeds.
func (r *Runner) Run(ctx context.Context, start, end domain.Date) (Summary, error) {
	if start.After(end) {
		return Summary{}, fmt.Errorf("%w: start %s is after end %s", domain.ErrRange, start, end)
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sum := Summary{RunID: uuid.NewString(), Start: start, End: end}
	logger = logger.With("run_id", sum.RunID)

	ctx, span := tracer.Start(ctx, "batch.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("batch.start", start.String()),
		attribute.String("batch.end", end.String()),
	)

	err := r.run(ctx, logger, &sum)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch failed")
		return sum, err
	}
	span.SetAttributes(
		attribute.Int("batch.generated", len(sum.Generated)),
		attribute.Int("batch.skipped", len(sum.Skipped)),
	)
	return sum, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, sum *Summary) (err error) {
	if r.Store == nil || r.Generator == nil || r.Words == nil || r.Rules == nil {
		return errors.New("batch runner dependency not configured")
	}
	rules, err := r.Rules.Load()
	if err != nil {
		return err
	}

	logger.Info("processing puzzles",
		"start", sum.Start.String(),
		"end", sum.End.String(),
		"days", sum.Start.DaysUntil(sum.End)+1,
	)

	b, err := r.Store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = b.Rollback()
		}
	}()

	for d := sum.Start; !d.After(sum.End); d = d.AddDays(1) {
		if err := ctx.Err(); err != nil {
			return err
		}
		exists, err := b.Has(ctx, d)
		if err != nil {
			return fmt.Errorf("check %s: %w", d, err)
		}
		if exists {
			logger.Info("puzzle already exists, skipping", "date", d.String())
			sum.Skipped = append(sum.Skipped, d)
			continue
		}

		logger.Info("generating puzzle", "date", d.String())
		p, st, err := r.Generator.Generate(ctx, domain.SeedFromString(d.String()), r.Salt, r.Words, rules)
		if err != nil {
			return fmt.Errorf("generate %s: %w", d, err)
		}
		if r.Validator != nil {
			ok, probs, err := r.Validator.Validate(ctx, p)
			if err != nil {
				return fmt.Errorf("validate %s: %w", d, err)
			}
			if !ok {
				return fmt.Errorf("%w: puzzle for %s is invalid: %v", domain.ErrGeneration, d, probs)
			}
		}
		if err := b.Add(ctx, &domain.PuzzleRecord{Date: d, Puzzle: *p}); err != nil {
			return fmt.Errorf("stage %s: %w", d, err)
		}
		logger.Debug("staged puzzle", "date", d.String(), "dur", st.Duration)
		sum.Generated = append(sum.Generated, d)
	}

	if err := b.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	puzzlesProcessed.WithLabelValues("generated").Add(float64(len(sum.Generated)))
	puzzlesProcessed.WithLabelValues("skipped").Add(float64(len(sum.Skipped)))
	logger.Info("finished processing puzzles", "generated", len(sum.Generated), "skipped", len(sum.Skipped))
	return nil
}
