// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch resolves every unprocessed entity of a list, records each
// result as it arrives, and writes periodic backup checkpoints.
package batch

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/ambiguity-engine/internal/httputil"
	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// Resolver resolves one entity name. Failures are returned as values.
type Resolver interface {
	Resolve(ctx context.Context, entity string) types.AmbiguityResult
}

// EntitySource lists the entities to process in stable order.
type EntitySource interface {
	Entities(ctx context.Context) ([]types.Entity, error)
}

// ResultSink persists one result and marks its entity processed.
type ResultSink interface {
	Record(ctx context.Context, e types.Entity, res types.AmbiguityResult) error
}

// Checkpointer writes a durable snapshot of everything recorded so far.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// sleep pauses between entities; tests replace it.
var sleep httputil.Sleeper = httputil.Sleep

// Summary holds the counts of a batch run.
type Summary struct {
	Resolved  int
	Failed    int
	Skipped   int
	Pending   int
	Cancelled bool
}

// Total returns the number of entities in the list.
func (s Summary) Total() int {
	return s.Resolved + s.Failed + s.Skipped + s.Pending
}

// HasFailures reports whether any entity failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run resolves the unprocessed entities from source and records each
// result in sink. A failed resolution is recorded and the batch goes on.
// Every cfg.CheckpointEvery records, cp writes a checkpoint; a checkpoint
// error is logged only. A sink error stops the batch: Run writes a
// recovery checkpoint and returns the error. On cancellation Run stops
// dispatching, writes a final checkpoint, and returns ctx.Err().
//
// With cfg.Workers above 1, resolutions run concurrently while the
// calling goroutine remains the only one touching sink and cp.
// Progress lines go to w. cp may be nil.
func Run(ctx context.Context, r Resolver, source EntitySource, sink ResultSink, cp Checkpointer,
	cfg types.BatchConfig, w io.Writer, log zerolog.Logger) (Summary, error) {
	log = log.With().Str("component", "batch").Logger()

	var summary Summary
	entities, err := source.Entities(ctx)
	if err != nil {
		return summary, fmt.Errorf("listing entities: %w", err)
	}

	var pending []types.Entity
	for _, e := range entities {
		if e.Processed {
			summary.Skipped++
			continue
		}
		pending = append(pending, e)
	}
	summary.Pending = len(pending)
	fmt.Fprintf(w, "%d entities, %d already processed, %d to resolve\n",
		len(entities), summary.Skipped, len(pending))

	rec := &recorder{sink: sink, cp: cp, every: cfg.CheckpointEvery, total: len(entities), w: w, log: log, summary: &summary}

	if cfg.Workers > 1 {
		err = runConcurrent(ctx, r, pending, cfg, rec)
	} else {
		err = runSequential(ctx, r, pending, cfg, rec)
	}
	if err != nil {
		return summary, err
	}

	if ctx.Err() != nil {
		summary.Cancelled = true
	}
	rec.checkpoint(context.WithoutCancel(ctx), "final")

	fmt.Fprintf(w, "\nBatch summary: %d resolved, %d failed, %d skipped, %d pending (total: %d)\n",
		summary.Resolved, summary.Failed, summary.Skipped, summary.Pending, summary.Total())
	if summary.Cancelled {
		return summary, ctx.Err()
	}
	return summary, nil
}

func runSequential(ctx context.Context, r Resolver, pending []types.Entity, cfg types.BatchConfig, rec *recorder) error {
	for i, e := range pending {
		if ctx.Err() != nil {
			return nil
		}
		if i > 0 && cfg.EntityDelay > 0 {
			if err := sleep(ctx, cfg.EntityDelay); err != nil {
				return nil
			}
		}
		fmt.Fprintf(rec.w, "processing %d/%d: %s\n", e.Index+1, rec.total, e.Name)
		if err := rec.record(ctx, e, r.Resolve(ctx, e.Name)); err != nil {
			return err
		}
	}
	return nil
}

type outcome struct {
	entity types.Entity
	result types.AmbiguityResult
}

func runConcurrent(ctx context.Context, r Resolver, pending []types.Entity, cfg types.BatchConfig, rec *recorder) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan outcome)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range pending {
			if i > 0 && cfg.EntityDelay > 0 {
				if err := sleep(gctx, cfg.EntityDelay); err != nil {
					return nil
				}
			}
			select {
			case jobs <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})
	for n := 0; n < cfg.Workers; n++ {
		g.Go(func() error {
			for i := range jobs {
				results <- outcome{entity: pending[i], result: r.Resolve(gctx, pending[i].Name)}
			}
			return nil
		})
	}
	go func() {
		g.Wait()
		close(results)
	}()

	var sinkErr error
	for o := range results {
		if sinkErr != nil {
			continue
		}
		fmt.Fprintf(rec.w, "resolved %d/%d: %s\n", o.entity.Index+1, rec.total, o.entity.Name)
		if err := rec.record(ctx, o.entity, o.result); err != nil {
			sinkErr = err
			cancel()
		}
	}
	return sinkErr
}

// recorder is the single writer of a run: it owns the sink, the
// checkpointer and the summary counters. total is the size of the whole
// list, so progress lines number entities by their list position.
type recorder struct {
	sink    ResultSink
	cp      Checkpointer
	every   int
	total   int
	w       io.Writer
	log     zerolog.Logger
	summary *Summary

	sinceCheckpoint int
}

// record stores res for e. A cancelled resolution is left unrecorded so
// the entity is retried by the next run.
func (rc *recorder) record(ctx context.Context, e types.Entity, res types.AmbiguityResult) error {
	if res.Failure != nil && res.Failure.Kind == types.FailureCancelled {
		fmt.Fprintf(rc.w, "  cancelled: %s\n", e.Name)
		return nil
	}

	if err := rc.sink.Record(context.WithoutCancel(ctx), e, res); err != nil {
		rc.log.Error().Err(err).Str("entity", e.Name).Msg("recording result failed, writing recovery checkpoint")
		rc.checkpoint(context.WithoutCancel(ctx), "recovery")
		return fmt.Errorf("recording %q: %w", e.Name, err)
	}

	rc.summary.Pending--
	if res.IsFailure() {
		rc.summary.Failed++
		fmt.Fprintf(rc.w, "  failed: %s\n", res.Meanings())
	} else {
		rc.summary.Resolved++
		fmt.Fprintf(rc.w, "  %s\n", describe(res))
	}

	rc.sinceCheckpoint++
	if rc.every > 0 && rc.sinceCheckpoint >= rc.every {
		rc.checkpoint(context.WithoutCancel(ctx), "periodic")
	}
	return nil
}

func (rc *recorder) checkpoint(ctx context.Context, reason string) {
	if rc.cp == nil {
		return
	}
	if err := rc.cp.Checkpoint(ctx); err != nil {
		rc.log.Warn().Err(err).Str("reason", reason).Msg("checkpoint failed")
		return
	}
	rc.sinceCheckpoint = 0
	rc.log.Debug().Str("reason", reason).Msg("checkpoint written")
}

func describe(res types.AmbiguityResult) string {
	switch res.Kind {
	case types.ResultDisambiguated:
		if len(res.Candidates) == 0 {
			return "disambiguation: " + types.NoDisambiguationFound
		}
		return fmt.Sprintf("disambiguation: %d candidates", len(res.Candidates))
	case types.ResultArticle:
		return "article: " + res.Link
	default:
		return string(res.Kind)
	}
}
