// Package batch implements the batch processor (C11): enumerate files in
// `received` state and drive each through the pipeline orchestrator,
// concurrently, aggregating per-file outcomes.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alitto/pond"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/borderops/ingestor/internal/pipeline"
	"github.com/borderops/ingestor/internal/store"
)

// DefaultPoolSize bounds how many files a single Run call processes in
// parallel, via the alitto/pond worker pool.
const DefaultPoolSize = 5

// Result is one file's outcome from a Run, paired with any orchestration
// error pipeline.ProcessFile itself returned (distinct from a `failed`
// status, which is recorded on the file and not an error here).
type Result struct {
	FileID string
	Outcome pipeline.Outcome
	Err     error
}

// Processor enumerates received files and runs them through a Pipeline.
type Processor struct {
	pool     *pgxpool.Pool
	pipeline *pipeline.Pipeline
	poolSize int
	log      *slog.Logger
}

// New builds a Processor bounded to poolSize concurrent pipeline runs (0
// uses DefaultPoolSize).
func New(pool *pgxpool.Pool, pl *pipeline.Pipeline, poolSize int, log *slog.Logger) *Processor {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Processor{pool: pool, pipeline: pl, poolSize: poolSize, log: log}
}

// Run enumerates files with status=received in creation order and invokes
// the pipeline for each, via a bounded worker pool so the batch never
// processes more files at once than poolSize. Exceptions from the
// orchestrator are caught and recorded against the individual file's
// Result; the batch never aborts early, per spec §4.11.
func (p *Processor) Run(ctx context.Context) ([]Result, error) {
	files, err := store.New(p.pool).ListFilesByStatus(ctx, store.StatusReceived)
	if err != nil {
		return nil, fmt.Errorf("batch: list received files: %w", err)
	}
	if len(files) == 0 {
		return nil, nil
	}

	wp := pond.New(p.poolSize, len(files))

	var mu sync.Mutex
	results := make([]Result, 0, len(files))

	for _, f := range files {
		f := f
		wp.Submit(func() {
			outcome, err := p.runOne(ctx, f)

			mu.Lock()
			results = append(results, Result{FileID: store.UUIDString(f.ID), Outcome: outcome, Err: err})
			mu.Unlock()
		})
	}

	wp.StopAndWait()
	return results, nil
}

func (p *Processor) runOne(ctx context.Context, f store.BordereauxFile) (outcome pipeline.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("batch: pipeline panicked processing file", "file_id", store.UUIDString(f.ID), "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.pipeline.ProcessFile(ctx, f.ID)
}
