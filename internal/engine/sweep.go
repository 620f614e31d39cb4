package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pegada/calcpc/internal/engine/batch"
)

// SweepOptions controls RecalculateOwners.
type SweepOptions struct {
	// Owners to recalculate. Empty means every owner of the sheet.
	Owners []int64

	// BatchSize is the number of owners handed to one worker at a time.
	BatchSize int

	// Concurrency bounds the batches running at once. Values below 2 run
	// sequentially.
	Concurrency int

	// OnProgress, when set, is called after each batch.
	OnProgress batch.ProgressCallback
}

// SweepResult collects the reports of a sweep, ordered by owner.
type SweepResult struct {
	Reports []*Report
}

// OK reports whether every owner's pass succeeded.
func (r *SweepResult) OK() bool {
	for _, rep := range r.Reports {
		if !rep.OK() {
			return false
		}
	}
	return true
}

// RecalculateOwners runs RecalculateAll for many owners. Each owner is
// recalculated by exactly one worker; different owners may run in
// parallel. Failures do not stop the sweep and are returned joined.
func (s *Sheet) RecalculateOwners(ctx context.Context, opts SweepOptions) (*SweepResult, error) {
	owners := opts.Owners
	if len(owners) == 0 {
		var err error
		owners, err = s.engine.store.Owners(ctx, s.name)
		if err != nil {
			return nil, err
		}
	}
	result := &SweepResult{}
	if len(owners) == 0 {
		return result, nil
	}

	size := opts.BatchSize
	if size == 0 {
		size = batch.DefaultBatchSize
	}
	proc, err := batch.NewProcessor[int64](size)
	if err != nil {
		return nil, err
	}
	if opts.OnProgress != nil {
		proc.WithProgressCallback(opts.OnProgress)
	}

	logger := s.logger(ctx, "RecalculateOwners", "")
	logger.Info().
		Int("owners", len(owners)).
		Int("batch_size", size).
		Int("concurrency", opts.Concurrency).
		Msg("sweep started")

	var mu sync.Mutex
	callback := func(ctx context.Context, owners []int64, _ int) error {
		var errs []error
		for _, owner := range owners {
			rep, err := s.RecalculateAll(ctx, owner)
			if rep != nil {
				mu.Lock()
				result.Reports = append(result.Reports, rep)
				mu.Unlock()
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("owner %d: %w", owner, err))
			}
		}
		return errors.Join(errs...)
	}

	if opts.Concurrency > 1 {
		err = proc.ProcessConcurrent(ctx, owners, callback, opts.Concurrency)
	} else {
		err = processAll(ctx, proc, owners, callback)
	}

	sort.Slice(result.Reports, func(i, j int) bool { return result.Reports[i].Owner < result.Reports[j].Owner })
	logger.Info().
		Int("recalculated", len(result.Reports)).
		Bool("ok", err == nil && result.OK()).
		Msg("sweep finished")
	return result, err
}

// processAll runs batches in order but keeps going after a failed batch.
func processAll(ctx context.Context, proc *batch.Processor[int64], owners []int64, callback batch.BatchCallback[int64]) error {
	var errs []error
	err := proc.Process(ctx, owners, func(ctx context.Context, b []int64, i int) error {
		if err := callback(ctx, b, i); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
