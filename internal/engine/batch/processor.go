package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Batch size bounds.
const (
	DefaultBatchSize = 100
	MinBatchSize     = 1
	MaxBatchSize     = 1000
)

// Processor errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
	ErrEmptyItems       = errors.New("items slice cannot be empty")
)

// BatchCallback processes one batch. batchIndex is 0-based.
//
//nolint:revive // BatchCallback is the canonical name for this exported type.
type BatchCallback[T any] func(ctx context.Context, batch []T, batchIndex int) error

// ProgressCallback is invoked after each batch completes.
type ProgressCallback func(snap Snapshot)

// Processor runs callbacks over fixed-size batches of items.
type Processor[T any] struct {
	batchSize  int
	onProgress ProgressCallback

	// mu serializes progress callbacks.
	mu sync.Mutex
}

// NewProcessor returns a Processor with the given batch size.
func NewProcessor[T any](batchSize int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Processor[T]{batchSize: batchSize}, nil
}

// NewProcessorWithDefaults returns a Processor using DefaultBatchSize.
func NewProcessorWithDefaults[T any]() *Processor[T] {
	return &Processor[T]{batchSize: DefaultBatchSize}
}

// WithProgressCallback sets the progress callback.
func (p *Processor[T]) WithProgressCallback(callback ProgressCallback) *Processor[T] {
	p.onProgress = callback
	return p
}

// BatchSize returns the configured batch size.
func (p *Processor[T]) BatchSize() int {
	return p.batchSize
}

// Process runs callback over each batch in order and stops at the first
// error.
func (p *Processor[T]) Process(ctx context.Context, items []T, callback BatchCallback[T]) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	if callback == nil {
		return ErrNilCallback
	}

	bounds := p.Batches(len(items))
	progress := NewProgress(len(items), len(bounds))
	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := items[b[0]:b[1]]
		if err := callback(ctx, batch, i); err != nil {
			return fmt.Errorf("batch %d failed: %w", i, err)
		}
		p.report(progress, len(batch), false)
	}
	return nil
}

// ProcessConcurrent runs at most maxConcurrency batches at a time. Every
// batch runs even when others fail; the failures are returned joined.
func (p *Processor[T]) ProcessConcurrent(
	ctx context.Context,
	items []T,
	callback BatchCallback[T],
	maxConcurrency int,
) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	if callback == nil {
		return ErrNilCallback
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	bounds := p.Batches(len(items))
	progress := NewProgress(len(items), len(bounds))

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(maxConcurrency)

	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		batch := items[b[0]:b[1]]
		g.Go(func() error {
			err := callback(ctx, batch, i)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("batch %d failed: %w", i, err))
				mu.Unlock()
			}
			p.report(progress, len(batch), err != nil)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Batches returns the [start, end) bounds of each batch for n items.
func (p *Processor[T]) Batches(n int) [][2]int {
	total := (n + p.batchSize - 1) / p.batchSize
	out := make([][2]int, total)
	for i := range total {
		start := i * p.batchSize
		out[i] = [2]int{start, min(start+p.batchSize, n)}
	}
	return out
}

func (p *Processor[T]) report(progress *Progress, items int, failed bool) {
	progress.Add(items, failed)
	if p.onProgress == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onProgress(progress.Snapshot())
}
