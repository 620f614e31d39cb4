package batch

import (
	"sync"
	"time"
)

const percentMultiplier = 100

// Progress counts completed batches. It is safe for concurrent use.
type Progress struct {
	mu sync.RWMutex

	totalItems       int
	totalBatches     int
	processedItems   int
	processedBatches int
	failedBatches    int
	start            time.Time
}

// NewProgress returns a tracker for totalItems split into totalBatches.
func NewProgress(totalItems, totalBatches int) *Progress {
	return &Progress{
		totalItems:   totalItems,
		totalBatches: totalBatches,
		start:        time.Now(),
	}
}

// Add records a finished batch of n items.
func (p *Progress) Add(n int, failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processedItems += n
	p.processedBatches++
	if failed {
		p.failedBatches++
	}
}

// Snapshot returns a copy of the current counters.
func (p *Progress) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		TotalItems:       p.totalItems,
		ProcessedItems:   p.processedItems,
		TotalBatches:     p.totalBatches,
		ProcessedBatches: p.processedBatches,
		FailedBatches:    p.failedBatches,
		Elapsed:          time.Since(p.start),
	}
	if p.totalItems > 0 {
		s.Percent = float64(p.processedItems) / float64(p.totalItems) * percentMultiplier
	}
	if p.processedItems > 0 {
		perItem := s.Elapsed / time.Duration(p.processedItems)
		s.Remaining = perItem * time.Duration(p.totalItems-p.processedItems)
	}
	return s
}

// Snapshot is an immutable view of a Progress.
type Snapshot struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
	FailedBatches    int
	Percent          float64
	Elapsed          time.Duration
	Remaining        time.Duration
}

// Complete reports whether every item has been processed.
func (s Snapshot) Complete() bool {
	return s.ProcessedItems >= s.TotalItems
}
