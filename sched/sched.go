// Package sched provides the work-stealing fork-join scheduler the core
// requires as an external collaborator (spec §6): par_do / parallel_for /
// worker_id / num_workers. The core never creates OS threads itself; it
// submits tasks to a Scheduler.
package sched

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Scheduler is the required external interface. Every task carries the
// calling worker's id explicitly — Go has no portable thread-local
// storage, so rather than approximate one, worker identity here is an
// explicit argument the caller threads through (the same rendering the
// design notes apply to the "current scope" cursor).
type Scheduler interface {
	// ParDo runs left and right, returning after both finish; if either
	// fails, the first error is returned. Ordering between them is
	// unspecified.
	ParDo(left, right func(workerID int) error) error
	// ParallelFor divides [lo, hi) into a balanced tree of ParDo forks down
	// to subranges of size <= granularity, then runs body serially over
	// each leaf subrange.
	ParallelFor(lo, hi, granularity int, body func(workerID, i int) error) error
	// WorkerID returns an id for the current caller, used only to pick a
	// GC pile shard; it is not guaranteed to be stable across calls.
	WorkerID() int
	NumWorkers() int
	SetNumWorkers(n int)
}

// DefaultScheduler is a goroutine-based Scheduler: ParDo runs its two tasks
// concurrently and joins them with errgroup, and worker ids are assigned by
// round-robin rather than pinned to a fixed pool of long-lived workers —
// Go's runtime schedules goroutines onto OS threads itself, so there is no
// stable "worker" identity to expose beyond a shard-selection hint for the
// GC pile.
type DefaultScheduler struct {
	numWorkers atomic.Int64
	next       atomic.Int64
}

// NewDefaultScheduler constructs a scheduler reporting workers logical
// workers (GOMAXPROCS if workers <= 0).
func NewDefaultScheduler(workers int) *DefaultScheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	s := &DefaultScheduler{}
	s.numWorkers.Store(int64(workers))
	return s
}

func (s *DefaultScheduler) WorkerID() int {
	n := s.numWorkers.Load()
	if n <= 0 {
		return 0
	}
	id := s.next.Add(1)
	return int(id % n)
}

func (s *DefaultScheduler) NumWorkers() int { return int(s.numWorkers.Load()) }

func (s *DefaultScheduler) SetNumWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.numWorkers.Store(int64(n))
}

func (s *DefaultScheduler) ParDo(left, right func(workerID int) error) error {
	var g errgroup.Group
	lwid, rwid := s.WorkerID(), s.WorkerID()
	g.Go(func() error { return left(lwid) })
	g.Go(func() error { return right(rwid) })
	return g.Wait()
}

func (s *DefaultScheduler) ParallelFor(lo, hi, granularity int, body func(workerID, i int) error) error {
	if granularity < 1 {
		granularity = 1
	}
	return s.parFor(lo, hi, granularity, body)
}

func (s *DefaultScheduler) parFor(lo, hi, granularity int, body func(int, int) error) error {
	if hi <= lo {
		return nil
	}
	if hi-lo <= granularity {
		return s.seqFor(lo, hi, body)
	}
	mid := lo + (hi-lo)/2
	return s.ParDo(
		func(int) error { return s.parFor(lo, mid, granularity, body) },
		func(int) error { return s.parFor(mid, hi, granularity, body) },
	)
}

func (s *DefaultScheduler) seqFor(lo, hi int, body func(int, int) error) error {
	wid := s.WorkerID()
	for i := lo; i < hi; i++ {
		if err := body(wid, i); err != nil {
			return err
		}
	}
	return nil
}
