package psac

import (
	"fmt"

	"github.com/sacrt/psac/gc"
	"github.com/sacrt/psac/sched"
	"github.com/sacrt/psac/sp"
)

// Computation is the owned handle to a trace root, returned by Run and
// consumed by Propagate/RunGC/Destroy. It is the sole owner of the root SP
// node; all Mods the traced function allocated with Alloc/AllocArray
// outlive any reader referencing them until Destroy.
type Computation struct {
	root      *sp.Core
	scheduler sched.Scheduler
	pile      *gc.Pile
}

// Option configures a Run call.
type Option func(*runConfig)

type runConfig struct {
	scheduler sched.Scheduler
}

// WithScheduler overrides the default goroutine-based scheduler, e.g. to
// inject a fixed worker count or a test double.
func WithScheduler(s sched.Scheduler) Option {
	return func(c *runConfig) { c.scheduler = s }
}

// Run allocates a fresh root SNode, threads the cursor, and calls f — the
// traced entry point building the initial SP tree. The returned
// Computation owns that tree.
func Run(f func(cur *Cursor), opts ...Option) *Computation {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.scheduler == nil {
		cfg.scheduler = sched.NewDefaultScheduler(0)
	}

	root := sp.NewRoot()
	comp := &Computation{
		root:      root,
		scheduler: cfg.scheduler,
		pile:      gc.NewPile(cfg.scheduler.NumWorkers()),
	}
	f(wrap(sp.NewCursor(root), cfg.scheduler))
	return comp
}

// Call invokes another traced function, inheriting and advancing cur — in
// this explicit-cursor rendering that is simply an ordinary Go call.
func Call[Args any](cur *Cursor, f func(cur *Cursor, args Args), args Args) {
	f(cur, args)
}

// Propagate walks the computation's trace from the root, re-executing dirty
// R nodes, per the change-propagation algorithm. A second call on an
// already-clean trace is a no-op (the idempotence law).
func (c *Computation) Propagate() error {
	if err := sp.Propagate(c.root, c.scheduler, c.pile, c.scheduler.WorkerID()); err != nil {
		return fmt.Errorf("psac: propagate: %w", err)
	}
	return nil
}

// RunGC flushes the computation's GC pile. Must be called only at a
// quiescent point — no Propagate in flight.
func (c *Computation) RunGC() gc.Stats {
	return c.pile.Run()
}

// PileStats reports how many orphans the pile currently holds, without
// destroying them.
func (c *Computation) PileStats() int {
	return c.pile.Pending()
}

// Scheduler returns the scheduler this computation was built with.
func (c *Computation) Scheduler() sched.Scheduler { return c.scheduler }

// Destroy manually tears down the entire trace: the pile is flushed first,
// so orphaned readers unsubscribe, then every R node of the live tree
// unsubscribes from the Mods it reads and every scope-allocated Mod is
// asserted to have an empty reader set (debug builds). Must be
// called only at a quiescent point — no Propagate in flight — and only
// once; the Computation must not be used afterward.
func (c *Computation) Destroy() gc.Stats {
	stats := c.pile.Run()
	nodes, bytes := sp.DestroyTree(c.root)
	stats.Nodes += nodes
	stats.Bytes += uint64(bytes)
	return stats
}
