// Package gc implements the deferred-reclamation pile: a per-worker stash
// of subtrees the change-propagation engine has orphaned, destroyed only at
// an explicit, quiescent Run call rather than the moment they are replaced.
package gc

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
)

// Orphan is anything the pile can hold: a retired SP subtree, able to
// finalize its own reclamation and report its footprint. sp.orphanSubtree
// implements this; package gc deliberately knows nothing else about the SP
// tree, avoiding an import cycle between gc and sp.
type Orphan interface {
	// Destroy finalizes reclamation and reports an approximate node count
	// and byte footprint for Stats.
	Destroy() (nodes int, bytes uintptr)
}

// Stats summarizes the result of the most recent Run.
type Stats struct {
	Nodes int
	Bytes uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %s", s.Nodes, humanize.Bytes(s.Bytes))
}

// Pile is a per-worker sharded stash of orphaned subtrees, sized up front
// to the worker count so the first Add from any worker never races a
// shard-slice reallocation, mirroring the reference design's
// 2*hardware_concurrency() pre-sizing.
type Pile struct {
	mu     []sync.Mutex
	shards [][]Orphan
}

// NewPile allocates a pile with shards sized for workers logical workers.
func NewPile(workers int) *Pile {
	if workers < 1 {
		workers = 1
	}
	return &Pile{
		mu:     make([]sync.Mutex, workers),
		shards: make([][]Orphan, workers),
	}
}

// Add stashes o in the shard for workerID. Safe to call concurrently from
// any worker; never safe to call concurrently with Run.
func (p *Pile) Add(workerID int, o Orphan) {
	i := workerID % len(p.shards)
	p.mu[i].Lock()
	p.shards[i] = append(p.shards[i], o)
	p.mu[i].Unlock()
}

// Run destroys every piled orphan across all shards and reports the
// aggregate stats. Must be invoked only at a quiescent point — no
// propagation in flight — per the deferred-reclamation contract.
func (p *Pile) Run() Stats {
	var stats Stats
	for i := range p.shards {
		p.mu[i].Lock()
		shard := p.shards[i]
		p.shards[i] = nil
		p.mu[i].Unlock()

		for _, o := range shard {
			nodes, bytes := o.Destroy()
			stats.Nodes += nodes
			stats.Bytes += uint64(bytes)
		}
	}
	return stats
}

// Pending reports how many orphans are currently piled (not yet destroyed);
// psac.Computation.PileStats exposes it.
func (p *Pile) Pending() int {
	n := 0
	for i := range p.shards {
		p.mu[i].Lock()
		n += len(p.shards[i])
		p.mu[i].Unlock()
	}
	return n
}
