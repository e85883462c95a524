package sp

import (
	"github.com/sacrt/psac/gc"
	"github.com/sacrt/psac/sched"
)

// orphanSubtree is the "sacrificial scratch node" of the reference design's
// RNode::propagate(): the old sub-trace and dynamic Mods an R node is about
// to discard are moved here and handed to the GC pile rather than destroyed
// in place, so an in-flight reader-set notification from the write that
// triggered this re-execution never races with destruction.
type orphanSubtree struct {
	left, right *Core
	dynamicMods []DynMod
}

// destroyWalk walks c's subtree post-order, unsubscribing every contained R
// node from the Mods it reads (mirroring the reference design's
// RTupleNode/RArrayNode/RScopeNode destructors) and then asserting (debug
// builds) that every scope-allocated Mod's reader set is empty. Post-order
// because a node's descendants may subscribe to Mods the node itself owns
// (its DynamicMods): every descendant must unsubscribe before this node's
// own DynamicMods are asserted empty.
func destroyWalk(c *Core) (nodes int) {
	if c == nil {
		return 0
	}
	nodes = 1
	nodes += destroyWalk(c.Left)
	nodes += destroyWalk(c.Right)
	if c.Kind == KindR {
		c.Exec.Unsubscribe()
	}
	for _, m := range c.DynamicMods {
		m.AssertNoReaders()
	}
	return nodes
}

// Destroy implements gc.Orphan, reporting an approximate node count and byte
// footprint for accounting once the subtree has been unsubscribed and
// asserted clean.
func (o *orphanSubtree) Destroy() (nodes int, bytes uintptr) {
	nodes = destroyWalk(o.left) + destroyWalk(o.right)
	for _, m := range o.dynamicMods {
		m.AssertNoReaders()
	}
	return nodes, uintptr(nodes) * ApproxSize()
}

// DestroyTree unsubscribes and asserts clean every R node and scope-allocated
// Mod reachable from root, the rendering of the reference design's
// Computation::destroy() (types.hpp): manually tearing down an entire trace
// rather than waiting on the GC pile, used when a Computation itself is
// destroyed outside of propagation.
func DestroyTree(root *Core) (nodes int, bytes uintptr) {
	nodes = destroyWalk(root)
	return nodes, uintptr(nodes) * ApproxSize()
}

// Propagate walks core, re-executing dirty R nodes and recursing into dirty
// S/P children, clearing every dirty bit and pending-update flag it visits.
// It is idempotent on an already-clean subtree (the root-level isDirty
// check below makes a second call with no intervening writes a no-op).
func Propagate(core *Core, scheduler sched.Scheduler, pile *gc.Pile, workerID int) error {
	if !core.isDirty() {
		return nil
	}

	var err error
	switch core.Kind {
	case KindS:
		err = propagateChildren(core, scheduler, pile, workerID)

	case KindP:
		leftDirty := core.Left != nil && core.Left.isDirty()
		rightDirty := core.Right != nil && core.Right.isDirty()
		switch {
		case leftDirty && rightDirty:
			err = scheduler.ParDo(
				func(wid int) error { return Propagate(core.Left, scheduler, pile, wid) },
				func(wid int) error { return Propagate(core.Right, scheduler, pile, wid) },
			)
		case leftDirty:
			err = Propagate(core.Left, scheduler, pile, workerID)
		case rightDirty:
			err = Propagate(core.Right, scheduler, pile, workerID)
		}

	case KindR:
		if core.PendingUpdate.Load() {
			reexecuteR(core, pile, workerID)
			core.PendingUpdate.Store(false)
		} else {
			err = propagateChildren(core, scheduler, pile, workerID)
		}
	}

	if err != nil {
		return err
	}
	core.clearDirty()
	return nil
}

func propagateChildren(core *Core, scheduler sched.Scheduler, pile *gc.Pile, workerID int) error {
	if core.Left != nil {
		if err := Propagate(core.Left, scheduler, pile, workerID); err != nil {
			return err
		}
	}
	if core.Right != nil {
		if err := Propagate(core.Right, scheduler, pile, workerID); err != nil {
			return err
		}
	}
	return nil
}

// reexecuteR implements the R-node re-execution protocol: move the old
// sub-trace and scoped Mods into an orphan, hand it to the worker's GC
// pile, then run the node's callback fresh against a clean scope.
func reexecuteR(core *Core, pile *gc.Pile, workerID int) {
	pile.Add(workerID, &orphanSubtree{
		left:        core.Left,
		right:       core.Right,
		dynamicMods: core.DynamicMods,
	})
	core.Left = nil
	core.Right = nil
	core.DynamicMods = nil
	core.Exec.Execute(EnterScope(core))
}
