// Package sp implements the SP trace tree: the binary tree of S
// (sequential), P (parallel fork), and R (read) nodes that records a traced
// computation's execution dynamics, plus the change-propagation walk that
// re-executes exactly the R nodes whose dependencies changed.
package sp

import (
	"sync/atomic"
	"unsafe"
)

// Kind tags which of the three node shapes a Core is. A tagged union over a
// single concrete node type, rather than an interface with virtual dispatch
// on the hot path, per the polymorphism-over-node-shape design note: S/P
// carry no extra state, R carries Exec and PendingUpdate.
type Kind uint8

const (
	KindS Kind = iota
	KindP
	KindR
)

// markedParent is the bit-tagged back-pointer: the low bit of the word
// doubles as the owning Core's own dirty flag. This is a direct
// transliteration of the reference design's marked_ptr<SPNode>; it is safe
// in Go because a node's parent is always independently kept alive by the
// tree rooted above it, so stashing the pointer as an untracked uintptr
// never races with the garbage collector.
type markedParent struct {
	word atomic.Uintptr
}

const dirtyBit = uintptr(1)

func (p *markedParent) store(parent *Core, dirty bool) {
	w := uintptr(unsafe.Pointer(parent))
	if dirty {
		w |= dirtyBit
	}
	p.word.Store(w)
}

func (p *markedParent) parent() *Core {
	return (*Core)(unsafe.Pointer(p.word.Load() &^ dirtyBit)) //nolint:govet
}

func (p *markedParent) dirty() bool {
	return p.word.Load()&dirtyBit != 0
}

// trySetDirty sets the dirty bit, reporting whether it was previously clear.
func (p *markedParent) trySetDirty() bool {
	for {
		old := p.word.Load()
		if old&dirtyBit != 0 {
			return false
		}
		if p.word.CompareAndSwap(old, old|dirtyBit) {
			return true
		}
	}
}

func (p *markedParent) clearDirty() {
	for {
		old := p.word.Load()
		next := old &^ dirtyBit
		if p.word.CompareAndSwap(old, next) {
			return
		}
	}
}

// DynMod is anything a Core can own as a dynamically allocated Mod (a
// *mod.Mod[T] or *mod.ModArray[T] for some T). Kept here, rather than
// importing package mod, only for the AssertNoReaders method the owning
// Core needs when a scope is discarded.
type DynMod interface {
	AssertNoReaders()
}

// Executor is implemented by every R node shape. Execute reads the node's
// currently subscribed Mod values, runs the user callback, and builds the
// node's fresh sub-trace by driving cur — the very re-execution unit the
// change-propagation engine exists to invoke selectively. Unsubscribe
// removes the node from every Mod it currently reads, mirroring the
// reference design's RTupleNode/RArrayNode/RScopeNode destructors
// (types.hpp's unsubscribe()): called once when the node's subtree is
// retired, whether by re-execution (propagate.go's reexecuteR) or by
// Computation destruction, so no Mod is left referencing a dead reader.
type Executor interface {
	Execute(cur *Cursor)
	Unsubscribe()
}

// Core is the single concrete representation of every SP tree node. Its
// own `parent` word carries the dirty bit for the node itself (see
// markedParent); Left/Right are owned children; DynamicMods are Mods
// allocated in this node's scope.
type Core struct {
	parent        markedParent
	Kind          Kind
	Left          *Core
	Right         *Core
	DynamicMods   []DynMod
	Exec          Executor     // non-nil only for Kind == KindR
	PendingUpdate atomic.Bool  // R-node only: this node's own dependency changed
}

func newCore(kind Kind) *Core {
	return &Core{Kind: kind}
}

// NewRoot allocates a fresh root SNode with no parent, the node psac.Run
// threads a Cursor into.
func NewRoot() *Core {
	return newCore(KindS)
}

func (c *Core) isDirty() bool    { return c.parent.dirty() }
func (c *Core) clearDirty()      { c.parent.clearDirty() }

// MarkDirty sets leaf's own dirty bit and, if it was previously clear, walks
// up through its ancestors setting each one's dirty bit in turn, stopping
// as soon as it reaches a node that was already dirty — by the time an
// ancestor is dirty, every node above it already is too.
func MarkDirty(leaf *Core) {
	node := leaf
	for node != nil {
		if !node.parent.trySetDirty() {
			return
		}
		node = node.parent.parent()
	}
}

// ApproxSize reports a rough per-node byte footprint, used only by gc.Stats
// reporting.
func ApproxSize() uintptr {
	return unsafe.Sizeof(Core{})
}
