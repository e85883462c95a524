package sp

import "github.com/sacrt/psac/internal/psacdebug"

// Cursor is the explicit rendering of the tracing DSL's implicit scope
// cursor (parent pointer + child slot) described in the design notes: a
// mutable handle to "the spine node whose Left/Right I am about to fill
// next". Passed explicitly through every traced call instead of living in
// thread-local or global state.
type Cursor struct {
	node *Core
}

// NewCursor wraps root as a cursor ready to receive its first op.
func NewCursor(root *Core) *Cursor {
	return &Cursor{node: root}
}

// Node returns the spine node this cursor currently targets.
func (c *Cursor) Node() *Core { return c.node }

// OpenOp is the DSL's "open a scope" primitive: it allocates a new Core of
// the given kind, attaches it as the cursor's current spine node's Left
// child, allocates a fresh continuation spine SNode as that spine node's
// Right child, and advances the cursor onto the continuation — realizing
// the "R-left, S-right" structural invariant (R and P nodes are always a
// left child; what follows threads into a new S chain on the right) for
// every node shape, not only R.
func (c *Cursor) OpenOp(kind Kind) *Core {
	op := newCore(kind)
	op.parent.store(c.node, false)
	c.node.Left = op

	cont := newCore(KindS)
	cont.parent.store(c.node, false)
	c.node.Right = cont

	c.node = cont
	return op
}

// OpenFork is Par's primitive: it opens a PNode exactly as OpenOp would,
// then gives the two fork bodies independent cursors rooted at fresh
// SNodes — P's two children are two self-contained sub-traces, not an
// op-plus-continuation pair, so they do not share OpenOp's spine
// convention.
func (c *Cursor) OpenFork() (p *Core, left, right *Cursor) {
	p = c.OpenOp(KindP)

	leftRoot := newCore(KindS)
	leftRoot.parent.store(p, false)
	p.Left = leftRoot

	rightRoot := newCore(KindS)
	rightRoot.parent.store(p, false)
	p.Right = rightRoot

	// Both fork bodies must see disjoint, freshly allocated child slots: a
	// caller that reused a populated node here would violate the structural
	// invariant that a par's two sides are self-contained sub-traces.
	psacdebug.Assert(leftRoot != rightRoot, "Par/ParallelFor fork children must be distinct nodes")
	psacdebug.Assert(leftRoot.Left == nil && leftRoot.Right == nil, "Par/ParallelFor left child must be unpopulated at entry")
	psacdebug.Assert(rightRoot.Left == nil && rightRoot.Right == nil, "Par/ParallelFor right child must be unpopulated at entry")

	return p, &Cursor{node: leftRoot}, &Cursor{node: rightRoot}
}

// EnterScope returns a cursor for tracing op's own sub-trace: op's
// Left/Right act exactly like any other spine, populated by further
// OpenOp/OpenFork calls from inside the callback that op.Exec invokes.
func EnterScope(op *Core) *Cursor {
	return &Cursor{node: op}
}

// TrackMod records m as owned by the cursor's current spine node, the
// Go-idiomatic rendering of alloc()/alloc_array()'s "owned by the current
// SP node" contract.
func (c *Cursor) TrackMod(m DynMod) {
	c.node.DynamicMods = append(c.node.DynamicMods, m)
}
