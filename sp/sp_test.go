package sp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sacrt/psac/gc"
	"github.com/sacrt/psac/sched"
	"github.com/sacrt/psac/sp"
)

// fakeExec is a minimal sp.Executor: it records how many times it ran and
// builds no sub-trace of its own.
type fakeExec struct {
	runs int
}

func (f *fakeExec) Execute(cur *sp.Cursor) { f.runs++ }
func (f *fakeExec) Unsubscribe()           {}

func newRNode(cur *sp.Cursor) (*sp.Core, *fakeExec) {
	op := cur.OpenOp(sp.KindR)
	exec := &fakeExec{}
	op.Exec = exec
	exec.Execute(sp.EnterScope(op))
	return op, exec
}

func TestMarkDirtyIsIdempotentOnSameLeaf(t *testing.T) {
	root := sp.NewRoot()
	cur := sp.NewCursor(root)
	r1, _ := newRNode(cur)

	sp.MarkDirty(r1)
	assert.True(t, root.Left == r1)

	// A second MarkDirty call on the same leaf must be a no-op (idempotent):
	// it must not panic, and the tree must remain marked dirty.
	sp.MarkDirty(r1)
}

func TestPropagateReexecutesOnlyPendingRNode(t *testing.T) {
	root := sp.NewRoot()
	cur := sp.NewCursor(root)
	r1, exec1 := newRNode(cur)
	_, exec2 := newRNode(cur)

	require.Equal(t, 1, exec1.runs)
	require.Equal(t, 1, exec2.runs)

	r1.PendingUpdate.Store(true)
	sp.MarkDirty(r1)

	scheduler := sched.NewDefaultScheduler(1)
	pile := gc.NewPile(1)
	require.NoError(t, sp.Propagate(root, scheduler, pile, 0))

	assert.Equal(t, 2, exec1.runs, "dirty R node must re-execute")
	assert.Equal(t, 1, exec2.runs, "clean R node must not re-execute")
	assert.False(t, r1.PendingUpdate.Load())
}

func TestPropagateIsNoOpOnCleanTrace(t *testing.T) {
	root := sp.NewRoot()
	cur := sp.NewCursor(root)
	_, exec := newRNode(cur)
	require.Equal(t, 1, exec.runs)

	scheduler := sched.NewDefaultScheduler(1)
	pile := gc.NewPile(1)
	require.NoError(t, sp.Propagate(root, scheduler, pile, 0))
	assert.Equal(t, 1, exec.runs, "nothing was marked dirty, so Propagate must not re-run anything")
}

func TestOpenForkGivesDisjointCursors(t *testing.T) {
	root := sp.NewRoot()
	cur := sp.NewCursor(root)
	p, left, right := cur.OpenFork()

	assert.Equal(t, sp.KindP, p.Kind)
	assert.NotSame(t, left.Node(), right.Node())
	assert.Same(t, p.Left, left.Node())
	assert.Same(t, p.Right, right.Node())
}
