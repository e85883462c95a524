package psac

import (
	"github.com/sacrt/psac/mod"
	"github.com/sacrt/psac/sp"
)

// Alloc allocates a Mod owned by the current SP node: valid only while that
// node is alive, destroyed (reader-set-emptiness asserted) when the node's
// owning scope is discarded.
func Alloc[T comparable](cur *Cursor, opts ...mod.Option[T]) *mod.Mod[T] {
	m := mod.New(opts...)
	cur.sp.TrackMod(m)
	return m
}

// AllocArray allocates a ModArray of n elements owned by the current SP
// node, with the same lifetime contract as Alloc.
func AllocArray[T comparable](cur *Cursor, n int, opts ...mod.Option[T]) *mod.ModArray[T] {
	a := mod.NewArray(n, opts...)
	cur.sp.TrackMod(a)
	return a
}

// Write assigns v to m, notifying subscribed readers unless v equals m's
// current value. Legal both inside and outside tracing; inside tracing m
// must have been allocated in an enclosing scope or be user-supplied.
func Write[T comparable](m *mod.Mod[T], v T) {
	m.Write(v)
}

// Read1 creates an RTuple node over a, subscribes to it, and executes body
// with its current value bound.
func Read1[A comparable](cur *Cursor, a *mod.Mod[A], body func(cur *Cursor, a A)) {
	sp.NewRTuple1(cur.sp, a, func(spc *sp.Cursor, av A) {
		body(wrap(spc, cur.scheduler), av)
	})
}

// Read2 is Read1 generalized to two Mods.
func Read2[A, B comparable](cur *Cursor, a *mod.Mod[A], b *mod.Mod[B], body func(cur *Cursor, a A, b B)) {
	sp.NewRTuple2(cur.sp, a, b, func(spc *sp.Cursor, av A, bv B) {
		body(wrap(spc, cur.scheduler), av, bv)
	})
}

// Read3 is Read1 generalized to three Mods.
func Read3[A, B, C comparable](cur *Cursor, a *mod.Mod[A], b *mod.Mod[B], c *mod.Mod[C], body func(cur *Cursor, a A, b B, c C)) {
	sp.NewRTuple3(cur.sp, a, b, c, func(spc *sp.Cursor, av A, bv B, cv C) {
		body(wrap(spc, cur.scheduler), av, bv, cv)
	})
}

// Read4 is Read1 generalized to four Mods.
func Read4[A, B, C, D comparable](cur *Cursor, a *mod.Mod[A], b *mod.Mod[B], c *mod.Mod[C], d *mod.Mod[D], body func(cur *Cursor, a A, b B, c C, d D)) {
	sp.NewRTuple4(cur.sp, a, b, c, d, func(spc *sp.Cursor, av A, bv B, cv C, dv D) {
		body(wrap(spc, cur.scheduler), av, bv, cv, dv)
	})
}

// ReadArray creates an RArray node over array[begin:end), collecting their
// current values into a slice bound for body.
func ReadArray[T comparable](cur *Cursor, array *mod.ModArray[T], begin, end int, body func(cur *Cursor, values []T)) {
	sp.NewRArray(cur.sp, array, begin, end, func(spc *sp.Cursor, values []T) {
		body(wrap(spc, cur.scheduler), values)
	})
}

// DynamicReader is the out-parameter a DynamicContext body uses to perform
// dynamic_read calls. It wraps the underlying RScope builder so callers
// never need to import package sp directly.
type DynamicReader struct {
	b *sp.Builder
}

// DynamicRead reads m, recording it as a dependency of the enclosing
// DynamicContext — on re-execution, dependencies read on a prior execution
// but not this one are automatically unsubscribed.
func DynamicRead[T comparable](r *DynamicReader, m *mod.Mod[T]) T {
	return sp.Read(r.b, m)
}

// DynamicContext opens an RScope: body's dependency set is discovered at
// execution time via the DynamicReader it receives.
func DynamicContext(cur *Cursor, body func(cur *Cursor, r *DynamicReader)) {
	sp.NewRScope(cur.sp, func(spc *sp.Cursor, b *sp.Builder) {
		body(wrap(spc, cur.scheduler), &DynamicReader{b: b})
	})
}

// Par creates a PNode with two S-children and schedules both bodies in
// parallel via the computation's scheduler; Par returns only after both
// have fully completed.
func Par(cur *Cursor, left, right func(cur *Cursor)) error {
	_, leftCur, rightCur := cur.sp.OpenFork()
	return cur.scheduler.ParDo(
		func(int) error {
			left(wrap(leftCur, cur.scheduler))
			return nil
		},
		func(int) error {
			right(wrap(rightCur, cur.scheduler))
			return nil
		},
	)
}

// ParallelFor creates a balanced tree of PNodes (down to subranges of size
// <= granularity, then a serial S-chain) over [lo, hi), each leaf a call to
// body(cur, i). An empty range (lo == hi) produces a childless S-chain.
func ParallelFor(cur *Cursor, lo, hi, granularity int, body func(cur *Cursor, i int)) error {
	return parFor(cur, lo, hi, granularity, body)
}

func parFor(cur *Cursor, lo, hi, granularity int, body func(cur *Cursor, i int)) error {
	if hi <= lo {
		return nil
	}
	if hi-lo <= granularity {
		return seqFor(cur, lo, hi, body)
	}
	mid := lo + (hi-lo)/2
	_, leftCur, rightCur := cur.sp.OpenFork()
	return cur.scheduler.ParDo(
		func(int) error { return parFor(wrap(leftCur, cur.scheduler), lo, mid, granularity, body) },
		func(int) error { return parFor(wrap(rightCur, cur.scheduler), mid, hi, granularity, body) },
	)
}

func seqFor(cur *Cursor, lo, hi int, body func(cur *Cursor, i int)) error {
	for i := lo; i < hi; i++ {
		body(cur, i)
	}
	return nil
}
