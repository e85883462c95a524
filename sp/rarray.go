package sp

import (
	"github.com/sacrt/psac/crs"
	"github.com/sacrt/psac/mod"
)

// RArray captures a half-open range [begin, end) of a ModArray's elements:
// one reader identity subscribed to every Mod in the range, its values
// collected into a slice for the callback. Avoids per-element subscription
// bookkeeping beyond the shared key every AddReader call reuses.
type RArray[T comparable] struct {
	core       *Core
	key        uint64
	array      *mod.ModArray[T]
	begin, end int
	fn         func(cur *Cursor, values []T)
}

func NewRArray[T comparable](cur *Cursor, array *mod.ModArray[T], begin, end int, fn func(cur *Cursor, values []T)) *RArray[T] {
	r := &RArray[T]{array: array, begin: begin, end: end, fn: fn}
	r.core = cur.OpenOp(KindR)
	r.core.Exec = r
	r.key = crs.HashPointer(r)
	for i := begin; i < end; i++ {
		array.At(i).AddReader(r.key, r)
	}
	r.Execute(EnterScope(r.core))
	return r
}

func (r *RArray[T]) SetModified() {
	r.core.PendingUpdate.Store(true)
	MarkDirty(r.core)
}

func (r *RArray[T]) Execute(cur *Cursor) {
	values := make([]T, r.end-r.begin)
	for i := r.begin; i < r.end; i++ {
		values[i-r.begin] = r.array.At(i).Value()
	}
	r.fn(cur, values)
}

func (r *RArray[T]) Unsubscribe() {
	for i := r.begin; i < r.end; i++ {
		r.array.At(i).RemoveReader(r.key, r)
	}
}
