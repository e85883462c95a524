package sp

import (
	"github.com/sacrt/psac/crs"
	"github.com/sacrt/psac/mod"
)

// RTuple1..RTuple4 capture a fixed-arity tuple of Mod pointers known at
// trace-construction time: no heap allocation beyond the node itself, and
// the same subscriptions for the node's entire lifetime (no differential
// resubscription, unlike RScope). The arity-suffixed family mirrors
// rocket/signals.go's Computed1..Computed8 shape, generated here by
// cmd/gen rather than hand-maintained per arity.

type RTuple1[A comparable] struct {
	core *Core
	key  uint64
	a    *mod.Mod[A]
	fn   func(cur *Cursor, a A)
}

func NewRTuple1[A comparable](cur *Cursor, a *mod.Mod[A], fn func(cur *Cursor, a A)) *RTuple1[A] {
	r := &RTuple1[A]{a: a, fn: fn}
	r.core = cur.OpenOp(KindR)
	r.core.Exec = r
	r.key = crs.HashPointer(r)
	a.AddReader(r.key, r)
	r.Execute(EnterScope(r.core))
	return r
}

func (r *RTuple1[A]) SetModified() {
	r.core.PendingUpdate.Store(true)
	MarkDirty(r.core)
}

func (r *RTuple1[A]) Execute(cur *Cursor) {
	r.fn(cur, r.a.Value())
}

func (r *RTuple1[A]) Unsubscribe() {
	r.a.RemoveReader(r.key, r)
}

type RTuple2[A, B comparable] struct {
	core *Core
	key  uint64
	a    *mod.Mod[A]
	b    *mod.Mod[B]
	fn   func(cur *Cursor, a A, b B)
}

func NewRTuple2[A, B comparable](cur *Cursor, a *mod.Mod[A], b *mod.Mod[B], fn func(cur *Cursor, a A, b B)) *RTuple2[A, B] {
	r := &RTuple2[A, B]{a: a, b: b, fn: fn}
	r.core = cur.OpenOp(KindR)
	r.core.Exec = r
	r.key = crs.HashPointer(r)
	a.AddReader(r.key, r)
	b.AddReader(r.key, r)
	r.Execute(EnterScope(r.core))
	return r
}

func (r *RTuple2[A, B]) SetModified() {
	r.core.PendingUpdate.Store(true)
	MarkDirty(r.core)
}

func (r *RTuple2[A, B]) Execute(cur *Cursor) {
	r.fn(cur, r.a.Value(), r.b.Value())
}

func (r *RTuple2[A, B]) Unsubscribe() {
	r.a.RemoveReader(r.key, r)
	r.b.RemoveReader(r.key, r)
}

type RTuple3[A, B, C comparable] struct {
	core *Core
	key  uint64
	a    *mod.Mod[A]
	b    *mod.Mod[B]
	c    *mod.Mod[C]
	fn   func(cur *Cursor, a A, b B, c C)
}

func NewRTuple3[A, B, C comparable](cur *Cursor, a *mod.Mod[A], b *mod.Mod[B], c *mod.Mod[C], fn func(cur *Cursor, a A, b B, c C)) *RTuple3[A, B, C] {
	r := &RTuple3[A, B, C]{a: a, b: b, c: c, fn: fn}
	r.core = cur.OpenOp(KindR)
	r.core.Exec = r
	r.key = crs.HashPointer(r)
	a.AddReader(r.key, r)
	b.AddReader(r.key, r)
	c.AddReader(r.key, r)
	r.Execute(EnterScope(r.core))
	return r
}

func (r *RTuple3[A, B, C]) SetModified() {
	r.core.PendingUpdate.Store(true)
	MarkDirty(r.core)
}

func (r *RTuple3[A, B, C]) Execute(cur *Cursor) {
	r.fn(cur, r.a.Value(), r.b.Value(), r.c.Value())
}

func (r *RTuple3[A, B, C]) Unsubscribe() {
	r.a.RemoveReader(r.key, r)
	r.b.RemoveReader(r.key, r)
	r.c.RemoveReader(r.key, r)
}

type RTuple4[A, B, C, D comparable] struct {
	core *Core
	key  uint64
	a    *mod.Mod[A]
	b    *mod.Mod[B]
	c    *mod.Mod[C]
	d    *mod.Mod[D]
	fn   func(cur *Cursor, a A, b B, c C, d D)
}

func NewRTuple4[A, B, C, D comparable](cur *Cursor, a *mod.Mod[A], b *mod.Mod[B], c *mod.Mod[C], d *mod.Mod[D], fn func(cur *Cursor, a A, b B, c C, d D)) *RTuple4[A, B, C, D] {
	r := &RTuple4[A, B, C, D]{a: a, b: b, c: c, d: d, fn: fn}
	r.core = cur.OpenOp(KindR)
	r.core.Exec = r
	r.key = crs.HashPointer(r)
	a.AddReader(r.key, r)
	b.AddReader(r.key, r)
	c.AddReader(r.key, r)
	d.AddReader(r.key, r)
	r.Execute(EnterScope(r.core))
	return r
}

func (r *RTuple4[A, B, C, D]) SetModified() {
	r.core.PendingUpdate.Store(true)
	MarkDirty(r.core)
}

func (r *RTuple4[A, B, C, D]) Execute(cur *Cursor) {
	r.fn(cur, r.a.Value(), r.b.Value(), r.c.Value(), r.d.Value())
}

func (r *RTuple4[A, B, C, D]) Unsubscribe() {
	r.a.RemoveReader(r.key, r)
	r.b.RemoveReader(r.key, r)
	r.c.RemoveReader(r.key, r)
	r.d.RemoveReader(r.key, r)
}
