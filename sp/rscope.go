package sp

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/sacrt/psac/crs"
	"github.com/sacrt/psac/mod"
)

// trackable is the minimal surface RScope needs from whatever Mod type a
// dynamic read touches: subscribe/unsubscribe under a caller-chosen key.
// Any *mod.Mod[T] satisfies it structurally.
type trackable interface {
	AddReader(key uint64, r mod.Reader)
	RemoveReader(key uint64, r mod.Reader)
}

// Builder is the out-parameter dynamic_read appends to (design notes §9:
// "thread a builder explicitly to the user" rather than relying on shared
// mutable capture). Read records each Mod touched during one execution of
// an RScope's body, subscribing only to genuinely new dependencies —
// dependencies already subscribed from the prior execution are left alone
// so Execute's differential resubscription can tell survivors from
// removals.
type Builder struct {
	owner    *RScope
	key      uint64
	prevSeen mapset.Set[trackable]
	seen     mapset.Set[trackable]
}

// Read records m as a dependency of the enclosing RScope and returns its
// current value. Safe to call more than once on the same Mod within a
// single execution; each Mod is subscribed at most once regardless.
func Read[T comparable](b *Builder, m *mod.Mod[T]) T {
	if !b.seen.Contains(m) {
		b.seen.Add(m)
		if !b.prevSeen.Contains(m) {
			m.AddReader(b.key, b.owner)
		}
	}
	return m.Value()
}

// RScope is the dynamic-read R node shape: its body discovers its
// dependency set at execution time, via calls to Read against the Builder
// it receives.
type RScope struct {
	core     *Core
	key      uint64
	fn       func(cur *Cursor, b *Builder)
	prevSeen mapset.Set[trackable]
}

func NewRScope(cur *Cursor, fn func(cur *Cursor, b *Builder)) *RScope {
	r := &RScope{fn: fn, prevSeen: mapset.NewSet[trackable]()}
	r.core = cur.OpenOp(KindR)
	r.core.Exec = r
	r.key = crs.HashPointer(r)
	r.Execute(EnterScope(r.core))
	return r
}

func (r *RScope) SetModified() {
	r.core.PendingUpdate.Store(true)
	MarkDirty(r.core)
}

// Execute runs the body against a fresh Builder, then performs the
// differential resubscription the design calls for: Mods read last time but
// not this time are unsubscribed; newly read Mods were already subscribed
// by Read above. This only ever runs from inside Propagate, never
// concurrently with a Write on the Mods involved (spec §5's write+propagate
// atomic-unit guarantee), which is exactly the rule the reference design's
// "deal with potential race with mark all" comment was reaching for.
func (r *RScope) Execute(cur *Cursor) {
	b := &Builder{owner: r, key: r.key, prevSeen: r.prevSeen, seen: mapset.NewSet[trackable]()}
	r.fn(cur, b)

	removed := r.prevSeen.Difference(b.seen)
	for m := range removed.Iter() {
		m.RemoveReader(r.key, r)
	}
	r.prevSeen = b.seen
}

// Unsubscribe removes r from every Mod it currently reads, used when r's
// owning node is retired for good (not re-executed in place).
func (r *RScope) Unsubscribe() {
	for m := range r.prevSeen.Iter() {
		m.RemoveReader(r.key, r)
	}
	r.prevSeen = mapset.NewSet[trackable]()
}
