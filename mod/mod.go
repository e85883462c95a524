// Package mod implements the Modifiable reference: a single-writer cell
// tracked by the runtime, carrying a concurrent reader set that the
// change-propagation engine notifies on write.
package mod

import (
	"github.com/sacrt/psac/crs"
	"github.com/sacrt/psac/internal/psacdebug"
)

// Reader is anything that can be subscribed to a Mod. sp's R node types
// (RTuple1..RTuple4, RArray, RScope) implement this; mod intentionally knows nothing else about its readers, avoiding an
// import cycle with sp (which needs to allocate Mods).
type Reader interface {
	// SetModified marks the reader as having a pending update on (at least)
	// this Mod, queuing it for re-execution on the next Propagate.
	SetModified()
}

// Mod is a generic single-writer cell. Within one traced computation it is
// written before it is read; debug builds assert this.
type Mod[T comparable] struct {
	value   T
	written bool
	equal   func(a, b T) bool
	readers crs.ReaderSet[Reader]
}

// Option configures a Mod at construction time.
type Option[T comparable] func(*Mod[T])

// WithCRS overrides the default tree-based reader set, e.g. with crs.NewList
// when a Mod is expected to have very few readers and tree rebuilding would
// be wasted work.
func WithCRS[T comparable](rs crs.ReaderSet[Reader]) Option[T] {
	return func(m *Mod[T]) { m.readers = rs }
}

// New constructs an unwritten Mod using ordinary == for the write
// short-circuit.
func New[T comparable](opts ...Option[T]) *Mod[T] {
	return NewWithEquality(func(a, b T) bool { return a == b }, opts...)
}

// NewWithEquality constructs an unwritten Mod using an explicit equality
// function, for types where == is not the right comparison (or where the
// caller wants an always-notify fallback: func(a, b T) bool { return false }).
func NewWithEquality[T comparable](equal func(a, b T) bool, opts ...Option[T]) *Mod[T] {
	m := &Mod[T]{
		equal:   equal,
		readers: crs.NewSet[Reader](),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Write assigns v, notifying every subscribed reader unless v equals the
// current value (the no-op write short-circuit) — this never applies to the
// very first write, which always notifies.
func (m *Mod[T]) Write(v T) {
	if m.written && m.equal(m.value, v) {
		return
	}
	m.value = v
	m.written = true
	m.readers.ForAll(func(r Reader) { r.SetModified() })
}

// Value returns the current value. Debug builds assert the Mod has been
// written at least once.
func (m *Mod[T]) Value() T {
	psacdebug.Assert(m.written, "read of unwritten Mod")
	return m.value
}

// Written reports whether Write has ever been called.
func (m *Mod[T]) Written() bool { return m.written }

// AddReader subscribes r, keyed by key (ordinarily crs.HashPointer applied
// to r's concrete pointer). Safe to call concurrently with other
// AddReader/RemoveReader calls on the same Mod, never with a write
// in-flight notifying readers.
func (m *Mod[T]) AddReader(key uint64, r Reader) {
	m.readers.Insert(key, r)
}

// RemoveReader unsubscribes r. Same concurrency contract as AddReader.
func (m *Mod[T]) RemoveReader(key uint64, r Reader) {
	m.readers.Remove(key, r)
}

// AssertNoReaders is called when a Mod's owning scope is discarded; it
// debug-asserts the invariant that a Mod's reader set is empty by the time
// the Mod itself is destroyed (every RNode that read it must have
// unsubscribed first).
func (m *Mod[T]) AssertNoReaders() {
	psacdebug.Assert(m.readers.Empty(), "Mod destroyed with a non-empty reader set")
}
