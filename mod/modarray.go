package mod

// ModArray is a contiguous array of Mods sharing the same element type and
// the same per-element invariants as Mod.
type ModArray[T comparable] struct {
	elems []*Mod[T]
}

// NewArray allocates an array of n unwritten Mods.
func NewArray[T comparable](n int, opts ...Option[T]) *ModArray[T] {
	a := &ModArray[T]{elems: make([]*Mod[T], n)}
	for i := range a.elems {
		a.elems[i] = New(opts...)
	}
	return a
}

// Len returns the array's element count.
func (a *ModArray[T]) Len() int { return len(a.elems) }

// At returns the Mod at index i.
func (a *ModArray[T]) At(i int) *Mod[T] { return a.elems[i] }

// AssertNoReaders debug-asserts every element's reader set is empty.
func (a *ModArray[T]) AssertNoReaders() {
	for _, m := range a.elems {
		m.AssertNoReaders()
	}
}
