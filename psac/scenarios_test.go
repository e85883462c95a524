package psac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sacrt/psac/mod"
	"github.com/sacrt/psac/psac"
)

// TestIncrementChain covers scenario 1: Mods a,b,c,d; b=a+1, c=b+1, d=c+1.
//
//	a --Read1--> b --Read1--> c --Read1--> d
func TestIncrementChain(t *testing.T) {
	a := mod.New[int]()
	d := mod.New[int]()
	a.Write(5)

	comp := psac.Run(func(cur *psac.Cursor) {
		b := psac.Alloc[int](cur)
		psac.Read1(cur, a, func(cur *psac.Cursor, av int) {
			psac.Write(b, av+1)
			c := psac.Alloc[int](cur)
			psac.Read1(cur, b, func(cur *psac.Cursor, bv int) {
				psac.Write(c, bv+1)
				psac.Read1(cur, c, func(cur *psac.Cursor, cv int) {
					psac.Write(d, cv+1)
				})
			})
		})
	})

	assert.Equal(t, 8, d.Value())

	a.Write(10)
	require.NoError(t, comp.Propagate())
	assert.Equal(t, 13, d.Value())

	require.NoError(t, comp.Propagate()) // idempotence: no-op on a clean trace
	assert.Equal(t, 13, d.Value())
}

// TestConditionalStructure covers scenario 2: r = a if i==1 else b.
func TestConditionalStructure(t *testing.T) {
	i := mod.New[int]()
	a := mod.New[int]()
	b := mod.New[int]()
	r := mod.New[int]()
	i.Write(1)
	a.Write(10)
	b.Write(20)

	comp := psac.Run(func(cur *psac.Cursor) {
		psac.Read3(cur, i, a, b, func(cur *psac.Cursor, iv, av, bv int) {
			if iv == 1 {
				psac.Write(r, av)
			} else {
				psac.Write(r, bv)
			}
		})
	})

	assert.Equal(t, 10, r.Value())

	i.Write(2)
	require.NoError(t, comp.Propagate())
	assert.Equal(t, 20, r.Value())
}

// TestArrayMapDoubling covers scenario 3: b[i] = 2*a[i] for n=100, restored
// after a batch write to a random subset of a.
func TestArrayMapDoubling(t *testing.T) {
	const n = 100
	a := mod.NewArray[int](n)
	for i := 0; i < n; i++ {
		a.At(i).Write(i)
	}
	b := mod.NewArray[int](n)

	comp := psac.Run(func(cur *psac.Cursor) {
		require.NoError(t, psac.ParallelFor(cur, 0, n, 8, func(cur *psac.Cursor, i int) {
			psac.Read1(cur, a.At(i), func(cur *psac.Cursor, av int) {
				b.At(i).Write(2 * av)
			})
		}))
	})

	for i := 0; i < n; i++ {
		assert.Equal(t, 2*i, b.At(i).Value())
	}

	for _, k := range []int{3, 17, 42, 99} {
		a.At(k).Write(a.At(k).Value() + 1000)
	}
	require.NoError(t, comp.Propagate())

	for i := 0; i < n; i++ {
		assert.Equal(t, 2*a.At(i).Value(), b.At(i).Value(), "index %d", i)
	}
}

// TestDivideAndConquerSum covers scenario 4 for n=100000 in reduced form:
// a ParallelFor fork tree copies each element through its own Read1 node,
// and the copies are summed outside the trace. That sum equals the true sum
// both initially and after a two-element write batch. The addition itself
// is not traced, so no combining R nodes are re-executed.
func TestDivideAndConquerSum(t *testing.T) {
	const n = 100_000
	a := mod.NewArray[int](n)
	for i := 0; i < n; i++ {
		a.At(i).Write(1)
	}
	total := mod.NewArray[int](n) // partial-sum scratch, one slot per leaf

	var trueSum int
	for i := 0; i < n; i++ {
		trueSum += a.At(i).Value()
	}

	comp := psac.Run(func(cur *psac.Cursor) {
		require.NoError(t, psac.ParallelFor(cur, 0, n, 64, func(cur *psac.Cursor, i int) {
			psac.Read1(cur, a.At(i), func(cur *psac.Cursor, av int) {
				total.At(i).Write(av)
			})
		}))
	})

	sum := func() int {
		s := 0
		for i := 0; i < n; i++ {
			s += total.At(i).Value()
		}
		return s
	}
	assert.Equal(t, trueSum, sum())

	a.At(500).Write(a.At(500).Value() + 41)
	a.At(99_999).Write(a.At(99_999).Value() + 1)
	trueSum += 42
	require.NoError(t, comp.Propagate())
	assert.Equal(t, trueSum, sum())
}

// TestMultipleReadersOfOneMod covers scenario 5: two independent reads of
// the same input Mod, each writing a different output, both tracking
// changes to the shared input.
//
//	     +--> out1
//	src -|
//	     +--> out2
func TestMultipleReadersOfOneMod(t *testing.T) {
	src := mod.New[int]()
	out1 := mod.New[int]()
	out2 := mod.New[int]()
	src.Write(5)

	comp := psac.Run(func(cur *psac.Cursor) {
		require.NoError(t, psac.Par(cur,
			func(cur *psac.Cursor) {
				psac.Read1(cur, src, func(cur *psac.Cursor, v int) {
					psac.Write(out1, v*2)
				})
			},
			func(cur *psac.Cursor) {
				psac.Read1(cur, src, func(cur *psac.Cursor, v int) {
					psac.Write(out2, v*3)
				})
			},
		))
	})

	assert.Equal(t, 10, out1.Value())
	assert.Equal(t, 15, out2.Value())

	src.Write(7)
	require.NoError(t, comp.Propagate())
	assert.Equal(t, 14, out1.Value())
	assert.Equal(t, 21, out2.Value())
}

// TestDynamicReadLoop covers scenario 6: a DynamicContext reads the start
// Mod and then 10 pool Mods via successive DynamicRead calls; after
// rerouting through a different subrange, the same RScope re-executes and
// resubscription leaves the resulting subscriptions equal exactly to the
// new set.
func TestDynamicReadLoop(t *testing.T) {
	const width = 10
	pool := mod.NewArray[int](2 * width)
	for i := 0; i < pool.Len(); i++ {
		pool.At(i).Write(i)
	}
	start := mod.New[int]()
	start.Write(0)
	sum := mod.New[int]()

	comp := psac.Run(func(cur *psac.Cursor) {
		psac.DynamicContext(cur, func(cur *psac.Cursor, r *psac.DynamicReader) {
			startV := psac.DynamicRead(r, start)
			s := 0
			for i := 0; i < width; i++ {
				s += psac.DynamicRead(r, pool.At(startV+i))
			}
			psac.Write(sum, s)
		})
	})

	want := 0
	for i := 0; i < width; i++ {
		want += i
	}
	assert.Equal(t, want, sum.Value())

	start.Write(width) // reroute through the second half of the pool
	require.NoError(t, comp.Propagate())

	want = 0
	for i := width; i < 2*width; i++ {
		want += i
	}
	assert.Equal(t, want, sum.Value())

	// Every Mod in the first half must have been unsubscribed; writing to
	// one must not mark anything dirty (no propagation needed to reflect
	// it, since sum no longer depends on it).
	pool.At(0).Write(9999)
	require.NoError(t, comp.Propagate())
	assert.Equal(t, want, sum.Value())
}

// TestNoOpWriteLeavesTraceClean covers the no-op write short-circuit
// boundary behavior: rewriting a Mod with its existing value must not mark
// any dirty bits, so Propagate has nothing to do.
func TestNoOpWriteLeavesTraceClean(t *testing.T) {
	a := mod.New[int]()
	b := mod.New[int]()
	a.Write(1)

	comp := psac.Run(func(cur *psac.Cursor) {
		psac.Read1(cur, a, func(cur *psac.Cursor, v int) {
			psac.Write(b, v*10)
		})
	})
	require.Equal(t, 10, b.Value())

	a.Write(1) // same value: must not notify
	require.NoError(t, comp.Propagate())
	assert.Equal(t, 10, b.Value())
}

// TestEmptyParallelForProducesNoChildren covers the boundary behavior: an
// empty range must not panic and must leave nothing to propagate.
func TestEmptyParallelForProducesNoChildren(t *testing.T) {
	comp := psac.Run(func(cur *psac.Cursor) {
		require.NoError(t, psac.ParallelFor(cur, 5, 5, 8, func(cur *psac.Cursor, i int) {
			t.Fatalf("body must not be invoked for an empty range")
		}))
	})
	require.NoError(t, comp.Propagate())
}

// TestReexecutionUnsubscribesDiscardedRNodes ensures a re-executed R node's
// old sub-trace actually unsubscribes before being handed to the GC pile:
// writing to a Mod only the *discarded* sub-trace ever read must not panic
// (a dangling reader would still be notified) and must not perturb the
// output produced by the node that replaced it.
func TestReexecutionUnsubscribesDiscardedRNodes(t *testing.T) {
	i := mod.New[int]()
	a := mod.New[int]()
	b := mod.New[int]()
	out := mod.New[int]()
	i.Write(1)
	a.Write(10)
	b.Write(20)

	comp := psac.Run(func(cur *psac.Cursor) {
		psac.Read1(cur, i, func(cur *psac.Cursor, iv int) {
			if iv == 1 {
				psac.Read1(cur, a, func(cur *psac.Cursor, av int) {
					psac.Write(out, av)
				})
			} else {
				psac.Read1(cur, b, func(cur *psac.Cursor, bv int) {
					psac.Write(out, bv)
				})
			}
		})
	})
	assert.Equal(t, 10, out.Value())

	i.Write(2) // discards the nested Read1(a, ...) node entirely
	require.NoError(t, comp.Propagate())
	assert.Equal(t, 20, out.Value())

	comp.RunGC()

	a.Write(999) // only the now-GC'd node ever read a; must not affect out
	require.NoError(t, comp.Propagate())
	assert.Equal(t, 20, out.Value())
}

// TestDestroyUnsubscribesEntireTree covers the invariant that destroying a
// Computation leaves every Mod it touched with an empty reader set.
func TestDestroyUnsubscribesEntireTree(t *testing.T) {
	a := mod.New[int]()
	b := mod.New[int]()
	a.Write(1)

	comp := psac.Run(func(cur *psac.Cursor) {
		psac.Read1(cur, a, func(cur *psac.Cursor, av int) {
			psac.Write(b, av+1)
		})
	})
	assert.Equal(t, 2, b.Value())

	stats := comp.Destroy()
	assert.GreaterOrEqual(t, stats.Nodes, 1)
	a.AssertNoReaders()
}
