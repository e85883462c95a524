// Command inspect drives five of the six seed scenarios from the core's
// testable properties (all but the divide-and-conquer sum) through repeated
// Write+Propagate cycles and reports
// propagation timing percentiles and GC pile memory, the way
// cmd/benchmark drove the teacher's various signal implementations.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/sacrt/psac/gc"
	"github.com/sacrt/psac/mod"
	"github.com/sacrt/psac/psac"
	"github.com/sacrt/psac/sched"
)

const (
	iterationsKey = "iterations"
	arraySizeKey  = "array-size"
	workersKey    = "workers"
)

func main() {
	cmd := &cli.Command{
		Name:  "inspect",
		Usage: "Drive the self-adjusting computation engine's seed scenarios and report propagation timing",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: iterationsKey, Usage: "number of write+propagate cycles per scenario", Value: 200},
			&cli.UintFlag{Name: arraySizeKey, Usage: "element count for the array scenarios", Value: 1000},
			&cli.IntFlag{Name: workersKey, Usage: "scheduler worker count (<=0 uses GOMAXPROCS)", Value: 0},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	iterations := int(cmd.Uint(iterationsKey))
	arraySize := int(cmd.Uint(arraySizeKey))
	workers := int(cmd.Int(workersKey))

	log.Printf("inspect starting: %d iterations, array size %d", iterations, arraySize)
	start := time.Now()
	defer func() { log.Printf("inspect finished in %v", time.Since(start)) }()

	scenarios := []struct {
		name string
		fn   func(iterations, arraySize, workers int) (tachymeter.Metrics, gc.Stats)
	}{
		{"increment chain", runIncrementChain},
		{"conditional structure", runConditionalStructure},
		{"array map doubling", runArrayMapDoubling},
		{"multiple readers", runMultipleReaders},
		{"dynamic read loop", runDynamicReadLoop},
	}

	timingTbl := table.NewWriter()
	timingTbl.SetTitle("Propagate timing")
	timingTbl.SetOutputMirror(os.Stdout)
	timingTbl.AppendHeader(table.Row{"scenario", "avg", "min", "p75", "p99", "max"})

	gcTbl := tablewriter.NewWriter(os.Stdout)
	gcTbl.SetHeader([]string{"scenario", "reclaimed"})

	for _, s := range scenarios {
		metrics, stats := s.fn(iterations, arraySize, workers)
		timingTbl.AppendRows([]table.Row{{
			s.name, metrics.Time.Avg, metrics.Time.Min, metrics.Time.P75, metrics.Time.P99, metrics.Time.Max,
		}})
		gcTbl.Append([]string{s.name, stats.String()})
	}
	timingTbl.Render()

	fmt.Println()
	gcTbl.Render()

	return nil
}

func newTach(iterations int) *tachymeter.Tachymeter {
	return tachymeter.New(&tachymeter.Config{Size: iterations})
}

func runIncrementChain(iterations, _, workers int) (tachymeter.Metrics, gc.Stats) {
	a := mod.New[int]()
	d := mod.New[int]()
	a.Write(0)

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
	}, schedOpts(workers)...)

	tach := newTach(iterations)
	for i := 0; i < iterations; i++ {
		a.Write(i)
		start := time.Now()
		if err := comp.Propagate(); err != nil {
			log.Fatal(err)
		}
		tach.AddTime(time.Since(start))
	}
	return *tach.Calc(), comp.RunGC()
}

func runConditionalStructure(iterations, _, workers int) (tachymeter.Metrics, gc.Stats) {
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
	}, schedOpts(workers)...)

	tach := newTach(iterations)
	for n := 0; n < iterations; n++ {
		if n%2 == 0 {
			i.Write(2)
		} else {
			i.Write(1)
		}
		start := time.Now()
		if err := comp.Propagate(); err != nil {
			log.Fatal(err)
		}
		tach.AddTime(time.Since(start))
	}
	return *tach.Calc(), comp.RunGC()
}

func runArrayMapDoubling(iterations, arraySize, workers int) (tachymeter.Metrics, gc.Stats) {
	a := mod.NewArray[int](arraySize)
	for i := 0; i < arraySize; i++ {
		a.At(i).Write(i)
	}
	b := mod.NewArray[int](arraySize)

	comp := psac.Run(func(cur *psac.Cursor) {
		if err := psac.ParallelFor(cur, 0, arraySize, 16, func(cur *psac.Cursor, i int) {
			psac.Read1(cur, a.At(i), func(cur *psac.Cursor, av int) {
				b.At(i).Write(2 * av)
			})
		}); err != nil {
			log.Fatal(err)
		}
	}, schedOpts(workers)...)

	rnd := rand.New(rand.NewSource(1))
	tach := newTach(iterations)
	for n := 0; n < iterations; n++ {
		k := rnd.Intn(arraySize)
		a.At(k).Write(a.At(k).Value() + 1)
		start := time.Now()
		if err := comp.Propagate(); err != nil {
			log.Fatal(err)
		}
		tach.AddTime(time.Since(start))
	}
	return *tach.Calc(), comp.RunGC()
}

func runMultipleReaders(iterations, _, workers int) (tachymeter.Metrics, gc.Stats) {
	src := mod.New[int]()
	out1 := mod.New[int]()
	out2 := mod.New[int]()
	src.Write(0)

	comp := psac.Run(func(cur *psac.Cursor) {
		if err := psac.Par(cur,
			func(cur *psac.Cursor) {
				psac.Read1(cur, src, func(cur *psac.Cursor, v int) { psac.Write(out1, v*2) })
			},
			func(cur *psac.Cursor) {
				psac.Read1(cur, src, func(cur *psac.Cursor, v int) { psac.Write(out2, v*3) })
			},
		); err != nil {
			log.Fatal(err)
		}
	}, schedOpts(workers)...)

	tach := newTach(iterations)
	for n := 0; n < iterations; n++ {
		src.Write(n)
		start := time.Now()
		if err := comp.Propagate(); err != nil {
			log.Fatal(err)
		}
		tach.AddTime(time.Since(start))
	}
	return *tach.Calc(), comp.RunGC()
}

func runDynamicReadLoop(iterations, arraySize, workers int) (tachymeter.Metrics, gc.Stats) {
	if arraySize < 2 {
		arraySize = 2
	}
	width := arraySize / 2
	pool := mod.NewArray[int](2 * width)
	for i := 0; i < pool.Len(); i++ {
		pool.At(i).Write(i)
	}
	start0 := mod.New[int]()
	start0.Write(0)
	sum := mod.New[int]()

	comp := psac.Run(func(cur *psac.Cursor) {
		psac.Read1(cur, start0, func(cur *psac.Cursor, startV int) {
			psac.DynamicContext(cur, func(cur *psac.Cursor, r *psac.DynamicReader) {
				s := 0
				for i := 0; i < width; i++ {
					s += psac.DynamicRead(r, pool.At(startV+i))
				}
				psac.Write(sum, s)
			})
		})
	}, schedOpts(workers)...)

	tach := newTach(iterations)
	for n := 0; n < iterations; n++ {
		if n%2 == 0 {
			start0.Write(width)
		} else {
			start0.Write(0)
		}
		start := time.Now()
		if err := comp.Propagate(); err != nil {
			log.Fatal(err)
		}
		tach.AddTime(time.Since(start))
	}
	return *tach.Calc(), comp.RunGC()
}

func schedOpts(workers int) []psac.Option {
	if workers <= 0 {
		return nil
	}
	return []psac.Option{psac.WithScheduler(sched.NewDefaultScheduler(workers))}
}
