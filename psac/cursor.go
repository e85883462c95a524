// Package psac is the tracing DSL: the public primitives (Run, Call, Par,
// ParallelFor, Read1..Read4, ReadArray, DynamicContext/DynamicRead, Write,
// Alloc/AllocArray, Propagate) user code calls to build and replay a
// self-adjusting trace, composed over packages sp, mod, gc, and sched.
package psac

import (
	"github.com/sacrt/psac/sched"
	"github.com/sacrt/psac/sp"
)

// Cursor is the explicit tracing cursor every traced function takes as its
// first parameter, per the design notes' "thread it as an explicit
// argument" recommendation — never thread-local, never a package global.
type Cursor struct {
	sp        *sp.Cursor
	scheduler sched.Scheduler
}

func wrap(spc *sp.Cursor, scheduler sched.Scheduler) *Cursor {
	return &Cursor{sp: spc, scheduler: scheduler}
}
