// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/kont"
)

// Task is the body of a fiber: an effectful computation evaluated
// cooperatively by its scheduler. Suspension points are effect
// operations ([Yield], [Join], [Sleep], [Park]); everything between
// them runs to completion without preemption.
type Task = kont.Eff[struct{}]

// TaskExpr is the defunctionalized form of Task.
type TaskExpr = kont.Expr[struct{}]

// Kind classifies an execution context.
type Kind uint8

const (
	// Main stands in for the OS thread's original stack. It never
	// runs the idle loop and is never handle-tracked.
	Main Kind = iota
	// Dispatch is the per-scheduler idle fiber.
	Dispatch
	// Worker is a user-created fiber.
	Worker
)

// maxNameLen bounds fiber display names. Longer names are truncated,
// not rejected.
const maxNameLen = 32

// linkage tags which scheduler structure a fiber is linked into.
// A fiber is linked into at most one structure at any time; the tag
// makes the exclusivity checkable instead of relying on nil hooks.
type linkage uint8

const (
	unlinked linkage = iota
	linkedReady
	linkedSleep
	linkedTerminated
)

// Fiber is one schedulable execution context. A fiber is owned by
// exactly one scheduler for its entire lifetime and is mutated only
// on that scheduler's thread, except for the parked flag consumed by
// [Fiber.Wake].
type Fiber struct {
	name   string
	serial Serial
	kind   Kind

	// refs counts strong references: the caller's handle plus the
	// scheduler's reference while the fiber is live (transferred to
	// the reclamation queue on termination). The fiber is destroyed
	// exactly when refs reaches zero.
	refs      int32
	released  bool
	destroyed bool

	sched      *Scheduler
	link       linkage
	terminated bool

	// joiners are fibers blocked on this fiber's termination,
	// woken FIFO in join order.
	joiners []*Fiber

	// body holds the computation before its first slice. susp holds
	// the suspended continuation between slices: nil while the fiber
	// runs (moved out) and while the body has not been entered.
	// pending is the value the next resume feeds in.
	body    TaskExpr
	entered bool
	susp    *kont.Suspension[struct{}]
	pending kont.Resumed

	// sleep-set linkage, valid only while link == linkedSleep.
	wakeAt   time.Time
	sleepSeq uint64

	// parked is set while the fiber awaits an external Wake.
	parked atomix.Uint32
}

// New constructs an unstarted worker fiber with the given name and
// body. The returned handle holds one strong reference; release it
// with [Fiber.Join] or [Fiber.Detach].
func New(name string, body Task) *Fiber {
	return NewExpr(name, kont.Reify(body))
}

// NewExpr constructs an unstarted worker fiber from an Expr-world
// body.
func NewExpr(name string, body TaskExpr) *Fiber {
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return &Fiber{
		name:   name,
		serial: nextSerial(),
		kind:   Worker,
		refs:   1,
		body:   body,
	}
}

// Name returns the fiber's display label.
func (f *Fiber) Name() string { return f.name }

// Serial returns the serial number assigned to this fiber.
func (f *Fiber) Serial() Serial { return f.serial }

// Kind returns the fiber's execution-context kind.
func (f *Fiber) Kind() Kind { return f.kind }

// Terminated reports whether the fiber's body has finished. The flag
// is set exactly once and never reverts.
func (f *Fiber) Terminated() bool { return f.terminated }

// Join blocks the main fiber until f terminates, then releases the
// handle reference. Must be called from the main fiber of f's
// scheduler; fiber bodies join via [JoinThen] instead. Join after the
// handle was already released is a no-op.
func (f *Fiber) Join() {
	s := f.sched
	if s == nil {
		panic("fiber: join on unstarted fiber")
	}
	if f == s.main {
		panic("fiber: join on self")
	}
	if s.active != s.main {
		panic("fiber: Join outside the main fiber")
	}
	if f.released {
		return
	}
	if !f.terminated {
		f.joiners = append(f.joiners, s.main)
		s.runUntilMain()
	}
	f.released = true
	f.release()
}

// Detach releases the handle reference without waiting. The fiber
// keeps running; its memory is reclaimed after it terminates and the
// scheduler reaps it. Detach after Join or a prior Detach is a no-op.
// Must be called on the fiber's scheduler thread.
func (f *Fiber) Detach() {
	if f.released {
		return
	}
	f.released = true
	f.release()
}

func (f *Fiber) retain() { f.refs++ }

// release drops one strong reference, destroying the fiber when the
// count reaches zero.
func (f *Fiber) release() {
	f.refs--
	if f.refs > 0 {
		return
	}
	if f.refs < 0 {
		panic("fiber: reference count underflow")
	}
	f.destroy()
}

// destroy reclaims the fiber's execution state. It must run on a
// different active context than the fiber itself: a context cannot
// free the state it is currently executing on.
func (f *Fiber) destroy() {
	if f.destroyed {
		panic("fiber: destroyed twice")
	}
	if f.sched != nil && f.sched.active == f {
		panic("fiber: destroying the active fiber")
	}
	if f.link != unlinked {
		panic("fiber: destroying a linked fiber")
	}
	if len(f.joiners) != 0 {
		panic("fiber: destroying a fiber with joiners")
	}
	f.destroyed = true
	if f.susp != nil {
		// An unconsumed one-shot continuation: discarding it is the
		// analog of unwinding the suspended stack.
		f.susp.Discard()
		f.susp = nil
	}
	var zero TaskExpr
	f.body = zero
	f.pending = nil
	if reclaimHook != nil {
		reclaimHook(f)
	}
}

// reclaimHook observes fiber destruction. Tests assert the destroyed
// fiber is never the active one.
var reclaimHook func(*Fiber)

// terminate runs as the fiber's last action: marks it terminated,
// hands it to the deferred reclamation queue, and wakes joiners in
// join order. Control never re-enters the fiber's frame afterwards.
func (f *Fiber) terminate() {
	if f.terminated {
		panic("fiber: terminated twice")
	}
	if f.link != unlinked {
		panic("fiber: terminating a linked fiber")
	}
	f.terminated = true
	f.sched.scheduleTermination(f)

	joiners := f.joiners
	f.joiners = nil
	for _, blocked := range joiners {
		// same-scheduler invariant: a joiner's scheduler equals ours.
		blocked.sched.markReady(blocked)
	}
}
