// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/lfq"
)

// remoteCapacity bounds the cross-thread wake queue. Wakers retry a
// full queue with backoff; lfq rounds the capacity to a power of two.
const remoteCapacity = 256

// Scheduler multiplexes fibers onto one OS thread. It owns the ready
// queue, the sleep set, the deferred reclamation queue, and the
// dispatcher fiber. A scheduler and every fiber attached to it must
// be driven from a single goroutine; only [Fiber.Wake] may be called
// from elsewhere.
type Scheduler struct {
	main       *Fiber
	dispatcher *Fiber
	dstate     dispatchState

	// active is the one fiber currently executing. Between slices it
	// is the main fiber, whose stack the trampoline runs on.
	active *Fiber

	ready      []*Fiber
	sleeping   sleepHeap
	terminated []*Fiber

	// remote carries wakes produced on other threads to this one.
	// Multi-producer (any waker goroutine), single consumer (here).
	remote lfq.Queue[*Fiber]

	workerCount  int
	parkedCount  int
	shuttingDown bool
	closed       bool

	clock    Clock
	algo     DispatchAlgo
	sleepSeq uint64

	idleBo       iox.Backoff
	warnedNoWake bool
}

// DispatchAlgo replaces the default idle behavior. It is invoked once
// per idle pass, after terminated fibers are reaped and remote wakes
// drained. An algorithm that can find nothing to do should block or
// back off instead of returning immediately, or the idle loop spins.
type DispatchAlgo func(*Scheduler)

// Option configures a Scheduler at construction.
type Option func(*Scheduler)

// WithClock installs an alternative time source for the sleep set and
// the idle wait. The default is the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithDispatchAlgo installs a background algorithm run by the
// dispatcher in place of the default idle behavior. Installed once,
// before first use.
func WithDispatchAlgo(algo DispatchAlgo) Option {
	return func(s *Scheduler) { s.algo = algo }
}

// NewScheduler initializes the per-thread runtime context: the main
// fiber standing in for the calling thread's stack, the dispatcher
// fiber, and the scheduler queues.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:  wallClock{},
		remote: lfq.NewMPSC[*Fiber](remoteCapacity),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.main = &Fiber{
		name:   "main",
		serial: nextSerial(),
		kind:   Main,
		refs:   1,
	}
	s.main.sched = s
	s.active = s.main
	s.dispatcher = newDispatcher(s)
	return s
}

// Start attaches f to the scheduler and marks it ready. No switch
// happens: f runs at its FIFO turn.
func (s *Scheduler) Start(f *Fiber) {
	s.checkOpen()
	if f.sched != nil {
		panic("fiber: started twice")
	}
	if f.kind != Worker {
		panic("fiber: only worker fibers can be started")
	}
	s.attach(f)
	s.markReady(f)
}

// Spawn constructs and starts a worker fiber in one call.
func (s *Scheduler) Spawn(name string, body Task) *Fiber {
	f := New(name, body)
	s.Start(f)
	return f
}

// SpawnExpr is Spawn for an Expr-world body.
func (s *Scheduler) SpawnExpr(name string, body TaskExpr) *Fiber {
	f := NewExpr(name, body)
	s.Start(f)
	return f
}

// attach links f to this scheduler and accounts live workers. The
// scheduler holds one strong reference for as long as f is live; the
// reference travels with f into the reclamation queue and is released
// by reapTerminated.
func (s *Scheduler) attach(f *Fiber) {
	f.sched = s
	if f.kind == Worker {
		s.workerCount++
	}
	f.retain()
}

// Active returns the currently active fiber. Exactly one fiber per
// scheduler is active at any point.
func (s *Scheduler) Active() *Fiber { return s.active }

// Workers reports the number of live worker fibers.
func (s *Scheduler) Workers() int { return s.workerCount }

// ShuttingDown reports whether teardown has begun.
func (s *Scheduler) ShuttingDown() bool { return s.shuttingDown }

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// Yield reschedules the main fiber behind everything already ready
// and drives the scheduler until control returns to it.
func (s *Scheduler) Yield() {
	s.checkOpen()
	s.mustMain("Yield")
	s.markReady(s.main)
	s.runUntilMain()
}

// WaitUntil blocks the main fiber until the absolute deadline passes
// on the scheduler clock. Fiber bodies sleep via [SleepThen] instead.
func (s *Scheduler) WaitUntil(deadline time.Time) {
	s.checkOpen()
	s.mustMain("WaitUntil")
	s.insertSleep(s.main, deadline)
	s.runUntilMain()
}

// Close tears the scheduler down: drives remaining fibers until no
// workers are live, retires the dispatcher, and reclaims everything
// pending. Only the main fiber may close. Close blocks while workers
// are still running rather than leaking them.
func (s *Scheduler) Close() {
	s.checkOpen()
	s.mustMain("Close")
	s.shuttingDown = true
	for s.dstate != dispatchTerminating {
		s.preempt()
	}
	if s.workerCount != 0 {
		panic("fiber: live workers after dispatcher exit")
	}
	// Safe to drop the owned reference here: control already returned
	// to main, so the dispatcher is not the active context.
	s.dispatcher.release()
	s.reapTerminated()
	s.closed = true
	s.active = nil
	s.main.release()
}

func (s *Scheduler) mustMain(op string) {
	if s.active != s.main {
		panic("fiber: " + op + " outside the main fiber")
	}
}

func (s *Scheduler) checkOpen() {
	if s.closed {
		panic("fiber: scheduler is closed")
	}
}

// markReady appends f to the ready queue. Strict FIFO: fibers already
// ready are never overtaken.
func (s *Scheduler) markReady(f *Fiber) {
	if f.link != unlinked {
		panic("fiber: marking a linked fiber ready")
	}
	f.link = linkedReady
	s.ready = append(s.ready, f)
	s.idleBo.Reset()
	s.warnedNoWake = false
}

// popReady removes and returns the front of the ready queue. The
// fiber is unlinked at the same instant it is selected to run.
func (s *Scheduler) popReady() *Fiber {
	if len(s.ready) == 0 {
		return nil
	}
	f := s.ready[0]
	s.ready[0] = nil
	s.ready = s.ready[1:]
	f.link = unlinked
	return f
}

// scheduleTermination hands a finished fiber to the deferred
// reclamation queue and updates the live worker count. The dispatcher
// is not queued: the scheduler releases its owned reference at
// teardown instead.
func (s *Scheduler) scheduleTermination(f *Fiber) {
	if f.kind == Worker {
		s.workerCount--
	}
	if f.kind == Dispatch {
		return
	}
	f.link = linkedTerminated
	s.terminated = append(s.terminated, f)
}

// reapTerminated drains the reclamation queue, releasing one strong
// reference per entry; entries whose count reaches zero are destroyed
// as a side effect. Callers are the dispatcher pass and Close, never
// the fiber being reclaimed.
func (s *Scheduler) reapTerminated() {
	for len(s.terminated) > 0 {
		f := s.terminated[0]
		s.terminated[0] = nil
		s.terminated = s.terminated[1:]
		f.link = unlinked
		f.release()
	}
}

// drainRemote moves externally woken fibers onto the ready queue.
// Runs only on the scheduler thread (single consumer).
func (s *Scheduler) drainRemote() {
	for {
		f, err := s.remote.Dequeue()
		if err != nil {
			// Empty, or transient threshold backpressure; either way
			// the next pass retries.
			return
		}
		s.parkedCount--
		s.markReady(f)
	}
}

// preempt performs the core switch decision: run the front of the
// ready queue, or the dispatcher when nothing is ready. Every
// voluntary suspension passes through here. Reports whether control
// was handed back to the main fiber.
func (s *Scheduler) preempt() bool {
	s.drainRemote()
	f := s.popReady()
	if f == nil {
		f = s.dispatcher
	}
	if f == s.main {
		s.active = s.main
		return true
	}
	s.switchTo(f)
	return false
}

// runUntilMain drives the scheduler until the main fiber is switched
// back to, i.e. until whatever blocked it has resolved.
func (s *Scheduler) runUntilMain() {
	for !s.preempt() {
	}
}

// switchTo makes f the active fiber and runs it until its next
// suspension point or completion. The active pointer and the stored
// continuation move in lock-step: the continuation is taken out while
// f runs and the fresh one is stored back the moment f suspends.
func (s *Scheduler) switchTo(f *Fiber) {
	if f.terminated {
		panic("fiber: switching to a terminated fiber")
	}
	s.active = f
	for {
		var susp *kont.Suspension[struct{}]
		if !f.entered {
			f.entered = true
			body := f.body
			var zero TaskExpr
			f.body = zero
			_, susp = kont.StepExpr(body)
		} else {
			cur := f.susp
			if cur == nil {
				panic("fiber: resuming a fiber without a continuation")
			}
			f.susp = nil
			v := f.pending
			f.pending = nil
			if v == nil {
				v = struct{}{}
			}
			_, susp = cur.Resume(v)
		}
		if susp == nil {
			// The body returned; termination is the fiber's last
			// action and control never re-enters its frame.
			f.terminate()
			s.active = s.main
			return
		}
		op, ok := susp.Op().(fiberDispatcher)
		if !ok {
			panic("fiber: unhandled effect in scheduler")
		}
		v, resumeNow := op.DispatchFiber(s, f)
		if f.susp != nil {
			panic("fiber: continuation already populated")
		}
		f.susp = susp
		f.pending = v
		if resumeNow {
			continue
		}
		s.active = s.main
		return
	}
}
