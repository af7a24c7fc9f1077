// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"time"

	"code.hybscloud.com/kont"
)

// fiberDispatcher is the structural interface for scheduling effects.
// DispatchFiber returns the value the fiber resumes with and whether
// to resume immediately; when false, the fiber stays suspended until
// the scheduler switches back to it.
type fiberDispatcher interface {
	DispatchFiber(s *Scheduler, self *Fiber) (kont.Resumed, bool)
}

// Yield is the effect operation for rescheduling the calling fiber.
// Perform(Yield{}) moves it to the back of the ready queue; fibers
// already ready run first.
type Yield struct {
	kont.Phantom[struct{}]
}

// DispatchFiber handles Yield: ready-list the caller and suspend.
func (Yield) DispatchFiber(s *Scheduler, self *Fiber) (kont.Resumed, bool) {
	s.markReady(self)
	return struct{}{}, false
}

// Join is the effect operation for awaiting another fiber's
// termination. Self-join and cross-scheduler join are programming
// errors, reported fatally. Joining an already terminated fiber
// resumes immediately.
type Join struct {
	kont.Phantom[struct{}]
	Target *Fiber
}

// DispatchFiber handles Join: resume at once if the target already
// terminated, otherwise enqueue the caller on the target's wait list.
func (j Join) DispatchFiber(s *Scheduler, self *Fiber) (kont.Resumed, bool) {
	t := j.Target
	if t == self {
		panic("fiber: join on self")
	}
	if t.sched == nil {
		panic("fiber: join on unstarted fiber")
	}
	if t.sched != s {
		panic("fiber: cross-scheduler join")
	}
	if t.kind == Main {
		panic("fiber: join on the main fiber")
	}
	if t.terminated {
		return struct{}{}, true
	}
	t.joiners = append(t.joiners, self)
	return struct{}{}, false
}

// Sleep is the effect operation for a timed sleep. The caller
// suspends until the absolute deadline passes on the scheduler clock.
type Sleep struct {
	kont.Phantom[struct{}]
	Deadline time.Time
}

// DispatchFiber handles Sleep: link the caller into the sleep set
// keyed by deadline and suspend.
func (op Sleep) DispatchFiber(s *Scheduler, self *Fiber) (kont.Resumed, bool) {
	s.insertSleep(self, op.Deadline)
	return struct{}{}, false
}

// Start is the effect operation for starting another fiber from
// inside a fiber body. Attaches the target to the calling fiber's
// scheduler and marks it ready. No switch happens: the caller resumes
// immediately and the target runs at its FIFO turn.
type Start struct {
	kont.Phantom[struct{}]
	Target *Fiber
}

// DispatchFiber handles Start.
func (op Start) DispatchFiber(s *Scheduler, self *Fiber) (kont.Resumed, bool) {
	s.Start(op.Target)
	return struct{}{}, true
}

// Self is the effect operation resolving the currently active fiber.
// Perform(Self{}) resumes immediately with the caller's own *Fiber.
type Self struct {
	kont.Phantom[*Fiber]
}

// DispatchFiber handles Self.
func (Self) DispatchFiber(s *Scheduler, self *Fiber) (kont.Resumed, bool) {
	return self, true
}

// Park is the effect operation for suspending until an external
// [Fiber.Wake]. The caller is linked nowhere; it becomes ready only
// when a wake is delivered through the remote-ready queue.
type Park struct {
	kont.Phantom[struct{}]
}

// DispatchFiber handles Park. The parked flag is published with a
// store so a concurrent Wake on another thread observes it.
func (Park) DispatchFiber(s *Scheduler, self *Fiber) (kont.Resumed, bool) {
	self.parked.Store(1)
	s.parkedCount++
	return struct{}{}, false
}
