// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "code.hybscloud.com/kont"

// Barrier blocks fibers until a fixed number of participants arrive,
// then releases them all and resets for the next cycle. A barrier
// belongs to one scheduler; all participants must run on it.
type Barrier struct {
	initial  uint
	current  uint
	canceled bool
	waiters  []*Fiber
}

// NewBarrier creates a barrier for n participants per cycle.
func NewBarrier(n uint) *Barrier {
	if n == 0 {
		panic("fiber: barrier of zero participants")
	}
	return &Barrier{initial: n, current: n}
}

// Cancel wakes every waiter with a false serial flag and makes all
// subsequent waits return immediately. Must run on the barrier's
// scheduler thread.
func (b *Barrier) Cancel() {
	b.canceled = true
	waiters := b.waiters
	b.waiters = nil
	for _, w := range waiters {
		w.sched.markReady(w)
	}
}

// barrierWait is the effect operation for arriving at a barrier.
// Resumes with true for the arrival that completed the cycle, false
// for the released waiters.
type barrierWait struct {
	kont.Phantom[bool]
	b *Barrier
}

// DispatchFiber handles barrierWait: the last arrival releases the
// cycle's waiters in arrival order and resumes at once; everyone else
// suspends.
func (op barrierWait) DispatchFiber(s *Scheduler, self *Fiber) (kont.Resumed, bool) {
	b := op.b
	if b.canceled {
		return false, true
	}
	b.current--
	if b.current == 0 {
		b.current = b.initial
		waiters := b.waiters
		b.waiters = nil
		for _, w := range waiters {
			s.markReady(w)
		}
		return true, true
	}
	b.waiters = append(b.waiters, self)
	return false, false
}

// BarrierBind arrives at b and passes the serial flag to fn: true for
// the arrival that completed the cycle.
// Fuses Perform(barrierWait{...}) + Bind.
func BarrierBind[B any](b *Barrier, fn func(bool) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(barrierWait{b: b}), fn)
}

// BarrierThen arrives at b and continues with next, discarding the
// serial flag.
func BarrierThen[B any](b *Barrier, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(barrierWait{b: b}), next)
}
