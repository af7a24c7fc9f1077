// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"log/slog"
	"time"

	"code.hybscloud.com/kont"
)

// dispatchState distinguishes the dispatcher's normal loop from its
// teardown exit.
type dispatchState uint8

const (
	dispatchRunning dispatchState = iota
	dispatchTerminating
)

// parkPollInterval caps the idle sleep while parked fibers exist, so
// remote wakes are observed promptly even with far-away deadlines.
const parkPollInterval = time.Millisecond

// idle is the effect performed by the dispatcher once per pass.
// Resumes with false when teardown has begun and no workers remain.
type idle struct {
	kont.Phantom[bool]
}

// newDispatcher creates the per-scheduler idle fiber. Its body is a
// recursive effect loop, one idle effect per pass.
func newDispatcher(s *Scheduler) *Fiber {
	f := NewExpr("_dispatch", kont.Reify(dispatchLoop()))
	f.kind = Dispatch
	f.sched = s
	return f
}

// dispatchLoop performs idle passes until the scheduler signals
// shutdown completion.
func dispatchLoop() Task {
	return kont.Bind(kont.Perform(idle{}), func(more bool) Task {
		if !more {
			return kont.Pure(struct{}{})
		}
		return dispatchLoop()
	})
}

// DispatchFiber handles one idle pass. Reaping runs first, so
// reclamation always happens while the dispatcher, not the dying
// fiber, is the active context.
func (idle) DispatchFiber(s *Scheduler, self *Fiber) (kont.Resumed, bool) {
	if self != s.dispatcher {
		panic("fiber: idle effect outside the dispatcher")
	}
	s.reapTerminated()
	s.drainRemote()
	if s.shuttingDown && s.workerCount == 0 {
		s.dstate = dispatchTerminating
		return false, true
	}
	if s.algo != nil {
		s.algo(s)
	} else {
		s.defaultDispatch()
	}
	return true, false
}

// defaultDispatch is one pass of the default idle behavior: wake due
// sleepers, then wait for the next wake source rather than spinning
// on the OS thread.
func (s *Scheduler) defaultDispatch() {
	s.ProcessSleep()
	if len(s.ready) > 0 {
		return
	}
	if len(s.sleeping) > 0 {
		d := s.sleeping[0].wakeAt.Sub(s.clock.Now())
		if d > 0 {
			if s.parkedCount > 0 && d > parkPollInterval {
				d = parkPollInterval
			}
			s.clock.Sleep(d)
		}
		return
	}
	if s.parkedCount > 0 {
		s.idleBo.Wait()
		return
	}
	// Nothing ready, nothing sleeping, nothing parked. If workers
	// still exist they are joined on each other with no wake source
	// left; report once and keep backing off.
	if !s.warnedNoWake {
		s.warnedNoWake = true
		slog.Warn("fiber: no runnable fibers and no pending wake source",
			"workers", s.workerCount)
	}
	s.idleBo.Wait()
}
