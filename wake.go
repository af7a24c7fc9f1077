// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "code.hybscloud.com/iox"

// Wake makes a parked fiber ready again. Unlike every other
// operation, Wake may be called from any goroutine: the fiber is
// handed to its scheduler through a bounded multi-producer queue and
// becomes ready once the scheduler drains it, keeping all queue and
// refcount mutations on the scheduler thread.
//
// Exactly one Wake is consumed per [Park]; the parked flag arbitrates
// racing wakers. Returns false if the fiber was not parked, or a
// concurrent Wake got there first.
func (f *Fiber) Wake() bool {
	if !f.parked.CompareAndSwap(1, 0) {
		return false
	}
	s := f.sched
	target := f
	var bo iox.Backoff
	for {
		if err := s.remote.Enqueue(&target); err == nil {
			return true
		}
		// Queue full: iox.ErrWouldBlock. Wait for the scheduler to
		// drain and retry; the wake must not be dropped.
		bo.Wait()
	}
}
