// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"container/heap"
	"time"
)

// sleepHeap orders sleeping fibers by wake deadline, then by
// insertion sequence. The tie-break keeps equal-deadline wakes in
// insertion order, which makes scheduling deterministic.
type sleepHeap []*Fiber

func (h sleepHeap) Len() int { return len(h) }

func (h sleepHeap) Less(i, j int) bool {
	if h[i].wakeAt.Equal(h[j].wakeAt) {
		return h[i].sleepSeq < h[j].sleepSeq
	}
	return h[i].wakeAt.Before(h[j].wakeAt)
}

func (h sleepHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *sleepHeap) Push(x any) { *h = append(*h, x.(*Fiber)) }

func (h *sleepHeap) Pop() any {
	old := *h
	n := len(old) - 1
	f := old[n]
	old[n] = nil
	*h = old[:n]
	return f
}

// insertSleep links f into the sleep set keyed by deadline.
func (s *Scheduler) insertSleep(f *Fiber, deadline time.Time) {
	if f.link != unlinked {
		panic("fiber: sleeping a linked fiber")
	}
	f.link = linkedSleep
	f.wakeAt = deadline
	s.sleepSeq++
	f.sleepSeq = s.sleepSeq
	heap.Push(&s.sleeping, f)
}

// ProcessSleep wakes every sleeping fiber whose deadline is at or
// before the current clock time, earliest first. Custom dispatch
// algorithms are expected to call this once per pass.
func (s *Scheduler) ProcessSleep() {
	if len(s.sleeping) == 0 {
		return
	}
	now := s.clock.Now()
	for len(s.sleeping) > 0 {
		f := s.sleeping[0]
		if f.wakeAt.After(now) {
			break
		}
		heap.Pop(&s.sleeping)
		f.link = unlinked
		s.markReady(f)
	}
}
