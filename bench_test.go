// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber_test

import (
	"testing"
	"time"

	"code.hybscloud.com/fiber"
)

// BenchmarkSpawnJoin measures the full lifecycle of an empty fiber.
func BenchmarkSpawnJoin(b *testing.B) {
	s := fiber.NewScheduler()
	b.ReportAllocs()
	for b.Loop() {
		f := s.Spawn("bench", fiber.End())
		f.Join()
	}
	s.Close()
}

// BenchmarkYieldPair measures two fibers interleaving through the
// ready queue.
func BenchmarkYieldPair(b *testing.B) {
	s := fiber.NewScheduler()
	body := func() fiber.Task {
		return fiber.YieldThen(fiber.YieldThen(fiber.YieldThen(fiber.End())))
	}
	b.ReportAllocs()
	for b.Loop() {
		f1 := s.Spawn("y1", body())
		f2 := s.Spawn("y2", body())
		f1.Join()
		f2.Join()
	}
	s.Close()
}

// BenchmarkSleepSimulated measures the sleep set round trip under a
// simulated clock.
func BenchmarkSleepSimulated(b *testing.B) {
	clk := &manualClock{now: time.Unix(0, 0)}
	s := fiber.NewScheduler(fiber.WithClock(clk))
	b.ReportAllocs()
	for b.Loop() {
		f := s.Spawn("sleeper",
			fiber.SleepThen(clk.Now().Add(time.Millisecond), fiber.End()))
		f.Join()
	}
	s.Close()
}
