// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber_test

import (
	"slices"
	"testing"
	"time"

	"code.hybscloud.com/fiber"
)

func TestParkWakeFromAnotherGoroutine(t *testing.T) {
	skipRace(t)
	s := fiber.NewScheduler()
	var log []string

	f := s.Spawn("parker", note(&log, "before",
		fiber.ParkThen(note(&log, "after", fiber.End()))))

	woke := make(chan bool, 1)
	go func() {
		time.Sleep(5 * time.Millisecond)
		woke <- f.Wake()
	}()

	f.Join()
	if !<-woke {
		t.Fatal("Wake on a parked fiber should report true")
	}

	want := []string{"before", "after"}
	if !slices.Equal(log, want) {
		t.Fatalf("got %v, want %v", log, want)
	}
	if f.Wake() {
		t.Fatal("Wake on a terminated fiber should report false")
	}
	s.Close()
}

func TestWakeNotParked(t *testing.T) {
	s := fiber.NewScheduler()
	f := s.Spawn("runner", fiber.End())
	if f.Wake() {
		t.Fatal("Wake on a never-parked fiber should report false")
	}
	f.Join()
	s.Close()
}
