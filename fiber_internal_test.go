// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "testing"

func TestTerminateTwicePanics(t *testing.T) {
	s := NewScheduler()
	f := New("t", End())
	s.attach(f)
	f.terminated = true

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for double terminate")
		}
		msg, ok := r.(string)
		if !ok || msg != "fiber: terminated twice" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	f.terminate()
}

func TestDestroyActiveFiberPanics(t *testing.T) {
	s := NewScheduler()
	f := New("t", End())
	s.attach(f)
	s.active = f

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for destroying the active fiber")
		}
		msg, ok := r.(string)
		if !ok || msg != "fiber: destroying the active fiber" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	f.destroy()
}

func TestSleepLinkedPanics(t *testing.T) {
	s := NewScheduler()
	f := New("t", End())
	s.Start(f)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for sleeping a ready fiber")
		}
		msg, ok := r.(string)
		if !ok || msg != "fiber: sleeping a linked fiber" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	s.insertSleep(f, s.Now())
}

func TestMarkReadyLinkedPanics(t *testing.T) {
	s := NewScheduler()
	f := New("t", End())
	s.Start(f)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for double mark-ready")
		}
		msg, ok := r.(string)
		if !ok || msg != "fiber: marking a linked fiber ready" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	s.markReady(f)
}
