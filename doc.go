// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fiber provides a cooperative, single-thread-per-scheduler
// execution engine for lightweight fibers on [code.hybscloud.com/kont].
//
// A fiber is an effectful computation with thread-like sequential
// structure; a [Scheduler] multiplexes many of them onto one OS
// thread. All suspension points are voluntary, so queue and refcount
// mutations are free of data races by construction and no locks are
// used within a scheduler.
//
// # Architecture
//
//   - Continuations: fiber bodies are kont computations. A suspended
//     fiber stores its one-shot [code.hybscloud.com/kont.Suspension];
//     resuming consumes it and runs the fiber to its next effect.
//   - Scheduling: strict FIFO ready queue, deadline-ordered sleep set,
//     deferred reclamation queue, and one dispatcher fiber per
//     scheduler that runs whenever nothing is ready.
//   - Cross-thread wake: [Fiber.Wake] hands parked fibers to the
//     scheduler through a bounded lock-free MPSC queue via
//     [code.hybscloud.com/lfq]. Everything else is same-thread only;
//     cross-scheduler join is a fatal programming error.
//   - Idle: the dispatcher never busy-spins. It sleeps toward the
//     earliest deadline or polls wakes with
//     [code.hybscloud.com/iox.Backoff].
//
// # API Topologies
//
//   - Operations: [Yield], [Join], [Sleep], [Start], [Self], [Park].
//   - Fused constructors: [YieldThen], [JoinThen], [SleepThen],
//     [StartThen], [SelfBind], [ParkThen], [End].
//   - Driver world (the main fiber, i.e. the thread's own stack):
//     [NewScheduler], [Scheduler.Start], [Scheduler.Spawn],
//     [Scheduler.Yield], [Scheduler.WaitUntil], [Fiber.Join],
//     [Fiber.Detach], [Fiber.Wake], [Scheduler.Close].
//
// # Lifecycle
//
// Worker fibers are constructed with [New], started with
// [Scheduler.Start], run and suspend any number of times, and
// terminate once when their body returns. Termination wakes joiners
// in join order and queues the fiber for deferred reclamation; the
// memory of a terminated fiber is released later, from a different
// active context, when its last strong reference drops.
//
// # Example
//
//	s := fiber.NewScheduler()
//	worker := fiber.New("worker", fiber.YieldThen(fiber.End()))
//	s.Start(worker)
//	worker.Join()
//	s.Close()
package fiber
