// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "time"

// Clock abstracts the scheduler's time source so deadline processing
// can run against simulated time.
type Clock interface {
	Now() time.Time
	// Sleep blocks the scheduler thread, or advances simulated time,
	// by at most d.
	Sleep(d time.Duration)
}

// wallClock is the default Clock.
type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }
