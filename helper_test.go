// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber_test

import (
	"time"

	"code.hybscloud.com/fiber"
	"code.hybscloud.com/kont"
)

// do runs a plain side effect at this point in a fiber body, then
// continues with next.
func do(fn func(), next fiber.Task) fiber.Task {
	return kont.Bind(kont.Pure(struct{}{}), func(struct{}) fiber.Task {
		fn()
		return next
	})
}

// note appends a marker when the body reaches this point.
// Used by ordering tests to observe execution order.
func note(log *[]string, s string, next fiber.Task) fiber.Task {
	return do(func() { *log = append(*log, s) }, next)
}

// manualClock is a simulated time source: Sleep advances Now instead
// of blocking, making deadline tests deterministic.
type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Sleep(d time.Duration) {
	if d > 0 {
		c.now = c.now.Add(d)
	}
}
