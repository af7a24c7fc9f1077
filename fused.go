// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"time"

	"code.hybscloud.com/kont"
)

// YieldThen reschedules the calling fiber and then continues with next.
// Fuses Perform(Yield{}) + Then.
func YieldThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Yield{}), next)
}

// JoinThen waits for f to terminate and then continues with next.
// Fuses Perform(Join{Target: f}) + Then.
func JoinThen[B any](f *Fiber, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Join{Target: f}), next)
}

// SleepThen sleeps until the absolute deadline and then continues
// with next. Fuses Perform(Sleep{Deadline: deadline}) + Then.
func SleepThen[B any](deadline time.Time, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Sleep{Deadline: deadline}), next)
}

// StartThen starts f on the calling fiber's scheduler and then
// continues with next. Fuses Perform(Start{Target: f}) + Then.
func StartThen[B any](f *Fiber, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Start{Target: f}), next)
}

// SelfBind passes the currently active fiber to fn.
// Fuses Perform(Self{}) + Bind.
func SelfBind[B any](fn func(*Fiber) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Self{}), fn)
}

// ParkThen parks the calling fiber until an external [Fiber.Wake] and
// then continues with next. Fuses Perform(Park{}) + Then.
func ParkThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Park{}), next)
}

// End completes a fiber body.
func End() Task {
	return kont.Pure(struct{}{})
}
