// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// SetReclaimHook installs a hook invoked for every destroyed fiber.
// Passing nil removes it. Tests use it to assert that reclamation
// never runs on the active context.
func SetReclaimHook(fn func(*Fiber)) { reclaimHook = fn }

// Refs exposes the strong reference count.
func (f *Fiber) Refs() int32 { return f.refs }

// Destroyed reports whether the fiber's state has been reclaimed.
func (f *Fiber) Destroyed() bool { return f.destroyed }
