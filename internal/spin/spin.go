// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package spin provides a busy-loop delay suitable for bit-banging pin
// drivers, where the half-microsecond granularity of the SWD and JTAG line
// protocols makes time.Sleep unusably coarse.
package spin

import (
	"runtime"
	"time"
)

// Busy spins the calling goroutine for approximately d, locked to its OS
// thread so the scheduler cannot preempt it mid-cycle.
//
// Intended for durations of a few microseconds or less, such as the
// half-period delay in swd.Line or the inter-bit delay of a bit-banged JTAG
// driver. Longer delays should use time.Sleep instead.
func Busy(d time.Duration) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for start := time.Now(); time.Since(start) < d; {
	}
}
