// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package swd implements an SWD (Serial Wire Debug) host: the line-level
// bit-banging primitives, packet framing with parity, ACK decoding, and the
// SWJ-DP dormant/SWD bring-up sequence defined by ADIv5.2.
package swd

import "time"

// Pins is the narrow capability the line driver needs from the pin-level
// backend. It replaces the original firmware's direct calls into a specific
// GPIO peripheral with a capability any backend (Linux GPIO character
// device, FTDI MPSSE, or a test fake) can implement.
type Pins interface {
	// SetSWCLK drives the clock pin.
	SetSWCLK(high bool)
	// SetSWDIODir sets the data pin's direction: true to drive (host-to-
	// target), false to release it to high-impedance (target-to-host).
	SetSWDIODir(out bool)
	// SetSWDIOOut drives the data pin. Only meaningful while SetSWDIODir(true)
	// is in effect.
	SetSWDIOOut(high bool)
	// GetSWDIO samples the data pin. Only meaningful while the pin has been
	// released with SetSWDIODir(false).
	GetSWDIO() bool
	// Delay blocks for approximately d, used as the line driver's half-period
	// delay between edges.
	Delay(d time.Duration)
}
