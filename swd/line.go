// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package swd

import "time"

// DefaultRate is the nominal SWCLK line rate this driver targets, absent any
// other configuration.
const DefaultRate = 5000000 // 5 MHz

// Line is the SWD bit-bang line driver (C1). It exposes three primitives —
// push, pull, and high-impedance clocking — all built from the same
// microcycle: setup data (or release the line), half-period delay, drive
// SWCLK high, half-period delay, drive SWCLK low.
//
// Reads sample SWDIO before raising SWCLK, so the value seen on a given
// cycle is whatever the target set up during the previous cycle's low
// half-period — matching how a real SW-DP drives its side of the link.
type Line struct {
	pins      Pins
	halfCycle time.Duration
}

// NewLine returns a Line driving pins at the given line rate.
func NewLine(pins Pins, hz int64) *Line {
	if hz <= 0 {
		hz = DefaultRate
	}
	return &Line{
		pins:      pins,
		halfCycle: time.Second / time.Duration(hz) / 2,
	}
}

func (l *Line) halfDelay() {
	l.pins.Delay(l.halfCycle)
}

func (l *Line) clockPulse() {
	l.halfDelay()
	l.pins.SetSWCLK(true)
	l.halfDelay()
	l.pins.SetSWCLK(false)
}

// Push drives n bits from buf onto SWDIO, LSB-first across the whole
// buffer, host-to-target.
func (l *Line) Push(buf []byte, n int) {
	l.pins.SetSWDIODir(true)
	for i := 0; i < n; i++ {
		bit := buf[i/8]&(1<<uint(i%8)) != 0
		l.pins.SetSWDIOOut(bit)
		l.clockPulse()
	}
}

// Pull samples n bits from SWDIO into buf, LSB-first across the whole
// buffer, target-to-host. buf must be at least (n+7)/8 bytes.
func (l *Line) Pull(buf []byte, n int) {
	l.pins.SetSWDIODir(false)
	for i := range buf {
		buf[i] = 0
	}
	for i := 0; i < n; i++ {
		l.halfDelay()
		sample := l.pins.GetSWDIO()
		l.pins.SetSWCLK(true)
		l.halfDelay()
		l.pins.SetSWCLK(false)
		if sample {
			buf[i/8] |= 1 << uint(i%8)
		}
	}
}

// HiZClocks issues n clock cycles with SWDIO released and unsampled, used
// for turnaround cycles and the TARGETSEL no-response gap.
func (l *Line) HiZClocks(n int) {
	l.pins.SetSWDIODir(false)
	for i := 0; i < n; i++ {
		l.clockPulse()
	}
}
