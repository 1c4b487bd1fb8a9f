// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ftdimpsse drives the SWD pin pair over an FTDI FT232H/FT2232H's
// MPSSE engine, using its low-speed GPIO ("D-bus") commands as a pair of
// bit-banged pins rather than the engine's clocked shift commands. It
// implements swd.Pins and knows nothing about SWD, JTAG or DMI.
package ftdimpsse

import (
	"fmt"
	"strconv"
	"time"

	"periph.io/x/d2xx"

	"periph.io/x/swdjtag/host/backend"
	"periph.io/x/swdjtag/internal/spin"
	"periph.io/x/swdjtag/swd"
)

// MPSSE D-bus GPIO command bytes, AN_108 §3.
const (
	cmdSetD  = 0x80
	cmdReadD = 0x81
)

// FTDI bit-mode selector, AN_232B-05 (the d2xx SetBitMode mask/mode pair).
const bitModeMPSSE = 0x02

const (
	bitSWCLK = 1 << 0
	bitSWDIO = 1 << 1
)

// Device drives two D-bus pins of an MPSSE-capable FTDI chip as SWCLK and
// SWDIO.
type Device struct {
	h       d2xx.Handle
	value   byte // current drive level per bit
	dir     byte // 1 = output, 0 = input, per bit
	halfPad time.Duration
}

// Open opens the i'th FTDI device (0-based, per d2xx.CreateDeviceInfoList
// ordering) and switches it into MPSSE mode with SWCLK driven low and
// SWDIO released to input.
func Open(i int) (*Device, error) {
	h, e := d2xx.Open(i)
	if e != 0 {
		return nil, fmt.Errorf("ftdimpsse: open device %d: %s", i, e)
	}
	if e := h.SetBitMode(0, 0); e != 0 {
		_ = h.Close()
		return nil, fmt.Errorf("ftdimpsse: reset bitmode: %s", e)
	}
	if e := h.SetBitMode(bitSWCLK, bitModeMPSSE); e != 0 {
		_ = h.Close()
		return nil, fmt.Errorf("ftdimpsse: enable MPSSE: %s", e)
	}
	d := &Device{h: h, dir: bitSWCLK}
	d.latch()
	return d, nil
}

// Close releases the underlying FTDI handle.
func (d *Device) Close() error {
	e := d.h.Close()
	if e != 0 {
		return fmt.Errorf("ftdimpsse: close: %s", e)
	}
	return nil
}

func (d *Device) latch() {
	_, _ = d.h.Write([]byte{cmdSetD, d.value, d.dir})
}

// SetSWCLK implements swd.Pins.
func (d *Device) SetSWCLK(high bool) {
	if high {
		d.value |= bitSWCLK
	} else {
		d.value &^= bitSWCLK
	}
	d.latch()
}

// SetSWDIODir implements swd.Pins. The FTDI D-bus direction register is
// re-sent with every latch, including the one issued here, so the new
// direction takes effect immediately.
func (d *Device) SetSWDIODir(out bool) {
	if out {
		d.dir |= bitSWDIO
	} else {
		d.dir &^= bitSWDIO
	}
	d.latch()
}

// SetSWDIOOut implements swd.Pins.
func (d *Device) SetSWDIOOut(high bool) {
	if high {
		d.value |= bitSWDIO
	} else {
		d.value &^= bitSWDIO
	}
	d.latch()
}

// GetSWDIO implements swd.Pins.
func (d *Device) GetSWDIO() bool {
	_, _ = d.h.Write([]byte{cmdReadD})
	var buf [1]byte
	for got := 0; got < 1; {
		n, e := d.h.Read(buf[got:])
		if e != 0 {
			return false
		}
		got += n
	}
	return buf[0]&bitSWDIO != 0
}

// Delay implements swd.Pins with a local busy spin for d. USB full-speed
// round trips already dominate the per-edge latency at any plausible SWCLK
// rate, and this spin comes on top of them.
func (d *Device) Delay(dur time.Duration) {
	spin.Busy(dur)
}

// drv adapts Device to backend.Backend. addr is the 0-based FTDI device
// index, e.g. "0".
type drv struct {
	opened *Device
}

func (r *drv) String() string { return "ftdimpsse" }

func (r *drv) Open(addr string) (swd.Pins, error) {
	i, err := strconv.Atoi(addr)
	if err != nil {
		return nil, fmt.Errorf("ftdimpsse: addr must be a device index, got %q", addr)
	}
	dev, err := Open(i)
	if err != nil {
		return nil, err
	}
	r.opened = dev
	return dev, nil
}

func (r *drv) Close() error {
	if r.opened == nil {
		return nil
	}
	err := r.opened.Close()
	r.opened = nil
	return err
}

func init() {
	backend.MustRegister(&drv{})
}
