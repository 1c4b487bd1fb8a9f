// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dtm

import "testing"

// fakeBus is a DMI capability backed by a map, for tests.
type fakeBus struct {
	mem       map[uint8]uint32
	writes    []struct{ addr uint8; data uint32 }
	readAddrs []uint8
	readFunc  func(addr uint8) uint32
}

func newFakeBus() *fakeBus {
	return &fakeBus{mem: map[uint8]uint32{}}
}

func (f *fakeBus) WriteDMI(addr uint8, data uint32) {
	f.mem[addr] = data
	f.writes = append(f.writes, struct {
		addr uint8
		data uint32
	}{addr, data})
}

func (f *fakeBus) ReadDMI(addr uint8) uint32 {
	f.readAddrs = append(f.readAddrs, addr)
	if f.readFunc != nil {
		return f.readFunc(addr)
	}
	return f.mem[addr]
}

// cycle drives one TCK rising+falling edge with the given TMS/TDI, sampling
// TDO as the host would: immediately before raising TCK, which is the value
// the TAP drove during the preceding low half-cycle.
func cycle(d *DTM, tms, tdi bool) bool {
	d.SetTMS(tms)
	d.SetTDI(tdi)
	sampled := d.GetTDO()
	d.SetTCK(true)
	d.SetTCK(false)
	return sampled
}

func resetTAP(d *DTM) {
	for i := 0; i < 5; i++ {
		cycle(d, true, false)
	}
}

// TestIDCODEReadback covers scenario S1.
func TestIDCODEReadback(t *testing.T) {
	d := New(0xDEADBEEF, nil)
	resetTAP(d)
	// RESET -(0)-> RUN-IDLE -(1)-> SELECT-DR -(0)-> CAPTURE-DR -(0)-> SHIFT-DR
	cycle(d, false, false)
	cycle(d, true, false)
	cycle(d, false, false)
	cycle(d, false, false)

	var got uint32
	for i := 0; i < 32; i++ {
		if cycle(d, false, false) {
			got |= 1 << uint(i)
		}
	}
	if got != 0xDEADBEEF {
		t.Fatalf("IDCODE readback = %#08x, want 0xdeadbeef", got)
	}
}

// TestIRUpdateToDMI covers scenario S2.
func TestIRUpdateToDMI(t *testing.T) {
	d := New(0, nil)
	resetTAP(d)
	// RESET -(0)-> RUN-IDLE -(1)-> SELECT-DR -(1)-> SELECT-IR -(0)-> CAPTURE-IR -(0)-> SHIFT-IR
	cycle(d, false, false)
	cycle(d, true, false)
	cycle(d, true, false)
	cycle(d, false, false)
	cycle(d, false, false)

	bits := []bool{true, false, false, false, true} // 0b10001, LSB first
	for i, b := range bits {
		tms := i == len(bits)-1 // last bit exits to EXIT1-IR
		cycle(d, tms, b)
	}
	// EXIT1-IR -(1)-> UPDATE-IR
	cycle(d, true, false)
	// The UPDATE-IR effect is applied on the rising edge that leaves it:
	// UPDATE-IR -(0)-> RUN-IDLE
	cycle(d, false, false)

	if d.IR() != DMI {
		t.Fatalf("IR = %#02x, want %#02x", d.IR(), DMI)
	}

	// RUN-IDLE -(1)-> SELECT-DR -(0)-> CAPTURE-DR
	cycle(d, true, false)
	cycle(d, false, false)
	if d.state != 3 { // tap.CaptureDR
		t.Fatalf("state after capture-DR entry = %v", d.state)
	}
}

// TestDMIWrite covers scenario S3.
func TestDMIWrite(t *testing.T) {
	d := New(0, nil)
	bus := newFakeBus()
	d.SetBus(bus)
	navigateToShiftDRWithIR(d, DMI)

	addr := uint64(0x10)
	data := uint64(0x00000001)
	op := uint64(opWrite)
	shifter := addr<<34 | data<<2 | op
	shiftInDR(d, shifter, wDMI)
	// EXIT1-DR -(1)-> UPDATE-DR
	cycle(d, true, false)
	// The UPDATE-DR commit happens on the rising edge that leaves it:
	// UPDATE-DR -(0)-> RUN-IDLE
	cycle(d, false, false)

	if len(bus.writes) != 1 {
		t.Fatalf("write callback invoked %d times, want 1", len(bus.writes))
	}
	if bus.writes[0].addr != 0x10 || bus.writes[0].data != 1 {
		t.Fatalf("write callback got (%#02x, %#08x), want (0x10, 0x1)", bus.writes[0].addr, bus.writes[0].data)
	}
}

// TestDMIReadRoundTrip covers scenario S4.
func TestDMIReadRoundTrip(t *testing.T) {
	d := New(0, nil)
	bus := newFakeBus()
	bus.readFunc = func(addr uint8) uint32 {
		if addr == 0x11 {
			return 0x12345678
		}
		return 0
	}
	d.SetBus(bus)

	navigateToShiftDRWithIR(d, DMI)
	op := uint64(opRead)
	addr := uint64(0x11)
	shiftInDR(d, addr<<34|op, wDMI)
	cycle(d, true, false) // EXIT1-DR -> UPDATE-DR

	// UPDATE-DR -(0)-> RUN-IDLE -(1)-> SELECT-DR -(0)-> CAPTURE-DR -(0)-> SHIFT-DR
	cycle(d, false, false)
	cycle(d, true, false)
	cycle(d, false, false)
	cycle(d, false, false)

	var out uint64
	for i := 0; i < wDMI; i++ {
		if cycle(d, false, false) {
			out |= 1 << uint(i)
		}
	}
	if got := uint32(out >> 2); got != 0x12345678 {
		t.Fatalf("DMI read data = %#08x, want 0x12345678", got)
	}
}

// navigateToShiftDRWithIR resets the TAP, loads ir into the instruction
// register, and leaves the TAP in SHIFT-DR.
func navigateToShiftDRWithIR(d *DTM, ir uint8) {
	resetTAP(d)
	cycle(d, false, false) // -> RUN-IDLE
	cycle(d, true, false)  // -> SELECT-DR
	cycle(d, true, false)  // -> SELECT-IR
	cycle(d, false, false) // -> CAPTURE-IR
	cycle(d, false, false) // -> SHIFT-IR
	for i := 0; i < wIR; i++ {
		bit := ir&(1<<uint(i)) != 0
		last := i == wIR-1
		cycle(d, last, bit)
	}
	cycle(d, true, false)  // EXIT1-IR -> UPDATE-IR
	cycle(d, false, false) // -> RUN-IDLE
	cycle(d, true, false)  // -> SELECT-DR
	cycle(d, false, false) // -> CAPTURE-DR
	cycle(d, false, false) // -> SHIFT-DR
}

// shiftInDR shifts width bits of value into the DR shifter, LSB first,
// leaving the TAP in EXIT1-DR.
func shiftInDR(d *DTM, value uint64, width int) {
	for i := 0; i < width; i++ {
		bit := value&(1<<uint(i)) != 0
		last := i == width-1
		cycle(d, last, bit)
	}
}
