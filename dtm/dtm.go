// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dtm implements the virtual RISC-V JTAG Debug Transport Module.
//
// It terminates a raw JTAG bit stream (TCK/TMS/TDI/TDO pin edges) and
// presents the IDCODE, DTMCS and DMI registers defined by the RISC-V
// External Debug Support spec, version 0.13.2. Every DMI register committed
// by the host debugger is delivered to a DMI capability supplied by the
// caller; this package has no notion of what sits behind that capability.
package dtm

import (
	"periph.io/x/swdjtag/internal/tracelog"
	"periph.io/x/swdjtag/tap"
)

// 5-bit JTAG instructions recognized by this DTM. Every other 5-bit
// encoding behaves as Bypass.
const (
	Bypass uint8 = 0x00
	IDCODE uint8 = 0x01
	DTMCS  uint8 = 0x10
	DMI    uint8 = 0x11
)

// ABits is the width, in bits, of a DMI address in this implementation.
const ABits = 8

// wIR is the width of the instruction register shifter.
const wIR = 5

// wDMI is the width of the DMI data register: address, data and a 2-bit op.
const wDMI = ABits + 32 + 2

// DMI op encodings, packed into the low 2 bits of the DMI shift register.
const (
	opNone  = 0
	opRead  = 1
	opWrite = 2
)

// DTMCS field values, per RISC-V Debug Spec 0.13.2 §6.1.4.
const (
	dtmcsVersion = 1 // 0.13.2 is the first ratified version
	dtmcsIdle    = 0
)

// Bus is the DMI capability the virtual DTM dispatches committed register
// accesses to. It is the Go expression of the original firmware's two raw
// function-pointer callbacks.
type Bus interface {
	// WriteDMI performs a DMI write of data to addr.
	WriteDMI(addr uint8, data uint32)
	// ReadDMI performs a DMI read of addr and returns the result.
	ReadDMI(addr uint8) uint32
}

// DTM is a virtual JTAG-DTM instance.
//
// A DTM is driven synchronously by whichever task is shuttling JTAG pin
// edges in from the host debugger; it never yields and never blocks of its
// own accord, though a DMI dispatch through Bus may.
type DTM struct {
	log *tracelog.Logger
	bus Bus

	state   tap.State
	ir      uint8
	shifter uint64
	idcode  uint32
	dmiRead uint32

	tck, tms, tdi, tdo bool
}

// New returns a DTM that presents idcode after a TAP reset.
//
// log may be nil, in which case the DTM is silent. SetBus must be called
// before the DMI register is exercised by the host, or dispatched accesses
// are simply dropped. DTMCS is served by the DTM itself and needs no bus.
func New(idcode uint32, log *tracelog.Logger) *DTM {
	return &DTM{
		log:    log,
		idcode: idcode,
		ir:     IDCODE,
	}
}

// SetBus wires the DMI capability that the DTM dispatches committed DMI
// register writes and reads to. The DTM holds no reference back to its own
// container; ownership flows strictly from the container, which constructs
// both the DTM and the bus and wires one into the other.
func (d *DTM) SetBus(bus Bus) {
	d.bus = bus
}

// State returns the TAP controller's current state.
func (d *DTM) State() tap.State {
	return d.state
}

// IR returns the current instruction register value.
func (d *DTM) IR() uint8 {
	return d.ir
}

// SetTMS latches a new sampled TMS value, effective on the next TCK rising
// edge.
func (d *DTM) SetTMS(tms bool) {
	d.tms = tms
}

// SetTDI latches a new sampled TDI value, effective on the next TCK rising
// edge while the TAP is in SHIFT-IR or SHIFT-DR.
func (d *DTM) SetTDI(tdi bool) {
	d.tdi = tdi
}

// GetTDO returns the value the TAP is currently driving on TDO.
//
// It is recomputed on every TCK falling edge and must remain valid for the
// entire low half of the clock.
func (d *DTM) GetTDO() bool {
	return d.tdo
}

// SetTCK drives a new TCK level. The DTM detects the edge itself: a
// transition from false to true steps the TAP FSM and applies the current
// state's CAPTURE/SHIFT/UPDATE effects; a transition from true to false
// recomputes TDO from the new state. Callers may toggle TCK as often as
// they like; redundant writes of the same level are no-ops.
func (d *DTM) SetTCK(tck bool) {
	if tck && !d.tck {
		d.tckRisingEdge()
		if d.log != nil {
			d.log.DumpTCK("TMS=%v TDI=%v -> TDO=%v\n", d.tms, d.tdi, d.nextTDO())
		}
	} else if !tck && d.tck {
		d.tdo = d.nextTDO()
	}
	d.tck = tck
}

// nextTDO computes the bit the TAP would drive on TDO given its current
// state and shifter, evaluated as of the most recent rising edge.
func (d *DTM) nextTDO() bool {
	if d.state == tap.ShiftDR || d.state == tap.ShiftIR {
		return d.shifter&1 != 0
	}
	return false
}

// drLen returns the width of the data register selected by ir.
func drLen(ir uint8) uint {
	switch ir {
	case DTMCS:
		return 32
	case DMI:
		return wDMI
	case IDCODE:
		return 32
	default:
		return 1
	}
}

func (d *DTM) tckRisingEdge() {
	switch d.state {
	case tap.Reset:
		d.ir = IDCODE
		if d.log != nil {
			d.log.DumpTAP("RESET\n")
		}

	case tap.CaptureIR:
		d.shifter = uint64(d.ir)
		if d.log != nil {
			d.log.DumpTAP("CAPTURE IR -> %02x\n", d.ir)
		}

	case tap.ShiftIR:
		var tdi uint64
		if d.tdi {
			tdi = 1
		}
		d.shifter = (d.shifter >> 1) | (tdi << (wIR - 1))

	case tap.UpdateIR:
		d.ir = uint8(d.shifter) & 0x1f
		if d.log != nil {
			d.log.DumpTAP("UPDATE IR <- %02x\n", d.ir)
		}

	case tap.CaptureDR:
		switch d.ir {
		default: // Bypass and every unrecognized instruction
			d.shifter = 0
		case IDCODE:
			d.shifter = uint64(d.idcode)
		case DTMCS:
			d.shifter = d.readDTMCS()
		case DMI:
			d.shifter = d.readDMI()
		}
		if d.log != nil {
			d.log.DumpTAP("CAPTURE DR -> %#011x\n", d.shifter)
		}

	case tap.ShiftDR:
		var tdi uint64
		if d.tdi {
			tdi = 1
		}
		d.shifter = (d.shifter >> 1) | (tdi << (drLen(d.ir) - 1))

	case tap.UpdateDR:
		if d.log != nil {
			d.log.DumpTAP("UPDATE DR <- %#011x\n", d.shifter)
		}
		switch d.ir {
		case DTMCS:
			d.writeDTMCS(d.shifter)
		case DMI:
			d.writeDMI(d.shifter)
		}
	}

	d.state = tap.Next(d.state, d.tms)
}

// writeDMI decodes a committed DMI shift register and dispatches the
// resulting access to the bus. This never reports a DMI status error back
// through the op field: the original firmware's DMI never stalls, so this
// core always reports OK (op status bits of 0). A real target-facing bridge
// that can fault should surface that through a sticky status bit instead of
// silently discarding it; that revision is not implemented here.
func (d *DTM) writeDMI(shifter uint64) {
	op := uint8(shifter & 0x3)
	data := uint32(shifter >> 2)
	addr := uint8(shifter>>34) & (1<<ABits - 1)

	switch op {
	case opWrite:
		if d.bus != nil {
			d.bus.WriteDMI(addr, data)
		}
		if d.log != nil {
			d.log.DumpDMI("W %02x <- %08x\n", addr, data)
		}
	case opRead:
		if d.bus != nil {
			d.dmiRead = d.bus.ReadDMI(addr)
		}
		if d.log != nil {
			d.log.DumpDMI("R %02x -> %08x\n", addr, d.dmiRead)
		}
	}
}

// readDMI returns the shift register value presented at the next
// CAPTURE-DR: the previously latched read data in bits [33:2], with op
// status bits [1:0] always reporting OK (0).
func (d *DTM) readDMI() uint64 {
	return uint64(d.dmiRead) << 2
}

// writeDTMCS accepts and discards a DTMCS write. The original firmware
// leaves error/reset-bit handling unimplemented; this preserves that gap
// rather than inventing semantics for it.
func (d *DTM) writeDTMCS(uint64) {
}

func (d *DTM) readDTMCS() uint64 {
	return dtmcsVersion<<0 | uint64(ABits)<<4 | dtmcsIdle<<12
}
