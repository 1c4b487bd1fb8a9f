// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tap implements the IEEE 1149.1 JTAG Test Access Port state
// machine: 16 states, stepped by TMS on every TCK rising edge.
package tap

// State is one of the 16 canonical TAP controller states.
type State uint8

// The 16 TAP states, numbered as in the IEEE 1149.1 state diagram.
const (
	Reset State = iota
	RunIdle
	SelectDR
	CaptureDR
	ShiftDR
	Exit1DR
	PauseDR
	Exit2DR
	UpdateDR
	SelectIR
	CaptureIR
	ShiftIR
	Exit1IR
	PauseIR
	Exit2IR
	UpdateIR
)

var stateNames = [...]string{
	Reset:     "RESET",
	RunIdle:   "RUN-IDLE",
	SelectDR:  "SELECT-DR",
	CaptureDR: "CAPTURE-DR",
	ShiftDR:   "SHIFT-DR",
	Exit1DR:   "EXIT1-DR",
	PauseDR:   "PAUSE-DR",
	Exit2DR:   "EXIT2-DR",
	UpdateDR:  "UPDATE-DR",
	SelectIR:  "SELECT-IR",
	CaptureIR: "CAPTURE-IR",
	ShiftIR:   "SHIFT-IR",
	Exit1IR:   "EXIT1-IR",
	PauseIR:   "PAUSE-IR",
	Exit2IR:   "EXIT2-IR",
	UpdateIR:  "UPDATE-IR",
}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return "INVALID"
	}
	return stateNames[s]
}

// Next computes the state the TAP transitions to on a TCK rising edge, given
// the current state and the sampled value of TMS.
//
// Five consecutive rising edges with tms true return the TAP to Reset from
// any starting state; this falls directly out of the transition table below
// and is not special-cased.
func Next(state State, tms bool) State {
	switch state {
	case Reset:
		if tms {
			return Reset
		}
		return RunIdle
	case RunIdle:
		if tms {
			return SelectDR
		}
		return RunIdle

	case SelectDR:
		if tms {
			return SelectIR
		}
		return CaptureDR
	case CaptureDR:
		if tms {
			return Exit1DR
		}
		return ShiftDR
	case ShiftDR:
		if tms {
			return Exit1DR
		}
		return ShiftDR
	case Exit1DR:
		if tms {
			return UpdateDR
		}
		return PauseDR
	case PauseDR:
		if tms {
			return Exit2DR
		}
		return PauseDR
	case Exit2DR:
		if tms {
			return UpdateDR
		}
		return ShiftDR
	case UpdateDR:
		if tms {
			return SelectDR
		}
		return RunIdle

	case SelectIR:
		if tms {
			return Reset
		}
		return CaptureIR
	case CaptureIR:
		if tms {
			return Exit1IR
		}
		return ShiftIR
	case ShiftIR:
		if tms {
			return Exit1IR
		}
		return ShiftIR
	case Exit1IR:
		if tms {
			return UpdateIR
		}
		return PauseIR
	case PauseIR:
		if tms {
			return Exit2IR
		}
		return PauseIR
	case Exit2IR:
		if tms {
			return UpdateIR
		}
		return ShiftIR
	case UpdateIR:
		if tms {
			return SelectDR
		}
		return RunIdle

	default:
		return Reset
	}
}
