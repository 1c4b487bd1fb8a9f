// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tap

import "testing"

// TestResetIdempotence covers invariant 1: from any starting state, five
// consecutive TCK rising edges with TMS=1 leave the TAP in Reset.
func TestResetIdempotence(t *testing.T) {
	for s := Reset; s <= UpdateIR; s++ {
		state := s
		for i := 0; i < 5; i++ {
			state = Next(state, true)
		}
		if state != Reset {
			t.Errorf("starting from %s, 5 TMS=1 edges landed on %s, want RESET", s, state)
		}
	}
}

func TestRunIdleHolds(t *testing.T) {
	if got := Next(RunIdle, false); got != RunIdle {
		t.Errorf("RunIdle+TMS=0 = %s, want RUN-IDLE", got)
	}
}

func TestDRColumn(t *testing.T) {
	cases := []struct {
		from State
		tms  bool
		want State
	}{
		{RunIdle, true, SelectDR},
		{SelectDR, false, CaptureDR},
		{CaptureDR, false, ShiftDR},
		{ShiftDR, false, ShiftDR},
		{ShiftDR, true, Exit1DR},
		{Exit1DR, false, PauseDR},
		{Exit1DR, true, UpdateDR},
		{PauseDR, true, Exit2DR},
		{Exit2DR, false, ShiftDR},
		{Exit2DR, true, UpdateDR},
		{UpdateDR, false, RunIdle},
		{UpdateDR, true, SelectDR},
	}
	for _, c := range cases {
		if got := Next(c.from, c.tms); got != c.want {
			t.Errorf("Next(%s, %v) = %s, want %s", c.from, c.tms, got, c.want)
		}
	}
}

func TestIRColumn(t *testing.T) {
	cases := []struct {
		from State
		tms  bool
		want State
	}{
		{SelectDR, true, SelectIR},
		{SelectIR, false, CaptureIR},
		{SelectIR, true, Reset},
		{CaptureIR, false, ShiftIR},
		{ShiftIR, true, Exit1IR},
		{Exit1IR, true, UpdateIR},
		{Exit1IR, false, PauseIR},
		{PauseIR, true, Exit2IR},
		{Exit2IR, false, ShiftIR},
		{Exit2IR, true, UpdateIR},
		{UpdateIR, true, SelectDR},
		{UpdateIR, false, RunIdle},
	}
	for _, c := range cases {
		if got := Next(c.from, c.tms); got != c.want {
			t.Errorf("Next(%s, %v) = %s, want %s", c.from, c.tms, got, c.want)
		}
	}
}
