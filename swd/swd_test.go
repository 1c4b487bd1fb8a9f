// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package swd

import (
	"testing"
	"time"
)

// fakePins is an in-memory Pins implementation for tests: a queue of bits
// to deliver on GetSWDIO, and a record of every bit driven via
// SetSWDIOOut.
type fakePins struct {
	toRead  []bool
	readPos int
	driven  []bool
	dir     bool
	clk     bool
}

func (f *fakePins) SetSWCLK(high bool)   { f.clk = high }
func (f *fakePins) SetSWDIODir(out bool) { f.dir = out }
func (f *fakePins) SetSWDIOOut(high bool) {
	f.driven = append(f.driven, high)
}
func (f *fakePins) GetSWDIO() bool {
	if f.readPos >= len(f.toRead) {
		return false
	}
	b := f.toRead[f.readPos]
	f.readPos++
	return b
}
func (f *fakePins) Delay(time.Duration) {}

func bitsFromByte(b byte, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = b&(1<<uint(i)) != 0
	}
	return out
}

// TestHeaderParity covers invariant 7: header parity is the XOR of
// APnDP, RnW, A2, A3 for every combination.
func TestHeaderParity(t *testing.T) {
	for _, port := range []Port{DP, AP} {
		for _, rnw := range []bool{false, true} {
			for addr := uint8(0); addr < 4; addr++ {
				h := header(port, rnw, addr)
				var apNdp, rnwBit byte
				if port == AP {
					apNdp = 1
				}
				if rnw {
					rnwBit = 1
				}
				want := (addr>>1 ^ addr&1) ^ rnwBit ^ apNdp
				got := (h >> 5) & 1
				if got != want {
					t.Errorf("header(%s, rnw=%v, addr=%d) parity = %d, want %d", port, rnw, addr, got, want)
				}
			}
		}
	}
}

// TestHeaderByteIdentity covers scenario S5: building a header for
// (AP, read, addr=0x2) must produce byte 0xB7.
func TestHeaderByteIdentity(t *testing.T) {
	got := header(AP, true, 0x2)
	if got != 0xB7 {
		t.Fatalf("header(AP, read, 0x2) = %#02x, want 0xb7", got)
	}
}

func TestReadDecodesACKAndData(t *testing.T) {
	pins := &fakePins{}
	// status=OK (0b001), then 32 bits of data 0x12345678 LSB-first, then 1
	// parity bit.
	pins.toRead = append(pins.toRead, bitsFromByte(0b001, 3)...)
	pins.toRead = append(pins.toRead, bitsFromByte(0x78, 8)...)
	pins.toRead = append(pins.toRead, bitsFromByte(0x56, 8)...)
	pins.toRead = append(pins.toRead, bitsFromByte(0x34, 8)...)
	pins.toRead = append(pins.toRead, bitsFromByte(0x12, 8)...)
	pins.toRead = append(pins.toRead, false)

	tx := NewTransaction(NewLine(pins, DefaultRate))
	data, status := tx.Read(DP, 0)
	if status != OK {
		t.Fatalf("status = %s, want OK", status)
	}
	if data != 0x12345678 {
		t.Fatalf("data = %#08x, want 0x12345678", data)
	}
}

func TestReadDecodesWait(t *testing.T) {
	pins := &fakePins{}
	pins.toRead = append(pins.toRead, bitsFromByte(0b010, 3)...)
	pins.toRead = append(pins.toRead, make([]bool, 33)...)
	tx := NewTransaction(NewLine(pins, DefaultRate))
	_, status := tx.Read(AP, 0)
	if status != WAIT {
		t.Fatalf("status = %s, want WAIT", status)
	}
}

func TestReadDecodesUnknownAsDisconnected(t *testing.T) {
	pins := &fakePins{}
	pins.toRead = append(pins.toRead, bitsFromByte(0b011, 3)...)
	pins.toRead = append(pins.toRead, make([]bool, 33)...)
	tx := NewTransaction(NewLine(pins, DefaultRate))
	_, status := tx.Read(AP, 0)
	if status != Disconnected {
		t.Fatalf("status = %s, want DISCONNECTED", status)
	}
}

func TestWriteDrivesDataAfterACK(t *testing.T) {
	pins := &fakePins{}
	pins.toRead = append(pins.toRead, bitsFromByte(0b001, 3)...)
	tx := NewTransaction(NewLine(pins, DefaultRate))
	status := tx.Write(AP, 1, 0xA5A5A5A5)
	if status != OK {
		t.Fatalf("status = %s, want OK", status)
	}
	// 8 header bits + 32 data bits + 1 parity bit driven.
	if len(pins.driven) != 41 {
		t.Fatalf("drove %d bits, want 41", len(pins.driven))
	}
}
