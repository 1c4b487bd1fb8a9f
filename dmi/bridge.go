// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dmi implements the bridge between the RISC-V Debug Module
// Interface and an Arm-style SWD Debug Access Port: bringing up the SW-DP
// from cold, selecting a Mem-AP, and translating each DMI read/write into a
// word-sized Mem-AP access with TAR (Transfer Address Register) caching.
package dmi

import (
	"errors"

	"periph.io/x/swdjtag/internal/tracelog"
	"periph.io/x/swdjtag/swd"
)

// DP register numbers (bank-relative, 2 bits).
const (
	dpDPIDR     = 0
	dpABORT     = 0
	dpCTRLSTAT  = 1
	dpSELECT    = 2
	dpRDBUF     = 3
	dpTARGETSEL = 3
)

// AP register numbers (bank-relative, 2 bits).
const (
	apCSW = 0
	apTAR = 1
	apDRW = 3
	apIDR = 3
)

// AP bank selecting the IDR within the AP's register window.
const apBankIDR = 0xf

// CTRL/STAT bits, ADIv5.2 §B2.3.2.
const (
	ctrlStatCSYSPWRUPACK = 1 << 31
	ctrlStatCSYSPWRUPREQ = 1 << 30
	ctrlStatCDBGPWRUPACK = 1 << 29
	ctrlStatCDBGPWRUPREQ = 1 << 28
	ctrlStatORUNDETECT   = 1 << 0
)

// abortClearAll clears every sticky error flag in the ABORT register.
const abortClearAll = 0x1e

// pwrupAckTimeout bounds how many CTRL/STAT polls bring-up waits for the
// power domains to acknowledge.
const pwrupAckTimeout = 10000

// apidrExpectedMask/apidrExpectedData identify a Mem-AP of class 8
// (Mem-AP), type 2 (APB2/APB3) in the AP IDR register.
const (
	apidrExpectedMask = 0x1e00f
	apidrExpectedData = 0x10002
)

// linkDownUp is the fixed SWJ-DP selection sequence driven at the start of
// every connect attempt: a line reset, the SWD-to-Dormant sequence, a
// dormant-state LFSR wake pattern, the SWD activation code, and a final
// line reset. The exact bit pattern is mandated by ADIv5.2 IHI0031F figure
// B5-4 and is reproduced here byte-for-byte from the reference firmware,
// not reconstructed from the prose description.
var linkDownUp = []byte{
	// Line reset: at least 50 cycles (56 here).
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	// SWD-to-Dormant.
	0xbc, 0xe3,
	// Start of Dormant-to-SWD: resync the LFSR.
	0xff,
	// A 0-bit, then 127 bits of LFSR output.
	0x92, 0xf3, 0x09, 0x62,
	0x95, 0x2d, 0x85, 0x86,
	0xe9, 0xaf, 0xdd, 0xe3,
	0xa2, 0x0e, 0xbc, 0x19,
	// Four zero-bits, 8 bits of select sequence, four more zeroes.
	0xa0, 0x01,
	// A line reset (50 cyc high) then at least 2 zeroes.
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x03,
}

// linkDownUpBits is the number of meaningful bits in linkDownUp; the buffer
// is padded to a byte boundary and the last 4 bits of padding are not part
// of the sequence.
var linkDownUpBits = len(linkDownUp)*8 - 4

// ErrConnectFailed is returned by Connect when bring-up does not complete:
// a non-OK ACK, a PWRUPACK timeout, or an AP IDR mismatch. The caller is
// expected to retry the entire sequence from the top.
var ErrConnectFailed = errors.New("dmi: connect failed")

// Stats reports bridge activity for diagnostics; it carries no semantics
// the bridge itself depends on.
type Stats struct {
	ConnectAttempts int
	TARWrites       int
	DRWWrites       int
	DRWReads        int
}

// Bridge is the SWD-DMI bridge (C3). It owns the SWD pin pair exclusively
// for the lifetime of the session and presents a dtm.Bus to the virtual
// JTAG-DTM.
type Bridge struct {
	tx        *swd.Transaction
	targetsel uint32
	apsel     uint8
	log       *tracelog.Logger

	tarValid bool
	tarCache uint32

	stats Stats
}

// New returns a Bridge driving tx. targetsel of 0 skips the TARGETSEL
// multi-drop selection step.
func New(tx *swd.Transaction, targetsel uint32, apsel uint8, log *tracelog.Logger) *Bridge {
	return &Bridge{
		tx:        tx,
		targetsel: targetsel,
		apsel:     apsel,
		log:       log,
	}
}

// Stats returns a snapshot of bridge activity counters.
func (b *Bridge) Stats() Stats {
	return b.stats
}

// Connect brings up the SW-DP from cold: dormant/SWD selection, optional
// TARGETSEL, DPIDR readback, ABORT clear, power-up request and poll, AP IDR
// validation, and leaving SELECT pointed at the Mem-AP's CSW/TAR/DRW bank.
//
// The TAR cache is invalidated unconditionally at the start of every
// attempt, successful or not.
func (b *Bridge) Connect() error {
	b.stats.ConnectAttempts++
	b.tarValid = false

	if b.log != nil {
		b.log.Info("connect targetsel=%#08x apsel=%d\n", b.targetsel, b.apsel)
	}

	b.tx.LineReset(linkDownUp, linkDownUpBits)

	if b.targetsel != 0 {
		b.tx.TargetSelect(b.targetsel)
	}

	data, status := b.tx.Read(swd.DP, dpDPIDR)
	if status != swd.OK {
		if b.log != nil {
			b.log.Info("DPIDR read failed: %s\n", status)
		}
		return ErrConnectFailed
	}
	if b.log != nil {
		b.log.Debug("DPIDR = %#08x\n", data)
	}

	if status = b.tx.Write(swd.DP, dpABORT, abortClearAll); status != swd.OK {
		return ErrConnectFailed
	}

	if status = b.tx.Write(swd.DP, dpSELECT, 0); status != swd.OK {
		return ErrConnectFailed
	}

	const pwrReq = ctrlStatCSYSPWRUPREQ | ctrlStatCDBGPWRUPREQ
	const pwrAck = ctrlStatCSYSPWRUPACK | ctrlStatCDBGPWRUPACK
	if status = b.tx.Write(swd.DP, dpCTRLSTAT, pwrReq|ctrlStatORUNDETECT); status != swd.OK {
		return ErrConnectFailed
	}

	ok := false
	for i := 0; i < pwrupAckTimeout; i++ {
		data, status = b.tx.Read(swd.DP, dpCTRLSTAT)
		if status != swd.OK {
			return ErrConnectFailed
		}
		if data&pwrAck == pwrAck {
			ok = true
			break
		}
	}
	if !ok {
		if b.log != nil {
			b.log.Info("PWRUPACK timed out\n")
		}
		return ErrConnectFailed
	}

	if status = b.tx.Write(swd.DP, dpSELECT, apBankIDR<<4|uint32(b.apsel)<<24); status != swd.OK {
		return ErrConnectFailed
	}
	if _, status = b.tx.Read(swd.AP, apIDR); status != swd.OK {
		return ErrConnectFailed
	}
	data, status = b.tx.Read(swd.DP, dpRDBUF)
	if status != swd.OK {
		return ErrConnectFailed
	}
	if data&apidrExpectedMask != apidrExpectedData {
		if b.log != nil {
			b.log.Info("bad APIDR: %#08x\n", data)
		}
		return ErrConnectFailed
	}
	if b.log != nil {
		b.log.Debug("APIDR = %#08x\n", data)
	}

	if status = b.tx.Write(swd.DP, dpSELECT, uint32(b.apsel)<<24); status != swd.OK {
		return ErrConnectFailed
	}
	return nil
}

// setTAR writes the Mem-AP's TAR register to addr unless the cache already
// holds addr, invalidated only by Connect.
func (b *Bridge) setTAR(addr uint32) {
	if b.tarValid && b.tarCache == addr {
		if b.log != nil {
			b.log.Debug("TAR cache hit\n")
		}
		return
	}
	if b.log != nil {
		b.log.Debug("TAR <- %#08x\n", addr)
	}
	_ = b.tx.Write(swd.AP, apTAR, addr)
	b.tarValid = true
	b.tarCache = addr
	b.stats.TARWrites++
}

// WriteDMI implements dtm.Bus: resolves TAR then writes DRW = data. The DMI
// address is word-sized in the RISC-V sense; the Mem-AP wants a byte
// address, hence the left shift by 2.
func (b *Bridge) WriteDMI(addr uint8, data uint32) {
	byteAddr := uint32(addr) << 2
	b.setTAR(byteAddr)
	_ = b.tx.Write(swd.AP, apDRW, data)
	b.stats.DRWWrites++
}

// ReadDMI implements dtm.Bus: resolves TAR, issues a posted DRW read (which
// returns the stale previous value), then reads RDBUF to collect the
// result that read actually produced.
func (b *Bridge) ReadDMI(addr uint8) uint32 {
	byteAddr := uint32(addr) << 2
	b.setTAR(byteAddr)
	_, _ = b.tx.Read(swd.AP, apDRW)
	data, _ := b.tx.Read(swd.DP, dpRDBUF)
	b.stats.DRWReads++
	return data
}
