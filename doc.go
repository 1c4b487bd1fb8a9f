// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package swdjtag is a RISC-V JTAG-DTM to Arm SWD-DMI probe bridge.
//
// It terminates a raw JTAG bit stream from a host debugger as a virtual
// RISC-V 0.13.2 Debug Transport Module, and re-issues every Debug Module
// Interface transaction as an SWD transaction against an Arm-style Debug
// Access Port on the target SoC. The probe firmware impersonates a
// JTAG-speaking DTM on one side while acting as a small SWD host on the
// other.
//
// → tap/ implements the IEEE 1149.1 TAP state machine.
//
// → dtm/ implements the virtual RISC-V JTAG-DTM: instruction register,
// shift register, and DMI/DTMCS register semantics, stepped by raw TCK/TMS/
// TDI/TDO edges.
//
// → swd/ implements the SWD line driver and transaction layer: packet
// framing, ACK decoding, and the dormant/SWD bring-up sequence.
//
// → dmi/ implements the bridge itself: SW-DP/Mem-AP connection sequencing
// and DMI-to-Mem-AP address translation, with TAR caching.
//
// → host/ contains pin-driver backends (Linux GPIO character device, FTDI
// MPSSE-over-USB) that the bridge drives through narrow capability
// interfaces; neither backend knows anything about JTAG, SWD or DMI.
//
// → cmd/ contains bring-up and tracing tools built on top of the bridge.
package swdjtag // import "periph.io/x/swdjtag"
