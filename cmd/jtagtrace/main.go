// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command jtagtrace replays a captured raw JTAG bit-vector through a
// virtual JTAG-DTM with no real SWD backend behind it, and prints the
// decoded TAP-state and DMI-op transitions as it goes. It is meant for
// offline debugging of a session captured off a logic analyzer.
//
// Input is a text file, one sample per line, three whitespace-separated
// 0/1 fields: TCK TMS TDI. Blank lines and lines starting with '#' are
// skipped.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"periph.io/x/swdjtag/dtm"
	"periph.io/x/swdjtag/internal/tracelog"
)

// regfile is an in-memory DMI register file standing in for a real SWD
// target: every write is remembered, every read returns the last write (or
// zero).
type regfile struct {
	regs map[uint8]uint32
}

func newRegfile() *regfile {
	return &regfile{regs: map[uint8]uint32{}}
}

func (r *regfile) WriteDMI(addr uint8, data uint32) { r.regs[addr] = data }
func (r *regfile) ReadDMI(addr uint8) uint32        { return r.regs[addr] }

func main() {
	idcode := flag.Uint("idcode", 0x0badc0de, "IDCODE to present to JTAG IDCODE scans")
	verbose := flag.Bool("v", false, "enable debug-level tracing")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: jtagtrace [flags] <trace-file>")
		os.Exit(2)
	}

	level := tracelog.Info
	if *verbose {
		level = tracelog.DumpTAP
	}
	logger := tracelog.New(tracelog.NewColorableSink(), level)

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	d := dtm.New(uint32(*idcode), logger)
	d.SetBus(newRegfile())

	lineNo := 0
	lastState := d.State()
	lastIR := d.IR()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var tck, tms, tdi int
		if _, err := fmt.Sscanf(line, "%d %d %d", &tck, &tms, &tdi); err != nil {
			log.Fatalf("line %d: %v", lineNo, err)
		}

		d.SetTMS(tms != 0)
		d.SetTDI(tdi != 0)
		d.SetTCK(tck != 0)

		if st := d.State(); st != lastState {
			logger.Info("line %d: TAP %s -> %s\n", lineNo, lastState, st)
			lastState = st
		}
		if ir := d.IR(); ir != lastIR {
			logger.Info("line %d: IR -> %#02x\n", lineNo, ir)
			lastIR = ir
		}
	}
	if err := sc.Err(); err != nil {
		log.Fatal(err)
	}
}
