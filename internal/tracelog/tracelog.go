// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tracelog implements a severity-gated logger for the bridge.
//
// It replaces the level-gated printf macros of the original firmware
// (dtm_info/dtm_debug/dtm_dump_dmi/dtm_dump_tap/dtm_dump_tck) with a logger
// instance that is constructed once and passed in, instead of relying on a
// build-time #define.
package tracelog

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/maruel/ansi256"
	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
)

// Level is a logging severity. Levels are cumulative: enabling a level
// also enables every less verbose level listed before it.
type Level int

// Severities, from least to most verbose.
const (
	// Off disables all logging.
	Off Level = iota
	// Info reports bring-up and connection milestones.
	Info
	// Debug reports bridge detail (identity registers read at connect, TAR
	// cache hits and writes).
	Debug
	// DumpDMI reports every DMI read/write the virtual DTM dispatches.
	DumpDMI
	// DumpTAP reports every TAP state-entry effect (CAPTURE/UPDATE).
	DumpTAP
	// DumpTCK reports every TCK edge processed, TMS/TDI in, TDO out.
	DumpTCK
)

var tags = map[Level]string{
	Info:    "INFO",
	Debug:   "DEBUG",
	DumpDMI: "DMI",
	DumpTAP: "TAP",
	DumpTCK: "TCK",
}

var tagColor = map[Level]color.NRGBA{
	Info:    {R: 0x20, G: 0xa0, B: 0xff, A: 0xff},
	Debug:   {R: 0xa0, G: 0xa0, B: 0xa0, A: 0xff},
	DumpDMI: {R: 0x20, G: 0xd0, B: 0x40, A: 0xff},
	DumpTAP: {R: 0xe0, G: 0xa0, B: 0x20, A: 0xff},
	DumpTCK: {R: 0xe0, G: 0x40, B: 0x40, A: 0xff},
}

// Logger gates writes by severity level and, when writing to a terminal,
// colorizes the severity tag.
type Logger struct {
	level   Level
	out     *log.Logger
	colored bool
}

// New returns a Logger that writes to w, showing every level up to and
// including level.
//
// If w is an *os.File attached to a terminal, ANSI color codes are used for
// the severity tag; otherwise the tag is plain text. This check is the only
// one made: a writer that is not an *os.File, including a wrapper returned
// by NewColorableSink, gets a plain tag.
func New(w io.Writer, level Level) *Logger {
	colored := false
	if f, ok := w.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Logger{
		level:   level,
		out:     log.New(w, "", log.Ltime|log.Lmicroseconds),
		colored: colored,
	}
}

// NewColorableSink wraps os.Stdout with a writer that translates ANSI escape
// codes into Windows console calls when necessary, and is a no-op pass
// through elsewhere.
func NewColorableSink() io.Writer {
	return colorable.NewColorableStdout()
}

func (l *Logger) enabled(level Level) bool {
	return l != nil && l.level >= level
}

func (l *Logger) printf(level Level, format string, args ...interface{}) {
	if !l.enabled(level) {
		return
	}
	tag := tags[level]
	if l.colored {
		tag = ansi256.Default.Block(tagColor[level]) + " " + tag + "\033[0m"
	}
	l.out.Printf("[%s] %s", tag, fmt.Sprintf(format, args...))
}

// Info logs a bring-up or connection milestone.
func (l *Logger) Info(format string, args ...interface{}) { l.printf(Info, format, args...) }

// Debug logs per-transaction detail.
func (l *Logger) Debug(format string, args ...interface{}) { l.printf(Debug, format, args...) }

// DumpDMI logs a DMI read or write dispatched by the virtual DTM.
func (l *Logger) DumpDMI(format string, args ...interface{}) { l.printf(DumpDMI, format, args...) }

// DumpTAP logs a TAP state-entry effect.
func (l *Logger) DumpTAP(format string, args ...interface{}) { l.printf(DumpTAP, format, args...) }

// DumpTCK logs a single TCK edge.
func (l *Logger) DumpTCK(format string, args ...interface{}) { l.printf(DumpTCK, format, args...) }
