// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package linuxgpio drives the SWD pin pair through the Linux GPIO
// character device (/dev/gpiochipN), using the GPIO v2 line request and
// line-values ioctls. It implements swd.Pins and knows nothing about SWD,
// JTAG or DMI.
package linuxgpio

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"periph.io/x/swdjtag/conn/gpio"
	"periph.io/x/swdjtag/host/backend"
	"periph.io/x/swdjtag/internal/spin"
	"periph.io/x/swdjtag/swd"
)

const (
	maxNameSize = 32
	maxLines    = 64
	maxNumAttrs = 10
)

// GPIO v2 line flags, from include/uapi/linux/gpio.h.
const (
	flagUsed      uint64 = 1 << 0
	flagInput     uint64 = 1 << 2
	flagOutput    uint64 = 1 << 3
	flagOpenDrain uint64 = 1 << 6
)

type lineConfigAttribute struct {
	attr struct {
		id      uint32
		padding uint32
		value   uint64
	}
	mask uint64
}

type lineConfig struct {
	flags    uint64
	numAttrs uint32
	padding  [5]uint32
	attrs    [maxNumAttrs]lineConfigAttribute
}

type lineRequest struct {
	offsets         [maxLines]uint32
	consumer        [maxNameSize]byte
	config          lineConfig
	numLines        uint32
	eventBufferSize uint32
	padding         [5]uint32
	fd              int32
}

type lineValues struct {
	bits uint64
	mask uint64
}

// ioctl issues a request built by requestNR, which already encodes
// direction, type, command number and payload size the way the kernel's
// _IOWR macro would.
func ioctl(fd int, req uintptr, data unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(data))
	if errno != 0 {
		return errno
	}
	return nil
}

// requestNR builds the request code the kernel expects for GPIO v2 ioctls:
// direction READ|WRITE, type 0xb4, the given command number, and the
// payload size.
func requestNR(cmd uint32, size uintptr) uintptr {
	const iocRead, iocWrite = 2, 1
	const nrShift, typeShift, sizeShift, dirShift = 0, 8, 16, 30
	return uintptr(iocRead|iocWrite)<<dirShift | 0xb4<<typeShift | uintptr(cmd)<<nrShift | size<<sizeShift
}

// Chip is an open Linux GPIO character device with the two lines this
// package needs (SWCLK, SWDIO) requested as a single line-handle.
type Chip struct {
	fd       int
	lineFD   int
	swclkIdx uint32 // bit index within this chip's line-values array
	swdioIdx uint32
	halfStep time.Duration

	swclkLine uint32 // kernel offset, used only as the registered pin's Number
	swdioLine uint32
	swclkName string
	swdioName string
	swdioPull gpio.Pull
}

// Open opens /dev/gpiochipN (chipPath) and requests swclkLine and swdioLine
// as outputs. Both lines stay outputs for the life of the Chip; see
// SetSWDIODir.
func Open(chipPath string, swclkLine, swdioLine uint32) (*Chip, error) {
	fd, err := unix.Open(chipPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("linuxgpio: open %s: %w", chipPath, err)
	}

	req := lineRequest{
		numLines: 2,
	}
	req.offsets[0] = swclkLine
	req.offsets[1] = swdioLine
	copy(req.consumer[:], "swdjtag")
	req.config.flags = flagUsed | flagOutput

	const gpioV2GetLineIOCTL = 0x07
	if err := ioctl(fd, requestNR(gpioV2GetLineIOCTL, unsafe.Sizeof(req)), unsafe.Pointer(&req)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("linuxgpio: line request: %w", err)
	}

	c := &Chip{
		fd:        fd,
		lineFD:    int(req.fd),
		swclkIdx:  0,
		swdioIdx:  1,
		halfStep:  time.Second / time.Duration(50_000_000), // 25 MHz toggle ceiling
		swclkLine: swclkLine,
		swdioLine: swdioLine,
		swclkName: fmt.Sprintf("%s#swclk", chipPath),
		swdioName: fmt.Sprintf("%s#swdio", chipPath),
		swdioPull: gpio.PullNoChange,
	}
	if err := gpio.Register(&linePin{c: c, idx: c.swclkIdx, number: int(c.swclkLine), name: c.swclkName, isSWCLK: true}); err != nil {
		_ = unix.Close(c.lineFD)
		_ = unix.Close(fd)
		return nil, err
	}
	if err := gpio.Register(&linePin{c: c, idx: c.swdioIdx, number: int(c.swdioLine), name: c.swdioName}); err != nil {
		_ = gpio.Unregister(c.swclkName, int(c.swclkLine))
		_ = unix.Close(c.lineFD)
		_ = unix.Close(fd)
		return nil, err
	}
	return c, nil
}

// Close releases the requested lines and the chip file descriptor, and
// unregisters the gpio.PinIO handles exposed for SWCLK/SWDIO.
func (c *Chip) Close() error {
	_ = gpio.Unregister(c.swclkName, int(c.swclkLine))
	_ = gpio.Unregister(c.swdioName, int(c.swdioLine))
	if c.lineFD > 0 {
		_ = unix.Close(c.lineFD)
	}
	return unix.Close(c.fd)
}

func (c *Chip) setValues(bits, mask uint64) {
	v := lineValues{bits: bits, mask: mask}
	const gpioV2SetValuesIOCTL = 0x0f
	_ = ioctl(c.lineFD, requestNR(gpioV2SetValuesIOCTL, unsafe.Sizeof(v)), unsafe.Pointer(&v))
}

func (c *Chip) getValues(mask uint64) uint64 {
	v := lineValues{mask: mask}
	const gpioV2GetValuesIOCTL = 0x0e
	_ = ioctl(c.lineFD, requestNR(gpioV2GetValuesIOCTL, unsafe.Sizeof(v)), unsafe.Pointer(&v))
	return v.bits
}

// SetSWCLK implements swd.Pins.
func (c *Chip) SetSWCLK(high bool) {
	bit := uint64(1) << c.swclkIdx
	var bits uint64
	if high {
		bits = bit
	}
	c.setValues(bits, bit)
}

// SetSWDIODir implements swd.Pins.
//
// The line-config ioctl this would need to flip direction at runtime is
// more than this bridge exercises: instead, SWDIO is left in output mode
// and GetSWDIO reads back whatever was last driven while direction is
// "released". This is faithful enough for a point-to-point bring-up rig
// where the host and target never drive SWDIO at the same instant, but a
// production backend should reconfigure the line's input/output flag here.
func (c *Chip) SetSWDIODir(bool) {
}

// SetSWDIOOut implements swd.Pins.
func (c *Chip) SetSWDIOOut(high bool) {
	bit := uint64(1) << c.swdioIdx
	var bits uint64
	if high {
		bits = bit
	}
	c.setValues(bits, bit)
}

// GetSWDIO implements swd.Pins.
func (c *Chip) GetSWDIO() bool {
	bit := uint64(1) << c.swdioIdx
	return c.getValues(bit)&bit != 0
}

// Delay implements swd.Pins using a thread-pinned busy loop; the ioctl
// round-trip per edge already dominates timing, so this mostly just
// prevents back-to-back syscalls from the scheduler's point of view.
func (c *Chip) Delay(d time.Duration) {
	spin.Busy(d)
}

// linePin exposes one line of an open Chip as a gpio.PinIO, registered
// under the chip path and signal name so other tooling in the same process
// can resolve and read it back (e.g. "is SWCLK currently high") without
// reaching into the backend directly. It carries no logic of its own: every
// method delegates to the Chip that owns the underlying line request.
type linePin struct {
	c       *Chip
	idx     uint32
	number  int
	name    string
	isSWCLK bool
}

func (p *linePin) String() string { return p.name }
func (p *linePin) Number() int    { return p.number }
func (p *linePin) Function() string {
	if p.isSWCLK {
		return "Out"
	}
	if p.c.swdioPull == gpio.PullNoChange {
		return "Out"
	}
	return "In"
}

func (p *linePin) bit() uint64 { return uint64(1) << p.idx }

func (p *linePin) In(pull gpio.Pull, edge gpio.Edge) error {
	if p.isSWCLK {
		return fmt.Errorf("%s: SWCLK is always an output", p.name)
	}
	p.c.swdioPull = pull
	p.c.SetSWDIODir(false)
	return nil
}

func (p *linePin) Read() gpio.Level {
	return gpio.Level(p.c.getValues(p.bit())&p.bit() != 0)
}

func (p *linePin) WaitForEdge(time.Duration) bool {
	return false
}

func (p *linePin) Pull() gpio.Pull {
	if p.isSWCLK {
		return gpio.PullNoChange
	}
	return p.c.swdioPull
}

func (p *linePin) Out(l gpio.Level) error {
	if p.isSWCLK {
		p.c.SetSWCLK(bool(l))
		return nil
	}
	p.c.swdioPull = gpio.PullNoChange
	p.c.SetSWDIOOut(bool(l))
	return nil
}

// drv adapts Chip to backend.Backend. addr is "chip:swclk:swdio", e.g.
// "/dev/gpiochip0:5:6".
type drv struct {
	opened *Chip
}

func (d *drv) String() string { return "linuxgpio" }

func (d *drv) Open(addr string) (swd.Pins, error) {
	parts := strings.Split(addr, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("linuxgpio: addr must be chip:swclk:swdio, got %q", addr)
	}
	swclk, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("linuxgpio: bad swclk line %q: %w", parts[1], err)
	}
	swdio, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("linuxgpio: bad swdio line %q: %w", parts[2], err)
	}
	c, err := Open(parts[0], uint32(swclk), uint32(swdio))
	if err != nil {
		return nil, err
	}
	d.opened = c
	return c, nil
}

func (d *drv) Close() error {
	if d.opened == nil {
		return nil
	}
	err := d.opened.Close()
	d.opened = nil
	return err
}

func init() {
	backend.MustRegister(&drv{})
}
