// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package backend is a registry of pin-pair backends: concrete drivers that
// open a SWCLK/SWDIO pin pair on some host transport (Linux GPIO character
// device, FTDI MPSSE, ...) and hand back a swd.Pins. A command-line tool
// picks one by name at run time instead of importing every transport
// package directly.
//
// Every backend should register itself from its package init() by calling
// MustRegister().
package backend

import (
	"fmt"
	"sort"
	"sync"

	"periph.io/x/swdjtag/swd"
)

// Backend opens a named pin-pair transport and returns a swd.Pins bound to
// it. Close releases whatever the most recent successful Open acquired.
type Backend interface {
	// String returns the backend's name, as selected on the command line.
	// It must be unique across all registered backends.
	String() string
	// Open acquires the transport and returns a swd.Pins driving it.
	Open(addr string) (swd.Pins, error)
	// Close releases the transport opened by the last successful Open.
	Close() error
}

var (
	mu     sync.Mutex
	byName = map[string]Backend{}
	all    []Backend
)

// Register adds b to the registry. b.String() must be unique; calling
// Register twice with the same name is an error.
func Register(b Backend) error {
	mu.Lock()
	defer mu.Unlock()
	n := b.String()
	if _, ok := byName[n]; ok {
		return fmt.Errorf("backend: %q already registered", n)
	}
	byName[n] = b
	all = append(all, b)
	return nil
}

// MustRegister calls Register and panics on error. This is the function to
// call from a backend package's init().
func MustRegister(b Backend) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

// ByName returns the registered backend with the given name, or nil.
func ByName(name string) Backend {
	mu.Lock()
	defer mu.Unlock()
	return byName[name]
}

// All returns every registered backend, sorted by name.
func All() []Backend {
	mu.Lock()
	defer mu.Unlock()
	out := make(backends, len(all))
	copy(out, all)
	sort.Sort(out)
	return out
}

type backends []Backend

func (b backends) Len() int           { return len(b) }
func (b backends) Less(i, j int) bool { return b[i].String() < b[j].String() }
func (b backends) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }
