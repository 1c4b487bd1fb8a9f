// Copyright 2026 The swdjtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

import (
	"fmt"
	"log"
	"testing"
)

func ExampleAll() {
	fmt.Print("GPIO pins available:\n")
	for _, pin := range All() {
		fmt.Printf("- %s: %s\n", pin, pin.Function())
	}
}

func ExampleByName() {
	p := ByName("TDI")
	if p == nil {
		log.Fatal("Failed to find TDI")
	}
	fmt.Printf("%s: %s\n", p, p.Function())
}

func ExampleByNumber() {
	p := ByNumber(0)
	if p == nil {
		log.Fatal("Failed to find #0")
	}
	fmt.Printf("%s: %s\n", p, p.Function())
}

func ExamplePinIn() {
	p := ByNumber(0)
	if p == nil {
		log.Fatal("Failed to find #0")
	}
	if err := p.In(Down, Rising); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s is %s\n", p, p.Read())
	for p.WaitForEdge(-1) {
		fmt.Printf("%s went %s\n", p, High)
	}
}

func ExamplePinOut() {
	p := ByNumber(0)
	if p == nil {
		log.Fatal("Failed to find #0")
	}
	if err := p.Out(High); err != nil {
		log.Fatal(err)
	}
}

func TestInvalid(t *testing.T) {
	if INVALID.In(Float, None) != errInvalidPin {
		t.Fail()
	}
}
