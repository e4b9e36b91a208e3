package kfmt

import (
	"bytes"
	"errors"
	"testing"

	"rvos/kernel"
	"rvos/kernel/cpu"
)

func TestPanic(t *testing.T) {
	defer func() {
		cpuHaltFn = cpu.Halt
		outputSink = nil
	}()

	var cpuHaltCalled bool
	cpuHaltFn = func() {
		cpuHaltCalled = true
	}

	t.Run("with kernel error", func(t *testing.T) {
		cpuHaltCalled = false
		var buf bytes.Buffer
		outputSink = &buf

		err := &kernel.Error{Module: "page_alloc", Message: "double-free detected"}
		Panic(err)

		exp := "\r\n-----------------------------------\r\n[page_alloc] unrecoverable error: double-free detected\r\n*** kernel panic: hart halted ***\r\n-----------------------------------\r\n"
		if got := buf.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called by Panic")
		}
	})

	t.Run("with nil error", func(t *testing.T) {
		cpuHaltCalled = false
		var buf bytes.Buffer
		outputSink = &buf

		Panic(nil)

		exp := "\r\n-----------------------------------\r\n*** kernel panic: hart halted ***\r\n-----------------------------------\r\n"
		if got := buf.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called by Panic")
		}
	})

	t.Run("with string", func(t *testing.T) {
		cpuHaltCalled = false
		var buf bytes.Buffer
		outputSink = &buf

		Panic("unexpected trap")

		exp := "\r\n-----------------------------------\r\n[rt] unrecoverable error: unexpected trap\r\n*** kernel panic: hart halted ***\r\n-----------------------------------\r\n"
		if got := buf.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}
	})

	t.Run("with generic error", func(t *testing.T) {
		cpuHaltCalled = false
		var buf bytes.Buffer
		outputSink = &buf

		Panic(errors.New("something broke"))

		exp := "\r\n-----------------------------------\r\n[rt] unrecoverable error: something broke\r\n*** kernel panic: hart halted ***\r\n-----------------------------------\r\n"
		if got := buf.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}
	})
}
