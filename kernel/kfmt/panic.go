package kfmt

import (
	"rvos/kernel"
	"rvos/kernel/cpu"
)

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.Halt

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}
)

// Panic outputs the supplied error (if not nil) over the active output sink
// and halts the hart. Calls to Panic never return. Any fatal condition inside
// the kernel, including the page allocator's precondition and corruption
// checks, funnels through here.
func Panic(e interface{}) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		panicString(t)
		return
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	Printf("\r\n-----------------------------------\r\n")
	if err != nil {
		Printf("[%s] unrecoverable error: %s\r\n", err.Module, err.Message)
	}
	Printf("*** kernel panic: hart halted ***")
	Printf("\r\n-----------------------------------\r\n")

	cpuHaltFn()
}

// panicString wraps plain string panics in the shared runtime panic error.
func panicString(msg string) {
	errRuntimePanic.Message = msg
	Panic(errRuntimePanic)
}
