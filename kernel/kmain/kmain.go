package kmain

import (
	"rvos/device/tty"
	"rvos/kernel"
	"rvos/kernel/hal"
	"rvos/kernel/hal/platform"
	"rvos/kernel/kfmt"
	"rvos/kernel/mem"
	"rvos/kernel/mem/pmm/allocator"
)

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "echo loop returned"}

// Kmain is the actual kernel entrypoint. It is reached via the main
// trampoline in machine mode with interrupts disabled, after the rt0
// initialization code has set up a minimal g0 struct. The heap bounds are
// read from the linker script; zero bounds select the qemu-virt defaults.
//
// Kmain initializes the page frame allocator and the UART, prints the boot
// banner and then services the echo terminal. It is not expected to return;
// if it does, the rt0 code will halt the hart.
//
//go:noinline
func Kmain(heapStart, heapSize uintptr) {
	if heapStart == 0 {
		heapStart = platform.DefaultHeapStart
	}
	if heapSize == 0 {
		heapSize = uintptr(platform.DefaultHeapSize)
	}

	if err := allocator.Init(heapStart, mem.Size(heapSize)); err != nil {
		kfmt.Panic(err)
	}

	hal.DetectHardware()

	kfmt.Printf("This is my operating system!\r\n")
	kfmt.Printf("Start typing and I'll echo it back. Backspace and the arrow keys work too.\r\n")

	allocator.Dump()

	if cons := hal.ActiveConsole(); cons != nil {
		tty.NewEcho(cons).Loop()
	}

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	kfmt.Panic(errKmainReturned)
}
