package main

import "rvos/kernel/kmain"

// heapStart and heapSize are populated by the rt0 initialization code with
// the HEAP_START and HEAP_SIZE symbols exported by the linker script.
var heapStart, heapSize uintptr

// main is the only Go symbol that is visible (exported) from the rt0
// initialization code. This function works as a trampoline for calling the
// actual kernel entrypoint (kmain.Kmain) and is intentionally defined to
// prevent the Go compiler from optimizing away the actual kernel code as it
// is not aware of the presence of the rt0 code.
//
// Global variables are passed as arguments to Kmain to prevent the compiler
// from inlining the actual call and removing Kmain from the generated object
// file.
//
// main is not expected to return. If it does, the rt0 code will halt the
// hart.
func main() {
	kmain.Kmain(heapStart, heapSize)
}
