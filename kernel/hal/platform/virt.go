// Package platform describes the physical memory map of the qemu riscv64
// virt machine, based on qemu's hw/riscv/virt.c:
//
//	00001000 -- boot ROM, provided by qemu
//	02000000 -- CLINT
//	0c000000 -- PLIC
//	10000000 -- uart0
//	10001000 -- virtio disk
//	80000000 -- boot ROM jumps here in machine mode; kernel loaded here
package platform

import "rvos/kernel/mem"

const (
	// Uart0Base is the MMIO base address of the first 16550 UART.
	Uart0Base = uintptr(0x1000_0000)

	// RAMBase is the physical address where RAM begins and the boot ROM
	// hands over control.
	RAMBase = uintptr(0x8000_0000)

	// DefaultHeapStart is the heap base used when the rt0 code does not
	// supply linker-provided bounds: 16Mb above RAMBase, clear of the
	// kernel image, its stacks and the rt0 scratch space.
	DefaultHeapStart = RAMBase + 16*uintptr(mem.Mb)

	// DefaultHeapSize is the matching default heap length.
	DefaultHeapSize = 64 * mem.Mb
)
