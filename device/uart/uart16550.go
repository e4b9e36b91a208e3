// Package uart provides a driver for the memory-mapped 16550-style UART
// exposed by the qemu riscv64 virt machine.
package uart

import (
	"io"
	"unsafe"

	"rvos/device"
	"rvos/kernel"
	"rvos/kernel/cpu"
	"rvos/kernel/hal/platform"
)

// 16550 register offsets from the MMIO base. Each register is one byte wide.
// With the DLAB bit set in LCR, offsets 0 and 1 address the divisor latch
// instead of RBR/THR and IER.
const (
	regRBR = 0 // receiver buffer (read)
	regTHR = 0 // transmitter holding (write)
	regIER = 1 // interrupt enable
	regFCR = 2 // FIFO control (write)
	regLCR = 3 // line control
	regDLL = 0 // divisor latch LSB (DLAB=1)
	regDLM = 1 // divisor latch MSB (DLAB=1)
	regLSR = 5 // line status
)

const (
	lcrWordLen8   = 1<<0 | 1<<1
	lcrDLAB       = 1 << 7
	fcrFIFOEnable = 1 << 0
	ierRxReady    = 1 << 0
	lsrDataReady  = 1 << 0
	lsrTxIdle     = 1 << 5
)

// divisor selects 2400 baud given the 22.729 MHz clock feeding the NS16550A
// on the virt board: ceil(22_729_000 / (2400 * 16)).
const divisor = 592

// Uart drives a memory-mapped 16550 UART. Instances must be obtained via New.
type Uart struct {
	base uintptr
}

// New returns a Uart driver for the device at the supplied MMIO base. The
// base is injected rather than hardwired so tests can point the driver at an
// ordinary block of memory.
func New(base uintptr) *Uart {
	return &Uart{base: base}
}

// readReg performs a volatile read of the register at the supplied offset.
// The fences keep the hart from reordering MMIO accesses around ordinary
// memory traffic.
func (u *Uart) readReg(off uintptr) byte {
	cpu.MemFenceRW()
	val := *(*byte)(unsafe.Pointer(u.base + off))
	cpu.MemFenceRW()
	return val
}

// writeReg performs a volatile write of the register at the supplied offset.
func (u *Uart) writeReg(off uintptr, val byte) {
	cpu.MemFenceRW()
	*(*byte)(unsafe.Pointer(u.base + off)) = val
	cpu.MemFenceRW()
}

// Init programs the device: baud divisor first (while DLAB is set the
// divisor latch shadows RBR/IER), then 8-bit words, FIFO and the
// receiver-ready interrupt bit.
func (u *Uart) Init() {
	u.writeReg(regLCR, lcrDLAB)
	u.writeReg(regDLL, divisor&0xff)
	u.writeReg(regDLM, divisor>>8)
	u.writeReg(regLCR, lcrWordLen8)
	u.writeReg(regFCR, fcrFIFOEnable)
	u.writeReg(regIER, ierRxReady)
}

// Put writes a single byte to the transmitter, spinning until the holding
// register is empty.
func (u *Uart) Put(b byte) {
	for u.readReg(regLSR)&lsrTxIdle == 0 {
	}
	u.writeReg(regTHR, b)
}

// Get returns the next received byte. It does not block: the boolean return
// is false when the receiver has nothing pending.
func (u *Uart) Get() (byte, bool) {
	if u.readReg(regLSR)&lsrDataReady == 0 {
		return 0, false
	}
	return u.readReg(regRBR), true
}

// Write implements io.Writer so the UART can serve as the kfmt output sink.
func (u *Uart) Write(p []byte) (int, error) {
	for _, b := range p {
		u.Put(b)
	}
	return len(p), nil
}

// WriteByte implements io.ByteWriter.
func (u *Uart) WriteByte(b byte) error {
	u.Put(b)
	return nil
}

// DriverName implements device.Driver.
func (u *Uart) DriverName() string {
	return "uart16550"
}

// DriverVersion implements device.Driver.
func (u *Uart) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit implements device.Driver.
func (u *Uart) DriverInit(_ io.Writer) *kernel.Error {
	u.Init()
	return nil
}

// probeForUart returns a driver for the virt machine's uart0. The device is
// part of the machine definition so no detection handshake is required.
func probeForUart() device.Driver {
	return New(platform.Uart0Base)
}

// HWProbes returns a slice of device.ProbeFn that can be used by the hal
// package to probe for UART device hardware.
func HWProbes() []device.ProbeFn {
	return []device.ProbeFn{
		probeForUart,
	}
}
