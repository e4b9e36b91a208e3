package cpu

// Halt masks machine interrupts and puts the hart into an endless
// wait-for-interrupt sleep. Calls to Halt never return.
func Halt()

// EnableInterrupts sets the machine interrupt-enable bit in mstatus.
func EnableInterrupts()

// DisableInterrupts clears the machine interrupt-enable bit in mstatus.
func DisableInterrupts()

// MemFenceRW orders all reads and writes issued before the fence ahead of
// those issued after it. MMIO register accesses are wrapped in fences so the
// hart cannot reorder them around ordinary memory traffic.
func MemFenceRW()
