//go:build !riscv64
// +build !riscv64

package cpu

// Stub implementations so packages that reach the CPU through mockable
// function variables can be compiled and tested on a development host. The
// kernel image itself is only ever linked for riscv64.

// Halt is a no-op on non riscv64 builds. Tests that exercise fatal paths
// replace their cpu.Halt hook before triggering them.
func Halt() {}

// EnableInterrupts is a no-op on non riscv64 builds.
func EnableInterrupts() {}

// DisableInterrupts is a no-op on non riscv64 builds.
func DisableInterrupts() {}

// MemFenceRW is a no-op on non riscv64 builds.
func MemFenceRW() {}
