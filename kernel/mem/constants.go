package mem

// The kernel targets the rv64 qemu-virt machine which uses Sv39-style 4K
// pages. The constants are not build-tagged: host-side tooling and tests
// simulate the same target geometry.
const (
	// PointerShift is equal to log2(unsafe.Sizeof(uintptr)). The pointer
	// size for this architecture is defined as (1 << PointerShift).
	PointerShift = 3

	// PageShift is equal to log2(PageSize). This constant is used when
	// we need to convert a physical address to a page number (shift right
	// by PageShift) and vice-versa.
	PageShift = 12

	// PageSize defines the system's page size in bytes.
	PageSize = Size(1 << PageShift)
)

// Align returns v rounded up to the next multiple of n. n must be a power
// of 2.
func Align(v, n uintptr) uintptr {
	return (v + (n - 1)) & ^(n - 1)
}
