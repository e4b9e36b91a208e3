package main

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/pkg/errors"

	"rvos/kernel/mem"
	"rvos/kernel/mem/pmm/allocator"
)

// sim owns the simulated heap. The backing slice keeps the memory that the
// allocator's descriptor-table overlay points into alive; it is
// over-allocated by one page so the heap start can be page-aligned.
type sim struct {
	backing []byte
	alloc   allocator.PageAllocator
}

func newSim(heapSize mem.Size) (*sim, error) {
	s := &sim{backing: make([]byte, int(heapSize)+int(mem.PageSize))}

	heapStart := mem.Align(uintptr(unsafe.Pointer(&s.backing[0])), uintptr(mem.PageSize))
	if err := s.alloc.Init(heapStart, heapSize); err != nil {
		return nil, errors.Wrap(err, "heap init failed")
	}

	return s, nil
}

// exercise runs a scripted allocation pattern and verifies what the
// allocator hands back. It leaves the heap empty on success.
func (s *sim) exercise(trace bool, w io.Writer) error {
	tracef := func(format string, args ...interface{}) {
		if trace {
			fmt.Fprintf(w, format, args...)
		}
	}

	pageSize := uintptr(mem.PageSize)

	a := s.alloc.Alloc(3)
	b := s.alloc.Alloc(2)
	tracef("alloc(3) -> 0x%x\nalloc(2) -> 0x%x\n", a, b)
	if a == 0 || b == 0 {
		return errors.New("allocation failed on an empty heap")
	}
	if b != a+3*pageSize {
		return errors.Errorf("expected back-to-back runs; got 0x%x and 0x%x", a, b)
	}

	s.alloc.Dealloc(a)
	c := s.alloc.Alloc(2)
	tracef("dealloc(0x%x)\nalloc(2) -> 0x%x\n", a, c)
	if c != a {
		return errors.Errorf("expected first-fit reuse of 0x%x; got 0x%x", a, c)
	}

	z := s.alloc.Zalloc(4)
	tracef("zalloc(4) -> 0x%x\n", z)
	if z == 0 {
		return errors.New("zalloc failed")
	}
	base := uintptr(unsafe.Pointer(&s.backing[0]))
	for off := uintptr(0); off < 4*pageSize; off++ {
		if s.backing[z-base+off] != 0 {
			return errors.Errorf("zalloc returned a dirty byte at offset %d", off)
		}
	}

	s.alloc.Dealloc(b)
	s.alloc.Dealloc(c)
	s.alloc.Dealloc(z)
	tracef("dealloc(0x%x)\ndealloc(0x%x)\ndealloc(0x%x)\n", b, c, z)

	// With every run freed, the free spans must have coalesced back into
	// the whole heap.
	full := s.alloc.Alloc(s.alloc.NumPages())
	if full == 0 {
		return errors.New("full-heap allocation failed after freeing every run")
	}
	tracef("alloc(%d) -> 0x%x (full heap)\n", uint64(s.alloc.NumPages()), full)
	s.alloc.Dealloc(full)

	return nil
}
