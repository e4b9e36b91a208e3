package mem

import (
	"testing"
	"unsafe"
)

func TestMemset(t *testing.T) {
	// memset with a 0 size should be a no-op
	Memset(uintptr(0), 0x00, 0)

	for pageCount := uint32(1); pageCount <= 10; pageCount++ {
		buf := make([]byte, PageSize<<pageCount)
		for i := 0; i < len(buf); i++ {
			buf[i] = 0xFE
		}

		addr := uintptr(unsafe.Pointer(&buf[0]))
		Memset(addr, 0x00, Size(len(buf)))

		for i := 0; i < len(buf); i++ {
			if got := buf[i]; got != 0x00 {
				t.Errorf("[block with %d pages] expected byte: %d to be 0x00; got 0x%x", pageCount, i, got)
			}
		}
	}
}

func TestMemsetWords(t *testing.T) {
	buf := make([]byte, 4*PageSize)
	for i := 0; i < len(buf); i++ {
		buf[i] = 0xFE
	}

	addr := uintptr(unsafe.Pointer(&buf[0]))
	MemsetWords(addr, Size(len(buf)))

	for i := 0; i < len(buf); i++ {
		if got := buf[i]; got != 0x00 {
			t.Fatalf("expected byte %d to be zeroed; got 0x%x", i, got)
		}
	}
}

func TestAlign(t *testing.T) {
	specs := []struct {
		in, n, exp uintptr
	}{
		{0, 4096, 0},
		{1, 4096, 4096},
		{4095, 4096, 4096},
		{4096, 4096, 4096},
		{4097, 4096, 8192},
		{0x80000100, 4096, 0x80001000},
	}

	for specIndex, spec := range specs {
		if got := Align(spec.in, spec.n); got != spec.exp {
			t.Errorf("[spec %d] expected Align(0x%x, %d) to return 0x%x; got 0x%x", specIndex, spec.in, spec.n, spec.exp, got)
		}
	}
}
