// Package allocator implements the kernel's physical page frame allocator.
//
// The allocator carves the physical heap region into PageSize frames and
// tracks them with a one-byte descriptor per frame. The descriptor table is
// overlaid on the start of the heap itself; the usable frame area begins at
// the first page boundary above the table. An allocation is a contiguous run
// of frames whose descriptors carry FlagTaken, with FlagLast set only on the
// final frame of the run. Storing the run terminator instead of a length lets
// Dealloc operate from the returned pointer alone, and freed runs coalesce
// implicitly since free descriptors carry no boundary markers.
package allocator

import (
	"io"
	"reflect"
	"unsafe"

	"rvos/kernel"
	"rvos/kernel/kfmt"
	"rvos/kernel/mem"
	"rvos/kernel/mem/pmm"
)

var (
	// FrameAllocator is the PageAllocator instance that serves as the
	// primary allocator for reserving page frames.
	FrameAllocator PageAllocator

	// panicFn is mocked by tests and is automatically inlined by the compiler.
	panicFn = kfmt.Panic

	errHeapStartUnaligned = &kernel.Error{Module: "page_alloc", Message: "heap start is not page-aligned"}
	errHeapSizeUnaligned  = &kernel.Error{Module: "page_alloc", Message: "heap size is not a multiple of the page size"}
	errHeapTooSmall       = &kernel.Error{Module: "page_alloc", Message: "heap region cannot fit any usable frames"}
	errAllocZeroPages     = &kernel.Error{Module: "page_alloc", Message: "Alloc: requested page count must be > 0"}
	errDeallocNilPtr      = &kernel.Error{Module: "page_alloc", Message: "Dealloc: nil pointer"}
	errDeallocBadPtr      = &kernel.Error{Module: "page_alloc", Message: "Dealloc: pointer outside the usable frame area"}
	errDeallocDoubleFree  = &kernel.Error{Module: "page_alloc", Message: "Dealloc: free descriptor before the end of the run (possible double-free)"}
	errDeallocNoRunEnd    = &kernel.Error{Module: "page_alloc", Message: "Dealloc: run does not terminate inside the descriptor table"}
)

// PageAllocator hands out contiguous runs of physical page frames using a
// first-fit scan over the frame descriptor table.
type PageAllocator struct {
	heapStart uintptr
	heapSize  mem.Size

	// allocStart is the page-aligned physical address of frame 0, directly
	// above the descriptor table.
	allocStart uintptr

	// numPages is the number of usable frames, recounted after carving the
	// descriptor table region out of the heap. Descriptors never describe
	// the frames occupied by the table itself.
	numPages uintptr

	// descriptors is an overlay of the descriptor table at heapStart.
	descriptors    []pmm.Flag
	descriptorsHdr reflect.SliceHeader
}

// Init registers the physical heap region [heapStart, heapStart+heapSize),
// zeroes the frame descriptor table at its base and computes the start of the
// usable frame area. It must be called exactly once before any other
// operation.
func (alloc *PageAllocator) Init(heapStart uintptr, heapSize mem.Size) *kernel.Error {
	if heapStart&uintptr(mem.PageSize-1) != 0 {
		return errHeapStartUnaligned
	}
	if heapSize&(mem.PageSize-1) != 0 {
		return errHeapSizeUnaligned
	}

	// One descriptor byte is budgeted per heap frame; the usable area
	// starts at the first page boundary above the table.
	totalPages := uintptr(heapSize >> mem.PageShift)
	alloc.heapStart = heapStart
	alloc.heapSize = heapSize
	alloc.allocStart = mem.Align(heapStart+totalPages, uintptr(mem.PageSize))

	reservedPages := (alloc.allocStart - heapStart) >> mem.PageShift
	if totalPages <= reservedPages {
		return errHeapTooSmall
	}
	alloc.numPages = totalPages - reservedPages

	alloc.descriptorsHdr = reflect.SliceHeader{
		Data: heapStart,
		Len:  int(alloc.numPages),
		Cap:  int(alloc.numPages),
	}
	alloc.descriptors = *(*[]pmm.Flag)(unsafe.Pointer(&alloc.descriptorsHdr))

	for i := range alloc.descriptors {
		alloc.descriptors[i] = 0
	}

	return nil
}

// AllocStart returns the physical address of the first usable frame.
func (alloc *PageAllocator) AllocStart() uintptr {
	return alloc.allocStart
}

// NumPages returns the number of usable frames managed by the allocator.
func (alloc *PageAllocator) NumPages() uintptr {
	return alloc.numPages
}

// Alloc reserves a contiguous run of the requested number of frames and
// returns the physical address of the first one. It returns 0 if no free run
// of that length exists. The contents of the returned frames are undefined.
//
// The scan is first-fit from frame 0. The upper bound is inclusive so that a
// single end-aligned request can fill the heap completely.
func (alloc *PageAllocator) Alloc(pages uintptr) uintptr {
	if pages == 0 {
		panicFn(errAllocZeroPages)
		return 0
	}
	if pages > alloc.numPages {
		return 0
	}

	for i := uintptr(0); i <= alloc.numPages-pages; i++ {
		if alloc.descriptors[i].IsTaken() {
			continue
		}

		found := true
		for j := i; j < i+pages; j++ {
			if alloc.descriptors[j].IsTaken() {
				found = false
				break
			}
		}
		if !found {
			continue
		}

		for k := i; k < i+pages-1; k++ {
			alloc.descriptors[k] = pmm.FlagTaken
		}
		alloc.descriptors[i+pages-1] = pmm.FlagTaken | pmm.FlagLast

		return alloc.allocStart + pmm.Frame(i).Offset()
	}

	return 0
}

// Zalloc behaves like Alloc but zeroes the returned frames. The zeroing is
// performed in machine-word strides; PageSize is a multiple of the word size
// so no tail handling is needed.
func (alloc *PageAllocator) Zalloc(pages uintptr) uintptr {
	ptr := alloc.Alloc(pages)
	if ptr != 0 {
		mem.MemsetWords(ptr, mem.Size(pages)*mem.PageSize)
	}
	return ptr
}

// Dealloc releases the allocation run that starts at ptr. ptr must be a
// pointer previously returned by Alloc or Zalloc that has not been freed
// since. The descriptor walk clears frames up to and including the one
// carrying FlagLast; hitting a free descriptor first means the run was
// already released and is treated as heap corruption.
func (alloc *PageAllocator) Dealloc(ptr uintptr) {
	if ptr == 0 {
		panicFn(errDeallocNilPtr)
		return
	}
	if ptr < alloc.allocStart || ptr >= alloc.heapStart+uintptr(alloc.heapSize) {
		panicFn(errDeallocBadPtr)
		return
	}

	for frame := (ptr - alloc.allocStart) >> mem.PageShift; frame < alloc.numPages; frame++ {
		desc := alloc.descriptors[frame]
		if desc.IsTaken() && !desc.IsLast() {
			alloc.descriptors[frame] = 0
			continue
		}

		if !desc.IsLast() {
			panicFn(errDeallocDoubleFree)
			return
		}

		alloc.descriptors[frame] = 0
		return
	}

	panicFn(errDeallocNoRunEnd)
}

// Dump writes a human-readable table of the live allocation runs to w: one
// line per run with its physical start address, the address of the last byte
// of its final frame and its length, followed by the allocated and free frame
// totals.
func (alloc *PageAllocator) Dump(w io.Writer) {
	kfmt.Fprintf(w, "\r\nPAGE ALLOCATION TABLE\r\n")
	kfmt.Fprintf(w, "META: 0x%x -> 0x%x\r\n", alloc.heapStart, alloc.heapStart+alloc.numPages-1)
	kfmt.Fprintf(w, "PHYS: 0x%x -> 0x%x\r\n", alloc.allocStart, alloc.allocStart+pmm.Frame(alloc.numPages).Offset()-1)
	kfmt.Fprintf(w, "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~\r\n")

	var allocated uintptr
	for frame := uintptr(0); frame < alloc.numPages; frame++ {
		if !alloc.descriptors[frame].IsTaken() {
			continue
		}

		// Walk to the end of the run; physical addresses are derived
		// from frame indices.
		start := frame
		for !alloc.descriptors[frame].IsLast() && frame < alloc.numPages-1 {
			frame++
		}

		runPages := frame - start + 1
		allocated += runPages
		kfmt.Fprintf(w, "0x%x => 0x%x: %3d page(s)\r\n",
			alloc.allocStart+pmm.Frame(start).Offset(),
			alloc.allocStart+pmm.Frame(frame+1).Offset()-1,
			uint64(runPages),
		)
	}

	kfmt.Fprintf(w, "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~\r\n")
	kfmt.Fprintf(w, "Allocated: %6d pages (%10d bytes)\r\n", uint64(allocated), uint64(allocated)<<mem.PageShift)
	free := alloc.numPages - allocated
	kfmt.Fprintf(w, "Free     : %6d pages (%10d bytes)\r\n\r\n", uint64(free), uint64(free)<<mem.PageShift)
}

// Init sets up the kernel physical page frame allocation sub-system on the
// supplied heap region and prints its geometry.
func Init(heapStart uintptr, heapSize mem.Size) *kernel.Error {
	if err := FrameAllocator.Init(heapStart, heapSize); err != nil {
		return err
	}

	kfmt.Printf("[page_alloc] heap: 0x%x - 0x%x (%dKb)\r\n", heapStart, heapStart+uintptr(heapSize)-1, uint64(heapSize/mem.Kb))
	kfmt.Printf("[page_alloc] frames: %d x %dKb starting at 0x%x\r\n",
		uint64(FrameAllocator.NumPages()), uint64(mem.PageSize/mem.Kb), FrameAllocator.AllocStart())
	return nil
}

// Alloc reserves a contiguous run of frames from the frame allocator.
func Alloc(pages uintptr) uintptr {
	return FrameAllocator.Alloc(pages)
}

// Zalloc reserves a contiguous run of zeroed frames from the frame allocator.
func Zalloc(pages uintptr) uintptr {
	return FrameAllocator.Zalloc(pages)
}

// Dealloc releases an allocation run previously returned by Alloc or Zalloc.
func Dealloc(ptr uintptr) {
	FrameAllocator.Dealloc(ptr)
}

// Dump prints the frame allocator's allocation table to the active output
// sink.
func Dump() {
	FrameAllocator.Dump(kfmt.GetOutputSink())
}
