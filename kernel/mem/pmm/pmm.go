// Package pmm contains the basic types used by the physical memory manager.
// A page frame is a fixed PageSize-byte region of the heap; every usable
// frame is tracked by a one-byte descriptor holding the flags defined here.
package pmm

import (
	"math"

	"rvos/kernel/mem"
)

// Frame describes an index into the usable page frame area of the heap.
type Frame uintptr

const (
	// InvalidFrame is returned by page allocators when they fail to
	// reserve the requested frame.
	InvalidFrame = Frame(math.MaxUint64)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Offset returns the byte offset of this frame from the start of the usable
// page area.
func (f Frame) Offset() uintptr {
	return uintptr(f) << mem.PageShift
}

// Flag describes the contents of a frame descriptor. A descriptor may only
// contain the flag bits defined below; a descriptor with FlagTaken clear is
// free and must have FlagLast clear as well.
type Flag uint8

const (
	// FlagTaken marks a frame that is part of a live allocation.
	FlagTaken Flag = 1 << 0

	// FlagLast marks the final frame of an allocation run.
	FlagLast Flag = 1 << 1
)

// IsTaken returns true if the descriptor marks its frame as allocated.
func (f Flag) IsTaken() bool {
	return f&FlagTaken != 0
}

// IsFree is the opposite of IsTaken.
func (f Flag) IsFree() bool {
	return !f.IsTaken()
}

// IsLast returns true if the descriptor marks the final frame of a run.
func (f Flag) IsLast() bool {
	return f&FlagLast != 0
}
