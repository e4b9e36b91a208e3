package device

import (
	"io"

	"rvos/kernel"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. If the driver init code
	// needs to log some output, it can use the supplied io.Writer in
	// conjunction with a call to kfmt.Fprintf.
	DriverInit(io.Writer) *kernel.Error
}

// CharDevice is implemented by byte-oriented serial devices that can move
// single bytes in both directions.
type CharDevice interface {
	Driver
	io.Writer
	io.ByteWriter

	// Put writes a single byte to the device, blocking until the device
	// can accept it.
	Put(b byte)

	// Get returns the next pending input byte. It does not block; the
	// boolean return is false when no byte is pending.
	Get() (byte, bool)
}

// ProbeFn is a function that scans for the presence of a particular piece of
// hardware and returns a driver for it.
type ProbeFn func() Driver
