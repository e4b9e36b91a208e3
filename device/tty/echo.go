// Package tty implements the interactive byte-echo terminal the kernel drops
// into once the allocator and the UART are up.
package tty

import (
	"rvos/device"
	"rvos/kernel/kfmt"
)

// escState tracks progress through a multi-byte escape sequence.
type escState uint8

const (
	// escNone means no escape sequence is in progress.
	escNone escState = iota

	// escSeen means an ESC byte arrived and the parser expects '['.
	escSeen

	// escCSI means ESC '[' arrived and the parser expects the final byte.
	escCSI
)

// Echo reads bytes from a character device and echoes them back,
// interpreting backspace, carriage-return/line-feed and CSI arrow-key
// sequences. The device is polled, so an escape sequence may arrive split
// across loop iterations; the parser carries its progress between bytes
// instead of blocking on the follow-up reads.
type Echo struct {
	dev   device.CharDevice
	state escState
}

// NewEcho returns an echo terminal attached to the supplied device.
func NewEcho(dev device.CharDevice) *Echo {
	return &Echo{dev: dev}
}

// Loop polls the device forever, feeding every received byte through the
// terminal state machine. It never returns.
func (e *Echo) Loop() {
	for {
		if b, ok := e.dev.Get(); ok {
			e.HandleByte(b)
		}
	}
}

// HandleByte advances the terminal state machine by one input byte.
func (e *Echo) HandleByte(b byte) {
	switch e.state {
	case escSeen:
		if b == '[' {
			e.state = escCSI
		} else {
			// Not a CSI sequence; swallow the byte like the ESC
			// that preceded it.
			e.state = escNone
		}
	case escCSI:
		e.state = escNone
		switch b {
		case 'A':
			kfmt.Fprintf(e.dev, "That's the up arrow!\r\n")
		case 'B':
			kfmt.Fprintf(e.dev, "That's the down arrow!\r\n")
		case 'C':
			kfmt.Fprintf(e.dev, "That's the right arrow!\r\n")
		case 'D':
			kfmt.Fprintf(e.dev, "That's the left arrow!\r\n")
		default:
			kfmt.Fprintf(e.dev, "That's something else.....\r\n")
		}
	default:
		switch b {
		case 0x08:
			// Erase the previous cell: back up, blank it, back up.
			kfmt.Fprintf(e.dev, "\b \b")
		case '\r', '\n':
			kfmt.Fprintf(e.dev, "\r\n")
		case 0x1b:
			e.state = escSeen
		default:
			kfmt.Fprintf(e.dev, "%c", b)
		}
	}
}
