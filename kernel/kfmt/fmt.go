package kfmt

import (
	"io"
	"unsafe"
)

// maxBufSize defines the buffer size for formatting numbers.
const maxBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numFmtBuf = []byte("01234567890123456789012345678901")

	// singleByte is used as a shared buffer for passing single characters
	// to doWrite.
	singleByte = []byte(" ")

	// earlyPrintBuffer is a ring buffer that stores Printf output emitted
	// before the UART driver is probed and installed as the output sink.
	earlyPrintBuffer ringBuffer

	// outputSink is the io.Writer where Printf sends its output. While nil,
	// output is redirected to earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the target for calls to Printf to w and drains any data
// accumulated in the early print buffer into it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// GetOutputSink returns the io.Writer that currently receives Printf output.
func GetOutputSink() io.Writer {
	return outputSink
}

// Printf provides a minimal Printf implementation that is safe to use at any
// point after the machine comes out of reset. It performs no memory
// allocations.
//
// The following subset of formatting verbs is supported:
//
// Strings:
//              %s the uninterpreted bytes of the string or byte slice
//
// Integers:
//              %o base 8
//              %d base 10
//              %x base 16, with lower-case letters for a-f
//
// Characters:
//              %c the byte value as an ASCII character
//
// Booleans:
//              %t "true" or "false"
//
// Width is specified by an optional decimal number immediately preceding the
// verb. If absent, the width is whatever is necessary to represent the value.
// String and base-10 values are left-padded with spaces; base-8 and base-16
// values are left-padded with zeroes.
//
// Until an output sink is installed via SetOutputSink, output accumulates in
// a ring buffer which is drained into the sink once one appears.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but writes the formatted output to the
// supplied io.Writer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		fmtLen       = len(format)
		nextArgIndex int
	)

	for index := 0; index < fmtLen; {
		ch := format[index]
		if ch != '%' {
			writeByte(w, ch)
			index++
			continue
		}

		index++
		if index >= fmtLen {
			doWrite(w, errNoVerb)
			break
		}

		if format[index] == '%' {
			writeByte(w, '%')
			index++
			continue
		}

		padLen := 0
		for ; index < fmtLen && format[index] >= '0' && format[index] <= '9'; index++ {
			padLen = (padLen * 10) + int(format[index]-'0')
		}

		if index >= fmtLen {
			doWrite(w, errNoVerb)
			break
		}

		verb := format[index]
		index++

		switch verb {
		case 'o', 'd', 'x', 's', 'c', 't':
			if nextArgIndex >= len(args) {
				doWrite(w, errMissingArg)
				continue
			}

			arg := args[nextArgIndex]
			nextArgIndex++

			switch verb {
			case 'o':
				fmtInt(w, arg, 8, padLen)
			case 'd':
				fmtInt(w, arg, 10, padLen)
			case 'x':
				fmtInt(w, arg, 16, padLen)
			case 's':
				fmtString(w, arg, padLen)
			case 'c':
				fmtChar(w, arg)
			case 't':
				fmtBool(w, arg)
			}
		default:
			doWrite(w, errNoVerb)
		}
	}

	// Check for unused args
	for ; nextArgIndex < len(args); nextArgIndex++ {
		doWrite(w, errExtraArg)
	}
}

// fmtBool prints a formatted version of boolean value v.
func fmtBool(w io.Writer, v interface{}) {
	switch bVal := v.(type) {
	case bool:
		if bVal {
			doWrite(w, trueValue)
		} else {
			doWrite(w, falseValue)
		}
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtChar prints the supplied byte or rune value as a single ASCII character.
// Values outside the printable ASCII range are emitted verbatim; the terminal
// on the other end of the UART decides how to render them.
func fmtChar(w io.Writer, v interface{}) {
	switch cVal := v.(type) {
	case byte:
		writeByte(w, cVal)
	case rune:
		writeByte(w, byte(cVal))
	case int:
		writeByte(w, byte(cVal))
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtString prints a formatted version of string or []byte value v, applying
// the padding specified by padLen.
func fmtString(w io.Writer, v interface{}, padLen int) {
	switch castedVal := v.(type) {
	case string:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		// converting the string to a byte slice triggers a memory
		// allocation so this has to be done one byte at a time.
		for i := 0; i < len(castedVal); i++ {
			writeByte(w, castedVal[i])
		}
	case []byte:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		doWrite(w, castedVal)
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtRepeat writes count bytes with value ch.
func fmtRepeat(w io.Writer, ch byte, count int) {
	for i := 0; i < count; i++ {
		writeByte(w, ch)
	}
}

// fmtInt prints out a formatted version of v in the requested base, applying
// the padding specified by padLen. This function supports all built-in signed
// and unsigned integer types and base 8, 10 and 16 output.
func fmtInt(w io.Writer, v interface{}, base, padLen int) {
	var (
		uval uint64
		neg  bool
	)

	switch iVal := v.(type) {
	case uint8:
		uval = uint64(iVal)
	case uint16:
		uval = uint64(iVal)
	case uint32:
		uval = uint64(iVal)
	case uint64:
		uval = iVal
	case uint:
		uval = uint64(iVal)
	case uintptr:
		uval = uint64(iVal)
	case int8:
		neg, uval = iVal < 0, abs64(int64(iVal))
	case int16:
		neg, uval = iVal < 0, abs64(int64(iVal))
	case int32:
		neg, uval = iVal < 0, abs64(int64(iVal))
	case int64:
		neg, uval = iVal < 0, abs64(iVal)
	case int:
		neg, uval = iVal < 0, abs64(int64(iVal))
	default:
		doWrite(w, errWrongArgType)
		return
	}

	padCh := byte(' ')
	if base != 10 {
		padCh = '0'
	}

	if padLen >= maxBufSize {
		padLen = maxBufSize - 1
	}

	// Emit digits right to left into numFmtBuf.
	pos := maxBufSize
	for {
		pos--
		digit := byte(uval % uint64(base))
		if digit < 10 {
			numFmtBuf[pos] = '0' + digit
		} else {
			numFmtBuf[pos] = 'a' + digit - 10
		}

		uval /= uint64(base)
		if uval == 0 {
			break
		}
	}

	if neg && padCh == '0' {
		// Zero padding goes between the sign and the digits.
		for maxBufSize-pos < padLen-1 && pos > 0 {
			pos--
			numFmtBuf[pos] = '0'
		}
		if pos > 0 {
			pos--
			numFmtBuf[pos] = '-'
		}
	} else {
		if neg && pos > 0 {
			pos--
			numFmtBuf[pos] = '-'
		}
		for maxBufSize-pos < padLen && pos > 0 {
			pos--
			numFmtBuf[pos] = padCh
		}
	}

	doWrite(w, numFmtBuf[pos:maxBufSize])
}

// abs64 returns the magnitude of v as an unsigned value.
func abs64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

// writeByte passes a single byte to doWrite via the shared singleByte buffer.
func writeByte(w io.Writer, b byte) {
	singleByte[0] = b
	doWrite(w, singleByte)
}

// doWrite is a proxy that uses the runtime.noescape hack to hide p from the
// compiler's escape analysis. Without this hack, the compiler cannot properly
// detect that p does not escape (due to the call to the yet unknown outputSink
// io.Writer) and plays it safe by flagging it as escaping. This causes all
// calls to Printf to call runtime.convT2E which triggers a memory allocation
// causing the kernel to crash if a call to Printf is made before the Go
// allocator is initialized.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyPrintBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. This function is copied over
// from runtime/stubs.go
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
