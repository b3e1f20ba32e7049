// Package logx writes prefixed log lines to the console with println
// semantics and, when set, to an extra sink such as a UART.
package logx

import (
	"io"
	"sync"

	"dramtest-go/x/conv"
)

var (
	mu   sync.Mutex
	sink io.Writer
	buf  []byte
)

// SetSink adds w as a second destination for every line; nil removes it.
func SetSink(w io.Writer) {
	mu.Lock()
	sink = w
	mu.Unlock()
}

func Info(parts ...string)  { emit("Info:", parts) }
func Warn(parts ...string)  { emit("Warn:", parts) }
func Error(parts ...string) { emit("Error:", parts) }

func emit(level string, parts []string) {
	mu.Lock()
	defer mu.Unlock()
	buf = append(buf[:0], level...)
	for _, p := range parts {
		buf = append(buf, ' ')
		buf = append(buf, p...)
	}
	buf = append(buf, '\n')
	print(string(buf))
	if sink != nil {
		_, _ = sink.Write(buf)
	}
}

// U formats an unsigned number for a log part.
func U[T ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint](n T) string {
	var b [20]byte
	return string(conv.AppendUint(b[:0], uint64(n)))
}

// I formats a signed number for a log part.
func I[T ~int8 | ~int16 | ~int32 | ~int64 | ~int](n T) string {
	var b [21]byte
	return string(conv.AppendInt(b[:0], int64(n)))
}

// Addr formats a row/column pair as rr:cc in hex.
func Addr(row, col uint8) string {
	var b [5]byte
	s := conv.AppendHex8(b[:0], row)
	s = append(s, ':')
	return string(conv.AppendHex8(s, col))
}
