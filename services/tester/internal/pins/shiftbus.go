package pins

import (
	"tinygo.org/x/drivers"
)

// ShiftBus drives the address bus through a 74HC595 on an SPI bus and
// leaves the discrete lines to the wrapped Port. The latch line is pulsed
// once the byte is clocked out so the outputs change together.
type ShiftBus struct {
	Port
	spi   drivers.SPI
	latch func(bool)
	buf   [1]byte
}

func NewShiftBus(p Port, spi drivers.SPI, latch func(bool)) *ShiftBus {
	latch(false)
	return &ShiftBus{Port: p, spi: spi, latch: latch}
}

// SetAddress shifts v out MSB first and latches it onto QA..QH.
func (s *ShiftBus) SetAddress(v uint8) {
	s.buf[0] = v
	// A failed transfer leaves the previous address latched; the resulting
	// mismatch is caught by the sweep.
	_ = s.spi.Tx(s.buf[:], nil)
	s.latch(true)
	s.latch(false)
}
