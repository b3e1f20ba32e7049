// services/tester/internal/pins/pins.go
package pins

import (
	"dramtest-go/errcode"
)

// Level is the logical value of a data or control line.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Line identifies a discrete signal role. The address bus is not a Line.
type Line uint8

const (
	RAS Line = iota
	CAS
	WE
	DIn  // data into the DRAM (MCU output)
	DOut // data out of the DRAM (MCU input)
	LED
	NumLines
)

func (l Line) String() string {
	switch l {
	case RAS:
		return "ras"
	case CAS:
		return "cas"
	case WE:
		return "we"
	case DIn:
		return "din"
	case DOut:
		return "dout"
	case LED:
		return "led"
	default:
		return "unknown"
	}
}

// Port is the single-bit and bus access the protocol engine needs.
// Every call has an immediate, synchronous electrical side effect.
type Port interface {
	// Set drives exactly one output line without disturbing the others.
	Set(line Line, level Level)
	// Get samples one input line.
	Get(line Line) Level
	// SetAddress drives the whole shared address bus.
	SetAddress(v uint8)
}

// AddrWidth is the number of multiplexed address lines.
const AddrWidth = 8

// Map holds the physical pin numbers for every line and address bit.
type Map struct {
	Lines [NumLines]int
	Addr  [AddrWidth]int // Addr[0] is A0

	// Shifted boards drive the address bus through a shift register; Addr
	// is then unused and Latch is the register's storage clock.
	Shifted bool
	Latch   int

	// LogUART routes the log mirror to a UART on LogTX/LogRX. Those pins
	// are claimed like any other line.
	LogUART bool
	LogTX   int
	LogRX   int
}

// Validate rejects negative numbers and pins claimed twice.
func (m Map) Validate() error {
	seen := make(map[int]string, int(NumLines)+AddrWidth)
	claim := func(n int, who string) error {
		if n < 0 {
			return &errcode.E{C: errcode.UnknownPin, Op: "pins.validate", Msg: who}
		}
		if prev, ok := seen[n]; ok {
			return &errcode.E{C: errcode.PinInUse, Op: "pins.validate", Msg: who + " collides with " + prev}
		}
		seen[n] = who
		return nil
	}
	for l := Line(0); l < NumLines; l++ {
		if err := claim(m.Lines[l], l.String()); err != nil {
			return err
		}
	}
	if m.LogUART {
		if err := claim(m.LogTX, "uart tx"); err != nil {
			return err
		}
		if err := claim(m.LogRX, "uart rx"); err != nil {
			return err
		}
	}
	if m.Shifted {
		return claim(m.Latch, "latch")
	}
	for i, n := range m.Addr {
		if err := claim(n, "a"+string(rune('0'+i))); err != nil {
			return err
		}
	}
	return nil
}
