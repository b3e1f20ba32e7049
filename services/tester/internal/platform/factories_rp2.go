// services/tester/internal/platform/factories_rp2.go
//go:build rp2040

package platform

import (
	"device/rp"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"dramtest-go/services/tester/internal/pins"
	"dramtest-go/services/tester/internal/platform/boards"
	"dramtest-go/services/tester/internal/refresh"
	"dramtest-go/x/logx"
	"dramtest-go/x/timex"
)

// Default configures the GPIOs of board b and returns the hardware platform.
func Default(b boards.Board) (*Platform, error) {
	if err := b.Pins.Validate(); err != nil {
		return nil, err
	}
	var port pins.Port = newGPIOPort(b.Pins)
	attachUARTLog(b.Pins)
	if b.Pins.Shifted {
		spi := machine.SPI0
		if err := spi.Configure(machine.SPIConfig{
			Frequency: b.SPIFrequencyHz,
			SCK:       machine.SPI0_SCK_PIN,
			SDO:       machine.SPI0_SDO_PIN,
		}); err != nil {
			return nil, err
		}
		latch := machine.Pin(b.Pins.Latch)
		latch.Configure(machine.PinConfig{Mode: machine.PinOutput})
		port = pins.NewShiftBus(port, spi, latch.Set)
	}

	settle := b.Settle
	return &Platform{
		Board:      b,
		Foreground: port,
		Interrupt:  port,
		Timer:      refresh.NewTimer(),
		Settle:     func() { timex.SpinFor(settle) },
	}, nil
}

// attachUARTLog mirrors log lines to UART1 next to USB CDC. The pins must
// be a UART1 function pair (GP4/5, GP8/9, GP20/21 or GP24/25).
func attachUARTLog(m pins.Map) {
	if !m.LogUART {
		return
	}
	u := uartx.UART1
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.Pin(m.LogTX),
		RX:       machine.Pin(m.LogRX),
	}); err != nil {
		println("Warn: uart1 log sink unavailable")
		return
	}
	logx.SetSink(u)
}

// gpioPort drives discrete lines through machine.Pin and the address bus
// through the SIO set/clear registers, so each bus bit changes at most once.
type gpioPort struct {
	lines   [pins.NumLines]machine.Pin
	addr    [pins.AddrWidth]uint32 // bit masks
	busMask uint32
}

func newGPIOPort(m pins.Map) *gpioPort {
	p := &gpioPort{}
	for l := pins.Line(0); l < pins.NumLines; l++ {
		pin := machine.Pin(m.Lines[l])
		p.lines[l] = pin
		if l == pins.DOut {
			pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
			continue
		}
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		// Strobes and WE idle high; DIn and the LED start low.
		pin.Set(l == pins.RAS || l == pins.CAS || l == pins.WE)
	}
	if !m.Shifted {
		for i, n := range m.Addr {
			machine.Pin(n).Configure(machine.PinConfig{Mode: machine.PinOutput})
			p.addr[i] = 1 << uint(n)
			p.busMask |= p.addr[i]
		}
	}
	return p
}

func (p *gpioPort) Set(l pins.Line, v pins.Level) { p.lines[l].Set(bool(v)) }

func (p *gpioPort) Get(l pins.Line) pins.Level { return pins.Level(p.lines[l].Get()) }

func (p *gpioPort) SetAddress(v uint8) {
	var set uint32
	for i, m := range p.addr {
		if v&(1<<uint(i)) != 0 {
			set |= m
		}
	}
	rp.SIO.GPIO_OUT_CLR.Set(p.busMask &^ set)
	rp.SIO.GPIO_OUT_SET.Set(set)
}
