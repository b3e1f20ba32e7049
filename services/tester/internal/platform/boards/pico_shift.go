//go:build board_pico_shift

package boards

import (
	"time"

	"dramtest-go/services/tester/internal/pins"
)

// Selected is a Pico that drives the address bus through a 74HC595 on SPI0
// (SCK GP18, SDO GP19) latched by GP17, freeing GP0..GP7. The log mirror
// uses UART1 on GP20/GP21.
var Selected = Board{
	Name: "pico_shift",
	Pins: pins.Map{
		Lines: [pins.NumLines]int{
			pins.RAS:  8,
			pins.CAS:  9,
			pins.WE:   10,
			pins.DIn:  11,
			pins.DOut: 12,
			pins.LED:  25,
		},
		Shifted: true,
		Latch:   17,
		LogUART: true,
		LogTX:   20,
		LogRX:   21,
	},
	Settle:         time.Microsecond,
	MaxRefresh:     2 * time.Millisecond,
	PowerOnDelay:   500 * time.Microsecond,
	WarmUpSweeps:   8,
	WarmUpGap:      2 * time.Millisecond,
	SPIFrequencyHz: 8_000_000,
}
