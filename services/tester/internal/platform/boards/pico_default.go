//go:build !board_pico_shift

package boards

import (
	"time"

	"dramtest-go/services/tester/internal/pins"
)

// Selected is a Pico with the address bus on GP0..GP7, the control lines on
// GP8..GP12, the onboard LED as the indicator and the UART1 log mirror on
// GP20/GP21.
var Selected = Board{
	Name: "pico_default",
	Pins: pins.Map{
		Lines: [pins.NumLines]int{
			pins.RAS:  8,
			pins.CAS:  9,
			pins.WE:   10,
			pins.DIn:  11,
			pins.DOut: 12,
			pins.LED:  25,
		},
		Addr:    [pins.AddrWidth]int{0, 1, 2, 3, 4, 5, 6, 7},
		LogUART: true,
		LogTX:   20,
		LogRX:   21,
	},
	Settle:       time.Microsecond,
	MaxRefresh:   2 * time.Millisecond,
	PowerOnDelay: 500 * time.Microsecond,
	WarmUpSweeps: 8,
	WarmUpGap:    2 * time.Millisecond,
}
