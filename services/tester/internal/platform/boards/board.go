package boards

import (
	"time"

	"dramtest-go/services/tester/internal/pins"
)

// Board describes how a DRAM socket is wired to the MCU and the timing of
// the chip fitted to it. It must not carry test policy (retries, blink).
type Board struct {
	Name string
	Pins pins.Map

	// Chip timing.
	Settle         time.Duration // address setup and strobe width
	MaxRefresh     time.Duration // chip maximum refresh interval
	PowerOnDelay   time.Duration
	WarmUpSweeps   int
	WarmUpGap      time.Duration
	SPIFrequencyHz uint32 // shifted boards only
}
