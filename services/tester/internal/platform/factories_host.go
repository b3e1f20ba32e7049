// services/tester/internal/platform/factories_host.go
//go:build !rp2040

package platform

import (
	"dramtest-go/services/tester/internal/platform/boards"
	"dramtest-go/services/tester/internal/refresh"
	"dramtest-go/services/tester/internal/sim"
)

// Default runs the tester against a fault-free simulated chip.
func Default(b boards.Board) (*Platform, error) {
	if err := b.Pins.Validate(); err != nil {
		return nil, err
	}
	return Simulated(b, sim.NewChip()), nil
}

// Simulated wires chip behind a simulated CPU. The refresh timer is a host
// ticker whose expiries are gated like an interrupt.
func Simulated(b boards.Board, chip *sim.Chip) *Platform {
	cpu := sim.NewCPU(chip)
	return &Platform{
		Board:      b,
		Foreground: cpu.Foreground(),
		Interrupt:  cpu.Hardware(),
		Timer:      refresh.NewTimer(),
		Mask:       cpu.Interrupt,
	}
}
