// services/tester/internal/platform/platform.go
package platform

import (
	"dramtest-go/services/tester/internal/dram"
	"dramtest-go/services/tester/internal/pins"
	"dramtest-go/services/tester/internal/platform/boards"
	"dramtest-go/services/tester/internal/refresh"
)

// Platform is everything the tester needs from the target.
type Platform struct {
	Board boards.Board

	// Foreground is the port used by main-line code, Interrupt the same
	// lines as seen from the refresh handler. They are the same value on
	// hardware.
	Foreground pins.Port
	Interrupt  pins.Port

	Timer  refresh.Timer
	Settle dram.Delay
	// Mask wraps each refresh sweep; nil where the hardware already keeps
	// the foreground out.
	Mask func(func())
}

// Options returns the scheduler options the platform requires.
func (p *Platform) Options() []refresh.Option {
	if p.Mask == nil {
		return nil
	}
	return []refresh.Option{refresh.WithMask(p.Mask)}
}
