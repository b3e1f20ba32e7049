package indicator

import (
	"context"
	"time"

	"dramtest-go/services/tester/internal/pins"
)

// DefaultBlink is the half-period of the FAIL pattern.
const DefaultBlink = 100 * time.Millisecond

// Run holds the indicator in the state selected by ok for the rest of
// execution: solid high for OK, a symmetric blink for FAIL. It only returns
// when ctx is cancelled.
func Run(ctx context.Context, port pins.Port, ok bool, blink time.Duration) {
	port.Set(pins.LED, pins.High)
	if ok {
		<-ctx.Done()
		return
	}
	if blink <= 0 {
		blink = DefaultBlink
	}
	t := time.NewTicker(blink)
	defer t.Stop()
	level := pins.High
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			level = !level
			port.Set(pins.LED, level)
		}
	}
}
