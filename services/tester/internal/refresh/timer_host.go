//go:build !rp2040

package refresh

import (
	"sync"
	"time"

	"dramtest-go/errcode"
)

// TickerTimer stands in for the hardware countdown on the host. Expiries are
// delivered from its own goroutine, which is what makes them asynchronous to
// the foreground.
type TickerTimer struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewTimer() *TickerTimer { return &TickerTimer{} }

func (t *TickerTimer) Start(period time.Duration, fire func()) error {
	if period <= 0 {
		return errcode.InvalidPeriod
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "timer.start", Msg: "already running"}
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go func(stop, done chan struct{}) {
		defer close(done)
		tick := time.NewTicker(period)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				fire()
			}
		}
	}(t.stop, t.done)
	return nil
}

// Stop disarms the timer and waits for an in-flight expiry to return.
func (t *TickerTimer) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
