// services/tester/internal/refresh/scheduler.go
package refresh

import (
	"sync/atomic"
	"time"

	"dramtest-go/errcode"
)

// DefaultPeriod is the gap between the end of one sweep and the start of the
// next. The timer is re-armed after each sweep, so a row waits period plus
// one sweep between refreshes; 1.7 ms leaves room for a 256 us sweep inside
// a 2 ms chip refresh interval.
const DefaultPeriod = 1700 * time.Microsecond

// Refresher is the one cycle the handler drives.
type Refresher interface {
	Refresh()
}

// Timer is a periodic hardware countdown. fire is called from interrupt
// context on every expiry and must not block.
type Timer interface {
	Start(period time.Duration, fire func()) error
	Stop()
}

// Scheduler runs a full refresh sweep on every timer expiry. A sweep is never
// nested: a trigger that arrives while one is running is dropped and counted.
type Scheduler struct {
	eng    Refresher
	timer  Timer
	period time.Duration
	mask   func(func())
	run    func() // s.sweep, bound once so Fire does not allocate

	busy    atomic.Bool
	sweeps  atomic.Uint32
	dropped atomic.Uint32
	lastNs  atomic.Int64
}

type Option func(*Scheduler)

// WithMask wraps every sweep, e.g. to hold off a simulated foreground.
// Hardware interrupts need none.
func WithMask(mask func(func())) Option { return func(s *Scheduler) { s.mask = mask } }

func New(eng Refresher, t Timer, period time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{eng: eng, timer: t, period: period}
	for _, o := range opts {
		o(s)
	}
	s.run = s.sweep
	return s
}

// Start arms the countdown. The first sweep happens one period later.
func (s *Scheduler) Start() error {
	if s.period <= 0 {
		return &errcode.E{C: errcode.InvalidPeriod, Op: "refresh.start"}
	}
	if s.timer == nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "refresh.start", Msg: "no timer"}
	}
	return s.timer.Start(s.period, s.Fire)
}

func (s *Scheduler) Stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

// Fire is the interrupt handler body: one complete sweep.
func (s *Scheduler) Fire() {
	if !s.busy.CompareAndSwap(false, true) {
		s.dropped.Add(1)
		return
	}
	if s.mask != nil {
		s.mask(s.run)
	} else {
		s.sweep()
	}
	s.sweeps.Add(1)
	s.busy.Store(false)
}

func (s *Scheduler) sweep() {
	t0 := time.Now()
	s.eng.Refresh()
	s.lastNs.Store(int64(time.Since(t0)))
}

type Stats struct {
	Sweeps    uint32
	Dropped   uint32
	LastSweep time.Duration
}

func (s *Scheduler) Stats() Stats {
	return Stats{
		Sweeps:    s.sweeps.Load(),
		Dropped:   s.dropped.Load(),
		LastSweep: time.Duration(s.lastNs.Load()),
	}
}

// CheckBudget verifies that a row is refreshed within maxInterval. The timer
// is re-armed once a sweep of rows cycles of rowTime has finished, so the
// worst case interval is period plus one sweep.
func CheckBudget(rows int, rowTime, period, maxInterval time.Duration) error {
	if rows <= 0 || rowTime <= 0 || maxInterval <= 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "refresh.budget"}
	}
	if period <= 0 || period > maxInterval {
		return &errcode.E{C: errcode.InvalidPeriod, Op: "refresh.budget", Msg: "period exceeds refresh interval"}
	}
	if period+time.Duration(rows)*rowTime > maxInterval {
		return &errcode.E{C: errcode.RefreshBudget, Op: "refresh.budget"}
	}
	return nil
}
