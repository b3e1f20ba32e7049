// services/tester/internal/selftest/selftest.go
package selftest

import (
	"context"
	"time"

	"dramtest-go/errcode"
	"dramtest-go/services/tester/internal/pins"
)

const (
	Rows = 256
	Cols = 256

	DefaultMaxRetries = 3
)

// Cycles is the protocol engine as seen by the sweep.
type Cycles interface {
	Write(row, col uint8, v pins.Level)
	Read(row, col uint8) pins.Level
}

// Flags is the device state the sweep consumes and updates.
type Flags interface {
	TakeRefreshed() bool
	MarkFailed()
	MarkOK()
}

// Pass names one sweep over the address space.
type Pass uint8

const (
	PassHigh Pass = iota
	PassLow
	PassInterleaved
)

func (p Pass) String() string {
	switch p {
	case PassHigh:
		return "high"
	case PassLow:
		return "low"
	default:
		return "interleaved"
	}
}

type Config struct {
	// MaxRetries bounds how often one write/read pair is repeated after a
	// refresh preempted it. A single retry is the normal case.
	MaxRetries int
	// Interleaved adds a pass that checks both polarities per cell before
	// moving to the next address.
	Interleaved bool
	// ProgressEvery calls Progress after every N rows; 0 disables it.
	ProgressEvery int
	Progress      func(p Pass, row int)
}

type Address struct{ Row, Col uint8 }

// Report is the sweep's internal detail. Only the verdict leaves the device.
type Report struct {
	Mismatches uint32
	Retries    uint32
	Unsettled  uint32 // pairs still preempted on their last allowed attempt
	FirstFail  Address
	Failed     bool
	RowFails   [Rows]uint32
	Passes     []Pass
	Elapsed    time.Duration
}

func (r *Report) OK() bool { return r.Mismatches == 0 }

func (r *Report) fail(row, col uint8) {
	if !r.Failed {
		r.FirstFail = Address{row, col}
		r.Failed = true
	}
	r.Mismatches++
	r.RowFails[row]++
}

type Tester struct {
	cyc   Cycles
	flags Flags
	cfg   Config
}

func New(c Cycles, f Flags, cfg Config) *Tester {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &Tester{cyc: c, flags: f, cfg: cfg}
}

// Run sweeps every cell with both polarities, row-major, and leaves MEM_OK
// asserted iff no mismatch was recorded. A mismatch does not stop the sweep.
// Cancelling ctx aborts between rows; the verdict is then left untouched.
func (t *Tester) Run(ctx context.Context) (Report, error) {
	var rep Report
	t0 := time.Now()

	// Drop a refresh that happened before the sweep, e.g. during warm-up.
	t.flags.TakeRefreshed()

	passes := []Pass{PassHigh, PassLow}
	if t.cfg.Interleaved {
		passes = append(passes, PassInterleaved)
	}
	for _, p := range passes {
		if err := t.sweep(ctx, p, &rep); err != nil {
			rep.Elapsed = time.Since(t0)
			return rep, err
		}
		rep.Passes = append(rep.Passes, p)
	}

	if rep.OK() {
		t.flags.MarkOK()
	}
	rep.Elapsed = time.Since(t0)
	return rep, nil
}

func (t *Tester) sweep(ctx context.Context, p Pass, rep *Report) error {
	for row := 0; row < Rows; row++ {
		if err := ctx.Err(); err != nil {
			return &errcode.E{C: errcode.Cancelled, Op: "selftest." + p.String(), Err: err}
		}
		r := uint8(row)
		for col := 0; col < Cols; col++ {
			c := uint8(col)
			switch p {
			case PassHigh:
				t.check(r, c, pins.High, rep)
			case PassLow:
				t.check(r, c, pins.Low, rep)
			default:
				t.check(r, c, pins.High, rep)
				t.check(r, c, pins.Low, rep)
			}
		}
		if t.cfg.Progress != nil && t.cfg.ProgressEvery > 0 && (row+1)%t.cfg.ProgressEvery == 0 {
			t.cfg.Progress(p, row)
		}
	}
	return nil
}

// Check runs one verified write/read pair and records a mismatch.
func (t *Tester) Check(row, col uint8, want pins.Level) (pins.Level, Report) {
	var rep Report
	got := t.check(row, col, want, &rep)
	return got, rep
}

func (t *Tester) check(row, col uint8, want pins.Level, rep *Report) pins.Level {
	got := t.pair(row, col, want, rep)
	if got != want {
		rep.fail(row, col)
		t.flags.MarkFailed()
	}
	return got
}

// pair writes v and reads it back, repeating while a refresh has landed
// since the previous check. The refreshed flag is consumed here and only here.
func (t *Tester) pair(row, col uint8, v pins.Level, rep *Report) pins.Level {
	for attempt := 0; ; attempt++ {
		t.cyc.Write(row, col, v)
		got := t.cyc.Read(row, col)
		if !t.flags.TakeRefreshed() {
			return got
		}
		if attempt == t.cfg.MaxRetries {
			rep.Unsettled++
			return got
		}
		rep.Retries++
	}
}
