package selftest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dramtest-go/errcode"
	"dramtest-go/services/tester/internal/dram"
	"dramtest-go/services/tester/internal/health"
	"dramtest-go/services/tester/internal/pins"
	"dramtest-go/services/tester/internal/refresh"
	"dramtest-go/services/tester/internal/sim"
)

type rig struct {
	chip  *sim.Chip
	cpu   *sim.CPU
	state *health.State
	fg    *dram.Engine
	sched *refresh.Scheduler
}

func newRig() *rig {
	r := &rig{chip: sim.NewChip(), state: health.New(false)}
	r.cpu = sim.NewCPU(r.chip)
	r.fg = dram.New(r.cpu.Foreground(), r.state, nil)
	isr := dram.New(r.cpu.Hardware(), r.state, nil)
	r.sched = refresh.New(isr, nil, refresh.DefaultPeriod, refresh.WithMask(r.cpu.Interrupt))
	r.fg.Init()
	return r
}

// injectAt fires one refresh right before foreground operation n.
func (r *rig) injectAt(n uint64) {
	r.cpu.BeforeOp(func(op uint64) {
		if op == n {
			r.sched.Fire()
		}
	})
}

// tap observes writes issued by the sweep.
type tap struct {
	Cycles
	onWrite func(row, col uint8, v pins.Level)
}

func (c tap) Write(row, col uint8, v pins.Level) {
	if c.onWrite != nil {
		c.onWrite(row, col, v)
	}
	c.Cycles.Write(row, col, v)
}

func TestScenarioA_SingleCellNoRefresh(t *testing.T) {
	r := newRig()
	r.state.MarkOK()
	st := New(r.fg, r.state, Config{})

	got, rep := st.Check(0x00, 0x00, pins.High)

	assert.Equal(t, pins.High, got)
	assert.Zero(t, rep.Mismatches)
	assert.Zero(t, rep.Retries)
	assert.True(t, r.state.IsOK())
}

func TestScenarioB_StuckCellFails(t *testing.T) {
	r := newRig()
	r.chip.Stick(0x12, 0x34, pins.High)
	st := New(r.fg, r.state, Config{})

	rep, err := st.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, r.state.IsOK())
	assert.Equal(t, uint32(1), rep.Mismatches, "only the low pass disagrees")
	assert.True(t, rep.Failed)
	assert.Equal(t, Address{0x12, 0x34}, rep.FirstFail)
	assert.Equal(t, uint32(1), rep.RowFails[0x12])
	assert.Equal(t, []Pass{PassHigh, PassLow}, rep.Passes, "sweep continues after a mismatch")
}

func TestScenarioC_RefreshBeforeReadIsRetried(t *testing.T) {
	r := newRig()
	r.state.MarkOK()
	st := New(r.fg, r.state, Config{})

	// A write is nine operations; the read starts at the tenth.
	r.injectAt(r.cpu.Ops() + 10)
	got, rep := st.Check(0x7F, 0x7F, pins.High)

	assert.Equal(t, pins.High, got)
	assert.Equal(t, uint32(1), rep.Retries)
	assert.Zero(t, rep.Mismatches)
	assert.False(t, r.state.Refreshed(), "flag consumed by the retry")
	assert.True(t, r.state.IsOK())
}

func TestRaceRecoveryDuringFullSweep(t *testing.T) {
	r := newRig()
	fired := false
	cyc := tap{Cycles: r.fg, onWrite: func(row, col uint8, v pins.Level) {
		if fired || row != 0x7F || col != 0x7F || v != pins.High {
			return
		}
		fired = true
		// Land inside the write, after RAS has fallen: the write is lost and
		// the first read returns the stale low.
		r.injectAt(r.cpu.Ops() + 4)
	}}
	st := New(cyc, r.state, Config{})

	rep, err := st.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, fired)
	assert.Equal(t, uint32(1), rep.Retries)
	assert.Zero(t, rep.Mismatches)
	assert.True(t, r.state.IsOK())
	assert.Equal(t, uint32(1), r.sched.Stats().Sweeps)
}

func TestRetryIsBounded(t *testing.T) {
	r := newRig()
	// Every operation is preempted.
	r.cpu.BeforeOp(func(uint64) { r.state.AssertRefreshed() })
	st := New(r.fg, r.state, Config{MaxRetries: 2})

	_, rep := st.Check(0x01, 0x02, pins.High)

	assert.Equal(t, uint32(2), rep.Retries)
	assert.Equal(t, uint32(1), rep.Unsettled)
}

func TestFaultFreeSweepIsOKAndIdempotent(t *testing.T) {
	r := newRig()
	st := New(r.fg, r.state, Config{})

	for i := 0; i < 2; i++ {
		rep, err := st.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, rep.OK(), "run %d", i)
		assert.True(t, r.state.IsOK(), "run %d", i)
	}
	w, rd := r.chip.Counts()
	assert.Equal(t, uint64(2*2*sim.Cells), w)
	assert.Equal(t, uint64(2*2*sim.Cells), rd)
}

func TestAggregatesEveryFault(t *testing.T) {
	r := newRig()
	faults := []struct {
		row, col uint8
		v        pins.Level
	}{
		{0x00, 0x01, pins.Low},
		{0x12, 0x34, pins.High},
		{0xFF, 0xFF, pins.Low},
		{0xFF, 0x00, pins.High},
	}
	for _, f := range faults {
		r.chip.Stick(f.row, f.col, f.v)
	}
	st := New(r.fg, r.state, Config{Interleaved: true})

	rep, err := st.Run(context.Background())
	require.NoError(t, err)

	// Each stuck cell fails once in its pass and once in the interleaved pass.
	assert.Equal(t, uint32(2*len(faults)), rep.Mismatches)
	assert.Equal(t, Address{0x00, 0x01}, rep.FirstFail)
	assert.Equal(t, uint32(4), rep.RowFails[0xFF])
	assert.False(t, r.state.IsOK())
}

func TestInterleavedPassOnFaultFreeMemory(t *testing.T) {
	r := newRig()
	st := New(r.fg, r.state, Config{Interleaved: true})

	rep, err := st.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Pass{PassHigh, PassLow, PassInterleaved}, rep.Passes)
	assert.True(t, r.state.IsOK())
}

func TestSweepUnderLiveRefresh(t *testing.T) {
	r := newRig()
	sched := refresh.New(dram.New(r.cpu.Hardware(), r.state, nil), refresh.NewTimer(),
		200*time.Microsecond, refresh.WithMask(r.cpu.Interrupt))
	require.NoError(t, sched.Start())
	defer sched.Stop()

	st := New(r.fg, r.state, Config{})
	rep, err := st.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, rep.Mismatches)
	assert.True(t, r.state.IsOK())
}

func TestProgressAndCancel(t *testing.T) {
	r := newRig()
	ctx, cancel := context.WithCancel(context.Background())
	var seen []int
	st := New(r.fg, r.state, Config{
		ProgressEvery: 64,
		Progress: func(p Pass, row int) {
			seen = append(seen, row)
			if p == PassLow && row == 127 {
				cancel()
			}
		},
	})

	rep, err := st.Run(ctx)

	assert.Equal(t, errcode.Cancelled, errcode.Of(err))
	assert.Equal(t, []int{63, 127, 191, 255, 63, 127}, seen)
	assert.Equal(t, []Pass{PassHigh}, rep.Passes)
	assert.False(t, r.state.IsOK(), "no verdict from an aborted sweep")
}
