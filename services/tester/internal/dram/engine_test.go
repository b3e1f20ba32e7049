package dram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dramtest-go/services/tester/internal/health"
	"dramtest-go/services/tester/internal/pins"
	"dramtest-go/services/tester/internal/sim"
)

// recPort records every operation as a short string.
type recPort struct {
	ops  []string
	dout pins.Level
}

func (p *recPort) Set(l pins.Line, v pins.Level) { p.ops = append(p.ops, l.String()+"="+v.String()) }
func (p *recPort) Get(l pins.Line) pins.Level {
	p.ops = append(p.ops, "get "+l.String())
	return p.dout
}
func (p *recPort) SetAddress(v uint8) { p.ops = append(p.ops, fmt.Sprintf("addr=%02x", v)) }

func TestWriteSequence(t *testing.T) {
	p := &recPort{}
	settles := 0
	e := New(p, nil, func() { settles++ })

	e.Write(0x12, 0x34, pins.High)

	assert.Equal(t, []string{
		"addr=12", "din=high", "ras=low", "we=low",
		"addr=34", "cas=low", "we=high", "ras=high", "cas=high",
	}, p.ops)
	assert.Equal(t, 2, settles, "one settle after each address placement")
}

func TestReadSequence(t *testing.T) {
	p := &recPort{dout: pins.High}
	e := New(p, nil, nil)

	got := e.Read(0xAB, 0xCD)

	assert.Equal(t, pins.High, got)
	assert.Equal(t, []string{
		"we=high", "addr=ab", "ras=low", "addr=cd", "cas=low",
		"get dout", "ras=high", "cas=high",
	}, p.ops)
}

func TestRefreshSequence(t *testing.T) {
	p := &recPort{}
	st := health.New(false)
	e := New(p, st, nil)

	e.Refresh()

	require.Len(t, p.ops, 3*RefreshRows)
	for r := 0; r < RefreshRows; r++ {
		assert.Equal(t, fmt.Sprintf("addr=%02x", r), p.ops[3*r])
		assert.Equal(t, "ras=low", p.ops[3*r+1])
		assert.Equal(t, "ras=high", p.ops[3*r+2])
	}
	assert.True(t, st.TakeRefreshed())
}

func TestInitParksStrobes(t *testing.T) {
	p := &recPort{}
	New(p, nil, nil).Init()
	assert.Equal(t, []string{"ras=high", "cas=high", "we=high"}, p.ops)
}

func TestWriteReadFidelity(t *testing.T) {
	chip := sim.NewChip()
	e := New(chip, nil, nil)
	e.Init()

	addrs := [][2]uint8{{0, 0}, {0x12, 0x34}, {0x7F, 0x7F}, {0x80, 0x01}, {0xFF, 0xFF}}
	for _, v := range []pins.Level{pins.High, pins.Low} {
		for _, a := range addrs {
			e.Write(a[0], a[1], v)
			assert.Equal(t, v, e.Read(a[0], a[1]), "row %02x col %02x", a[0], a[1])
			assert.Equal(t, v, chip.Peek(a[0], a[1]))
		}
	}
}

func TestRefreshPreservesData(t *testing.T) {
	chip := sim.NewChip()
	e := New(chip, health.New(false), nil)
	e.Write(0x05, 0x06, pins.High)
	e.Write(0x85, 0x06, pins.High)

	e.WarmUp(3, 0)

	assert.Equal(t, pins.High, e.Read(0x05, 0x06))
	assert.Equal(t, pins.High, e.Read(0x85, 0x06))
	w, r := chip.Counts()
	assert.Equal(t, uint64(2), w)
	assert.Equal(t, uint64(2), r)
}

// A refresh landing inside a write cycle closes the row early, so the write
// never reaches the cell. This is the race the self-test retry exists for.
func TestRefreshInsideWriteLosesWrite(t *testing.T) {
	chip := sim.NewChip()
	cpu := sim.NewCPU(chip)
	st := health.New(false)
	isr := New(cpu.Hardware(), st, nil)
	fg := New(cpu.Foreground(), st, nil)

	// Ops 1..3 place the row, drive DIn and drop RAS; fire before WE falls.
	cpu.BeforeOp(func(n uint64) {
		if n == 4 {
			cpu.Interrupt(isr.Refresh)
		}
	})
	fg.Write(0x7F, 0x7F, pins.High)
	cpu.BeforeOp(nil)

	assert.True(t, st.TakeRefreshed())
	assert.Equal(t, pins.Low, fg.Read(0x7F, 0x7F), "stale value after a preempted write")
}
