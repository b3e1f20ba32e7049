// services/tester/internal/sim/chip.go

// Package sim models a 64K x 1 asynchronous DRAM wired to the MCU lines, and
// an interrupt gate that reproduces foreground preemption on the host.
package sim

import (
	"sync"
	"time"

	"dramtest-go/services/tester/internal/pins"
)

const (
	Rows  = 256
	Cols  = 256
	Cells = Rows * Cols
)

// Chip is the DRAM plus the MCU side of every line. It implements pins.Port
// the way the GPIO registers would: outputs are latched, DOut reflects the
// chip's output buffer.
type Chip struct {
	mu sync.Mutex

	lines [pins.NumLines]pins.Level
	addr  uint8

	cells [Cells / 64]uint64
	stuck map[uint16]pins.Level

	// decoder
	row, col  uint8
	rasLow    bool
	casLow    bool
	casInRAS  bool
	dout      pins.Level
	doutValid bool

	// refresh bookkeeping
	rasOnly     [Rows]uint32 // RAS-only cycles that refreshed the row
	lastRefresh [Rows]time.Time
	retention   time.Duration
	now         func() time.Time

	writes, reads uint64
}

type Option func(*Chip)

// WithRetention makes cells lose their charge (read back low) when their row
// has not seen a RAS cycle for longer than d.
func WithRetention(d time.Duration) Option { return func(c *Chip) { c.retention = d } }

// WithClock replaces time.Now for retention checks.
func WithClock(now func() time.Time) Option { return func(c *Chip) { c.now = now } }

func NewChip(opts ...Option) *Chip {
	c := &Chip{
		stuck: map[uint16]pins.Level{},
		now:   time.Now,
	}
	// Strobes idle high, as pulled up on the board.
	c.lines[pins.RAS] = pins.High
	c.lines[pins.CAS] = pins.High
	c.lines[pins.WE] = pins.High
	for _, o := range opts {
		o(c)
	}
	t := c.now()
	for i := range c.lastRefresh {
		c.lastRefresh[i] = t
	}
	return c
}

func index(row, col uint8) uint16 { return uint16(row)<<8 | uint16(col) }

// Stick forces a cell to read back v regardless of what was written.
func (c *Chip) Stick(row, col uint8, v pins.Level) {
	c.mu.Lock()
	c.stuck[index(row, col)] = v
	c.mu.Unlock()
}

// Unstick clears every stuck-at fault.
func (c *Chip) Unstick() {
	c.mu.Lock()
	c.stuck = map[uint16]pins.Level{}
	c.mu.Unlock()
}

// Peek returns the stored bit without a bus cycle.
func (c *Chip) Peek(row, col uint8) pins.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(index(row, col))
}

// RASOnlyRefreshes returns how many RAS-only cycles refreshed row r.
func (c *Chip) RASOnlyRefreshes(r uint8) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rasOnly[r]
}

// Counts returns completed write and read cycles.
func (c *Chip) Counts() (writes, reads uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes, c.reads
}

func (c *Chip) Set(line pins.Line, level pins.Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.lines[line]
	c.lines[line] = level
	if old == level {
		return
	}
	switch line {
	case pins.RAS:
		if level == pins.Low {
			c.rasFall()
		} else {
			c.rasRise()
		}
	case pins.CAS:
		if level == pins.Low {
			c.casFall()
		} else {
			c.casLow = false
			c.doutValid = false
		}
	}
}

func (c *Chip) Get(line pins.Line) pins.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line == pins.DOut {
		if c.doutValid {
			return c.dout
		}
		return pins.Low // high impedance, pulled down
	}
	return c.lines[line]
}

func (c *Chip) SetAddress(v uint8) {
	c.mu.Lock()
	c.addr = v
	c.mu.Unlock()
}

func (c *Chip) rasFall() {
	c.rasLow = true
	c.casInRAS = false
	c.row = c.addr
	c.restore(c.row)
}

func (c *Chip) rasRise() {
	c.rasLow = false
	if !c.casInRAS {
		// A7 is ignored during refresh: one cycle covers the row pair.
		r := c.row & 0x7F
		c.rasOnly[r]++
		c.rasOnly[r|0x80]++
	}
}

func (c *Chip) casFall() {
	c.casLow = true
	if !c.rasLow {
		return // CAS-before-RAS is not modelled
	}
	c.casInRAS = true
	c.col = c.addr
	i := index(c.row, c.col)
	if c.lines[pins.WE] == pins.Low {
		c.store(i, c.lines[pins.DIn])
		c.doutValid = false
		c.writes++
		return
	}
	c.dout = c.load(i)
	c.doutValid = true
	c.reads++
}

// restore recharges the row pair addressed by a RAS cycle, dropping cells
// whose charge already leaked away.
func (c *Chip) restore(row uint8) {
	now := c.now()
	for _, r := range [2]uint8{row & 0x7F, row | 0x80} {
		if c.retention > 0 && now.Sub(c.lastRefresh[r]) > c.retention {
			base := int(r) * Cols / 64
			for w := 0; w < Cols/64; w++ {
				c.cells[base+w] = 0
			}
		}
		c.lastRefresh[r] = now
	}
}

func (c *Chip) load(i uint16) pins.Level {
	if v, ok := c.stuck[i]; ok {
		return v
	}
	return pins.Level(c.cells[i/64]&(1<<(i%64)) != 0)
}

func (c *Chip) store(i uint16, v pins.Level) {
	if v {
		c.cells[i/64] |= 1 << (i % 64)
	} else {
		c.cells[i/64] &^= 1 << (i % 64)
	}
}

var _ pins.Port = (*Chip)(nil)
