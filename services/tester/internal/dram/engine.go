// services/tester/internal/dram/engine.go
package dram

import (
	"time"

	"dramtest-go/services/tester/internal/pins"
)

// RefreshRows is the number of RAS-only cycles that refresh the whole chip.
const RefreshRows = 128

// Flags is the part of the device state the engine writes.
type Flags interface {
	AssertRefreshed()
}

// Delay waits for at least one settle interval. Platforms supply a busy wait;
// the simulator needs none.
type Delay func()

// Engine expresses the DRAM cycles as ordered pin operations.
// It holds no state of its own; two engines on the same port share the bus.
type Engine struct {
	port   pins.Port
	flags  Flags
	settle Delay
}

func New(port pins.Port, flags Flags, settle Delay) *Engine {
	if settle == nil {
		settle = func() {}
	}
	return &Engine{port: port, flags: flags, settle: settle}
}

// Init parks the strobes and WE inactive (high).
func (e *Engine) Init() {
	e.port.Set(pins.RAS, pins.High)
	e.port.Set(pins.CAS, pins.High)
	e.port.Set(pins.WE, pins.High)
}

// Refresh performs a RAS-only refresh of all rows and then raises the
// refreshed flag. It must run to completion once started.
func (e *Engine) Refresh() {
	for r := 0; r < RefreshRows; r++ {
		e.port.SetAddress(uint8(r))
		e.settle()
		e.port.Set(pins.RAS, pins.Low)
		e.settle()
		e.port.Set(pins.RAS, pins.High)
	}
	if e.flags != nil {
		e.flags.AssertRefreshed()
	}
}

// WarmUp runs the power-on initialisation sweeps the chip needs before it
// holds data. Called before the refresh timer is armed.
func (e *Engine) WarmUp(sweeps int, gap time.Duration) {
	for i := 0; i < sweeps; i++ {
		e.Refresh()
		if gap > 0 {
			time.Sleep(gap)
		}
	}
}

// Write stores v at (row, col) with an early-write cycle: WE is low before
// CAS falls and is released before the strobes.
func (e *Engine) Write(row, col uint8, v pins.Level) {
	p := e.port
	p.SetAddress(row)
	p.Set(pins.DIn, v)
	e.settle()
	p.Set(pins.RAS, pins.Low)
	p.Set(pins.WE, pins.Low)
	p.SetAddress(col)
	e.settle()
	p.Set(pins.CAS, pins.Low)
	p.Set(pins.WE, pins.High)
	p.Set(pins.RAS, pins.High)
	p.Set(pins.CAS, pins.High)
}

// Read returns the value at (row, col), sampled while both strobes are low.
func (e *Engine) Read(row, col uint8) pins.Level {
	p := e.port
	p.Set(pins.WE, pins.High)
	p.SetAddress(row)
	e.settle()
	p.Set(pins.RAS, pins.Low)
	p.SetAddress(col)
	e.settle()
	p.Set(pins.CAS, pins.Low)
	e.settle() // access time
	v := p.Get(pins.DOut)
	p.Set(pins.RAS, pins.High)
	p.Set(pins.CAS, pins.High)
	return v
}
