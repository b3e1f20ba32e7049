package sim

import (
	"sync"
	"sync/atomic"

	"dramtest-go/services/tester/internal/pins"
)

// CPU reproduces single-core interrupt semantics on the host: every
// foreground pin operation is atomic, and an interrupt body runs with the
// foreground frozen until it returns. Preemption can therefore land between
// any two foreground operations but never inside one.
type CPU struct {
	mu   sync.Mutex
	hw   pins.Port
	ops  atomic.Uint64
	hook atomic.Pointer[func(op uint64)]
}

func NewCPU(hw pins.Port) *CPU { return &CPU{hw: hw} }

// Hardware is the port as seen from interrupt context.
func (c *CPU) Hardware() pins.Port { return c.hw }

// Foreground returns the port view used by main-line code.
func (c *CPU) Foreground() pins.Port { return foreground{c} }

// Interrupt runs fn with the foreground held off.
func (c *CPU) Interrupt(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// BeforeOp installs a hook called before every foreground operation with the
// 1-based operation number. The hook runs outside the gate, so it may call
// Interrupt. Pass nil to remove it.
func (c *CPU) BeforeOp(fn func(op uint64)) {
	if fn == nil {
		c.hook.Store(nil)
		return
	}
	c.hook.Store(&fn)
}

// Ops returns the number of foreground operations issued so far.
func (c *CPU) Ops() uint64 { return c.ops.Load() }

func (c *CPU) step() {
	n := c.ops.Add(1)
	if h := c.hook.Load(); h != nil {
		(*h)(n)
	}
}

type foreground struct{ c *CPU }

func (f foreground) Set(line pins.Line, level pins.Level) {
	f.c.step()
	f.c.mu.Lock()
	f.c.hw.Set(line, level)
	f.c.mu.Unlock()
}

func (f foreground) Get(line pins.Line) pins.Level {
	f.c.step()
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	return f.c.hw.Get(line)
}

func (f foreground) SetAddress(v uint8) {
	f.c.step()
	f.c.mu.Lock()
	f.c.hw.SetAddress(v)
	f.c.mu.Unlock()
}
