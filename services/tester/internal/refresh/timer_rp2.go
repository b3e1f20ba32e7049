//go:build rp2040

package refresh

import (
	"device/rp"
	"runtime/interrupt"
	"time"

	"dramtest-go/errcode"
)

// Alarm 0 belongs to the TinyGo runtime's sleep timer.
const alarmBit = 1 << 3

var (
	alarmFire   func()
	alarmPeriod uint32 // µs
)

// AlarmTimer uses TIMER alarm 3 of the RP2040 as the refresh countdown. Its
// handler runs at the highest NVIC priority so nothing nests inside a sweep.
type AlarmTimer struct {
	intr interrupt.Interrupt
}

func NewTimer() *AlarmTimer { return &AlarmTimer{} }

func (t *AlarmTimer) Start(period time.Duration, fire func()) error {
	us := period.Microseconds()
	if us <= 0 || us > 1<<31 {
		return errcode.InvalidPeriod
	}
	alarmFire = fire
	alarmPeriod = uint32(us)

	t.intr = interrupt.New(rp.IRQ_TIMER_IRQ_3, alarmISR)
	t.intr.SetPriority(0x00)
	rp.TIMER.INTR.Set(alarmBit)
	rp.TIMER.INTE.SetBits(alarmBit)
	rp.TIMER.ALARM3.Set(rp.TIMER.TIMERAWL.Get() + alarmPeriod)
	t.intr.Enable()
	return nil
}

func (t *AlarmTimer) Stop() {
	rp.TIMER.INTE.ClearBits(alarmBit)
	rp.TIMER.ARMED.Set(alarmBit) // write 1 to disarm
	t.intr.Disable()
	alarmFire = nil
}

func alarmISR(interrupt.Interrupt) {
	rp.TIMER.INTR.Set(alarmBit) // write 1 to clear
	if alarmFire != nil {
		alarmFire()
	}
	// Reload once the sweep has finished.
	rp.TIMER.ALARM3.Set(rp.TIMER.TIMERAWL.Get() + alarmPeriod)
}
