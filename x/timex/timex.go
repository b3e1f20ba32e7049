package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Micros returns d in whole microseconds, saturating to the uint32 range.
func Micros(d time.Duration) uint32 {
	us := d.Microseconds()
	switch {
	case us < 0:
		return 0
	case us > int64(^uint32(0)):
		return ^uint32(0)
	}
	return uint32(us)
}

// SpinFor busy-waits for at least d. Used for sub-microsecond to
// few-microsecond settle times where sleeping would yield to the scheduler.
func SpinFor(d time.Duration) {
	t0 := time.Now()
	for time.Since(t0) < d {
	}
}
