package tester

import (
	"time"

	"dramtest-go/services/tester/internal/dram"
	"dramtest-go/services/tester/internal/indicator"
	"dramtest-go/services/tester/internal/platform/boards"
	"dramtest-go/services/tester/internal/refresh"
	"dramtest-go/services/tester/internal/selftest"
	"dramtest-go/x/mathx"
)

// minRowTime stands in for boards without a settle delay (the simulator).
const minRowTime = 100 * time.Nanosecond

type Config struct {
	Board boards.Board

	RefreshPeriod time.Duration
	MaxRetries    int
	Interleaved   bool
	Blink         time.Duration
	// InitialOK is the value of MEM_OK before the first sweep completes.
	InitialOK bool
	// ProgressEvery publishes sweep progress every N rows; 0 disables it.
	ProgressEvery int
	StatsInterval time.Duration
}

// DefaultConfig returns the settings for the selected board.
func DefaultConfig() Config {
	return Config{
		Board:         boards.Selected,
		RefreshPeriod: refresh.DefaultPeriod,
		MaxRetries:    selftest.DefaultMaxRetries,
		Blink:         indicator.DefaultBlink,
		ProgressEvery: 32,
		StatsInterval: 5 * time.Second,
	}
}

// normalise fills zero values, clamps the tunables and checks the refresh
// budget of the board.
func (c Config) normalise() (Config, error) {
	c.RefreshPeriod = mathx.Default(c.RefreshPeriod, refresh.DefaultPeriod)
	c.MaxRetries = mathx.Clamp(mathx.Default(c.MaxRetries, selftest.DefaultMaxRetries), 1, 16)
	c.Blink = mathx.Clamp(mathx.Default(c.Blink, indicator.DefaultBlink), 100*time.Microsecond, 5*time.Second)
	c.ProgressEvery = mathx.Clamp(c.ProgressEvery, 0, selftest.Rows)
	c.StatsInterval = mathx.Default(c.StatsInterval, 5*time.Second)

	if err := c.Board.Pins.Validate(); err != nil {
		return c, err
	}
	rowTime := mathx.Default(2*c.Board.Settle, minRowTime)
	maxRefresh := mathx.Default(c.Board.MaxRefresh, 2*time.Millisecond)
	if err := refresh.CheckBudget(dram.RefreshRows, rowTime, c.RefreshPeriod, maxRefresh); err != nil {
		return c, err
	}
	return c, nil
}
