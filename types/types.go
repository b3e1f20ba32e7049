package types

// ---- DRAM tester state (retained) ----

// Verdict is the health state shown by the indicator.
type Verdict string

const (
	VerdictPending Verdict = "pending"
	VerdictOK      Verdict = "ok"
	VerdictFail    Verdict = "fail"
)

// HealthState is published on dram/health once the self-test has finished.
type HealthState struct {
	Verdict Verdict `json:"verdict"`
	Error   string  `json:"error,omitempty"` // configuration failure, if any
	TS      int64   `json:"ts_ms"`
}

// RefreshStats is published on dram/refresh.
type RefreshStats struct {
	Sweeps      uint32 `json:"sweeps"`
	Dropped     uint32 `json:"dropped"` // triggers that arrived during a sweep
	LastSweepUs uint32 `json:"last_sweep_us"`
	PeriodUs    uint32 `json:"period_us"`
}

// SelfTestReport is published on dram/selftest. It stays on the device bus;
// nothing forwards it off the board.
type SelfTestReport struct {
	Mismatches uint32   `json:"mismatches"`
	Retries    uint32   `json:"retries"`
	Unsettled  uint32   `json:"unsettled"`
	FirstRow   uint8    `json:"first_row,omitempty"`
	FirstCol   uint8    `json:"first_col,omitempty"`
	Failed     bool     `json:"failed"`
	Failures   uint32   `json:"failures"` // mismatches recorded since power-on
	Passes     []string `json:"passes"`
	ElapsedMs  int64    `json:"elapsed_ms"`
}

// SelfTestProgress is published on dram/selftest/progress while sweeping.
type SelfTestProgress struct {
	Pass string `json:"pass"`
	Row  int    `json:"row"`
}
