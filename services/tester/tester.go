// services/tester/tester.go
package tester

import (
	"context"
	"time"

	"dramtest-go/bus"
	"dramtest-go/services/tester/internal/dram"
	"dramtest-go/services/tester/internal/health"
	"dramtest-go/services/tester/internal/indicator"
	"dramtest-go/services/tester/internal/platform"
	"dramtest-go/services/tester/internal/refresh"
	"dramtest-go/services/tester/internal/selftest"
	"dramtest-go/types"
	"dramtest-go/x/logx"
	"dramtest-go/x/timex"
)

// -----------------------------------------------------------------------------
// Entry points
// -----------------------------------------------------------------------------

// Run brings up the board named in cfg, tests the DRAM once and then holds
// the indicator. On the device it never returns.
func Run(ctx context.Context, conn *bus.Connection, cfg Config) {
	plat, err := platform.Default(cfg.Board)
	if err != nil {
		logx.Error("platform:", err.Error())
		publishHealth(conn, types.VerdictFail, err)
		<-ctx.Done()
		return
	}
	RunOn(ctx, conn, cfg, plat)
}

// RunOn is Run on an already constructed platform.
func RunOn(ctx context.Context, conn *bus.Connection, cfg Config, plat *platform.Platform) {
	s := &service{conn: conn, plat: plat}
	s.run(ctx, cfg)
}

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

type service struct {
	conn  *bus.Connection
	plat  *platform.Platform
	state *health.State
	sched *refresh.Scheduler
	cfg   Config
}

func (s *service) run(ctx context.Context, cfg Config) {
	publishHealth(s.conn, types.VerdictPending, nil)

	cfg, err := cfg.normalise()
	if err != nil {
		logx.Error("config:", err.Error())
		publishHealth(s.conn, types.VerdictFail, err)
		indicator.Run(ctx, s.plat.Foreground, false, indicator.DefaultBlink)
		return
	}
	s.cfg = cfg
	s.state = health.New(cfg.InitialOK)

	fg := dram.New(s.plat.Foreground, s.state, s.plat.Settle)
	isr := dram.New(s.plat.Interrupt, s.state, s.plat.Settle)

	// Power-on: idle the strobes, wait, then the initialisation sweeps
	// before the timer takes over.
	fg.Init()
	time.Sleep(cfg.Board.PowerOnDelay)
	isr.WarmUp(cfg.Board.WarmUpSweeps, cfg.Board.WarmUpGap)

	s.sched = refresh.New(isr, s.plat.Timer, cfg.RefreshPeriod, s.plat.Options()...)
	if err := s.sched.Start(); err != nil {
		logx.Error("refresh:", err.Error())
		publishHealth(s.conn, types.VerdictFail, err)
		indicator.Run(ctx, s.plat.Foreground, false, cfg.Blink)
		return
	}
	defer s.sched.Stop()
	logx.Info("refresh armed, period", logx.U(timex.Micros(cfg.RefreshPeriod)), "us")

	go s.statsLoop(ctx)

	ok := s.selfTest(ctx, fg)
	if ctx.Err() != nil {
		return
	}

	indicator.Run(ctx, s.plat.Foreground, ok, cfg.Blink)
}

func (s *service) selfTest(ctx context.Context, fg *dram.Engine) bool {
	st := selftest.New(fg, s.state, selftest.Config{
		MaxRetries:    s.cfg.MaxRetries,
		Interleaved:   s.cfg.Interleaved,
		ProgressEvery: s.cfg.ProgressEvery,
		Progress: func(p selftest.Pass, row int) {
			s.conn.Publish(bus.NewMessage(TopicProgress, types.SelfTestProgress{Pass: p.String(), Row: row}, false))
		},
	})

	logx.Info("self-test start")
	rep, err := st.Run(ctx)
	if err != nil {
		logx.Warn("self-test aborted:", err.Error())
		return false
	}

	report := toReport(rep)
	report.Failures = s.state.Failures()
	s.conn.Publish(bus.NewMessage(TopicReport, report, true))
	if rep.Failed {
		logx.Warn("self-test mismatches", logx.U(rep.Mismatches), "first", logx.Addr(rep.FirstFail.Row, rep.FirstFail.Col))
	}
	logx.Info("self-test done, retries", logx.U(rep.Retries), "ms", logx.I(rep.Elapsed.Milliseconds()))

	ok := s.state.IsOK()
	v := types.VerdictFail
	if ok {
		v = types.VerdictOK
	}
	publishHealth(s.conn, v, nil)
	s.publishStats()
	return ok
}

func (s *service) statsLoop(ctx context.Context) {
	tick := time.NewTicker(s.cfg.StatsInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.publishStats()
		}
	}
}

func (s *service) publishStats() {
	st := s.sched.Stats()
	s.conn.Publish(bus.NewMessage(TopicRefresh, types.RefreshStats{
		Sweeps:      st.Sweeps,
		Dropped:     st.Dropped,
		LastSweepUs: timex.Micros(st.LastSweep),
		PeriodUs:    timex.Micros(s.cfg.RefreshPeriod),
	}, true))
}

func publishHealth(conn *bus.Connection, v types.Verdict, err error) {
	st := types.HealthState{Verdict: v, TS: timex.NowMs()}
	if err != nil {
		st.Error = err.Error()
	}
	conn.Publish(bus.NewMessage(TopicHealth, st, true))
}

func toReport(r selftest.Report) types.SelfTestReport {
	out := types.SelfTestReport{
		Mismatches: r.Mismatches,
		Retries:    r.Retries,
		Unsettled:  r.Unsettled,
		Failed:     r.Failed,
		ElapsedMs:  r.Elapsed.Milliseconds(),
	}
	if r.Failed {
		out.FirstRow, out.FirstCol = r.FirstFail.Row, r.FirstFail.Col
	}
	for _, p := range r.Passes {
		out.Passes = append(out.Passes, p.String())
	}
	return out
}
