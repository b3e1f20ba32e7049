// services/tester/cmd/dramsim/main.go

// Command dramsim runs the DRAM self-test against the simulated chip on the
// host, with optional stuck-at faults, and prints the sweep report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/pkg/errors"

	"dramtest-go/services/tester/internal/dram"
	"dramtest-go/services/tester/internal/health"
	"dramtest-go/services/tester/internal/pins"
	"dramtest-go/services/tester/internal/refresh"
	"dramtest-go/services/tester/internal/selftest"
	"dramtest-go/services/tester/internal/sim"
)

type fault struct {
	row, col uint8
	v        pins.Level
}

// parseFaults reads "rr:cc=v,..." with hex addresses and v in {0,1}.
func parseFaults(s string) ([]fault, error) {
	var out []fault
	if s == "" {
		return out, nil
	}
	for _, f := range strings.Split(s, ",") {
		addr, val, ok := strings.Cut(strings.TrimSpace(f), "=")
		if !ok {
			return nil, errors.Errorf("fault %q: want rr:cc=v", f)
		}
		rs, cs, ok := strings.Cut(addr, ":")
		if !ok {
			return nil, errors.Errorf("fault %q: want rr:cc=v", f)
		}
		row, err := strconv.ParseUint(rs, 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "fault %q: row", f)
		}
		col, err := strconv.ParseUint(cs, 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "fault %q: col", f)
		}
		var v pins.Level
		switch val {
		case "0":
		case "1":
			v = pins.High
		default:
			return nil, errors.Errorf("fault %q: level must be 0 or 1", f)
		}
		out = append(out, fault{uint8(row), uint8(col), v})
	}
	return out, nil
}

type options struct {
	faults      string
	period      time.Duration
	retention   time.Duration
	interleaved bool
	retries     int
	bins        int
}

func run(w io.Writer, o options) (bool, error) {
	faults, err := parseFaults(o.faults)
	if err != nil {
		return false, err
	}

	var chipOpts []sim.Option
	if o.retention > 0 {
		chipOpts = append(chipOpts, sim.WithRetention(o.retention))
	}
	chip := sim.NewChip(chipOpts...)
	for _, f := range faults {
		chip.Stick(f.row, f.col, f.v)
	}
	cpu := sim.NewCPU(chip)
	state := health.New(false)

	fg := dram.New(cpu.Foreground(), state, nil)
	isr := dram.New(cpu.Hardware(), state, nil)
	fg.Init()
	isr.WarmUp(8, 0)

	sched := refresh.New(isr, refresh.NewTimer(), o.period, refresh.WithMask(cpu.Interrupt))
	if err := sched.Start(); err != nil {
		return false, errors.Wrap(err, "refresh")
	}
	defer sched.Stop()

	st := selftest.New(fg, state, selftest.Config{MaxRetries: o.retries, Interleaved: o.interleaved})
	rep, err := st.Run(context.Background())
	if err != nil {
		return false, errors.Wrap(err, "self-test")
	}

	stats := sched.Stats()
	fmt.Fprintf(w, "passes      %v\n", rep.Passes)
	fmt.Fprintf(w, "elapsed     %v\n", rep.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "refreshes   %d (dropped %d)\n", stats.Sweeps, stats.Dropped)
	fmt.Fprintf(w, "retries     %d (unsettled %d)\n", rep.Retries, rep.Unsettled)
	fmt.Fprintf(w, "mismatches  %d\n", rep.Mismatches)
	if rep.Failed {
		fmt.Fprintf(w, "first fail  %02x:%02x\n", rep.FirstFail.Row, rep.FirstFail.Col)
		fmt.Fprintln(w, "mismatches by row:")
		if err := histogram.Fprint(w, histogram.Hist(o.bins, rowSamples(rep)), histogram.Linear(40)); err != nil {
			return false, errors.Wrap(err, "histogram")
		}
	}
	verdict := "OK"
	if !state.IsOK() {
		verdict = "FAIL"
	}
	fmt.Fprintln(w, "verdict    ", verdict)
	return state.IsOK(), nil
}

func rowSamples(rep selftest.Report) []float64 {
	var data []float64
	for row, n := range rep.RowFails {
		for i := uint32(0); i < n; i++ {
			data = append(data, float64(row))
		}
	}
	return data
}

func main() {
	var o options
	flag.StringVar(&o.faults, "stuck", "", "stuck-at cells, e.g. 12:34=1,ff:00=0 (hex)")
	flag.DurationVar(&o.period, "period", refresh.DefaultPeriod, "refresh period")
	flag.DurationVar(&o.retention, "retention", 0, "cell retention time; 0 disables decay")
	flag.BoolVar(&o.interleaved, "interleaved", false, "add the per-cell interleaved pass")
	flag.IntVar(&o.retries, "retries", selftest.DefaultMaxRetries, "retries per preempted pair")
	flag.IntVar(&o.bins, "bins", 16, "histogram bins")
	flag.Parse()

	ok, err := run(os.Stdout, o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dramsim: %+v\n", err)
		os.Exit(2)
	}
	if !ok {
		os.Exit(1)
	}
}
