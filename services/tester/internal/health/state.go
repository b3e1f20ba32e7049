// Package health holds the device flags shared by the refresh interrupt and
// the foreground self-test. The state lives from power-on to power-off.
package health

import "sync/atomic"

type State struct {
	ok        atomic.Bool
	refreshed atomic.Bool

	failures atomic.Uint32 // MarkFailed calls since power-on
}

// New returns the power-on state. initialOK selects whether MEM_OK starts
// asserted before any self-test has run.
func New(initialOK bool) *State {
	s := &State{}
	s.ok.Store(initialOK)
	return s
}

// AssertRefreshed is called by the refresh handler after a completed sweep.
// Safe from interrupt context.
func (s *State) AssertRefreshed() { s.refreshed.Store(true) }

// TakeRefreshed reports whether a refresh happened since the last call and
// clears the flag in the same step. Exactly one consumer may call it.
func (s *State) TakeRefreshed() bool { return s.refreshed.Swap(false) }

// Refreshed peeks at the flag without consuming it.
func (s *State) Refreshed() bool { return s.refreshed.Load() }

// MarkFailed records a cell mismatch by clearing MEM_OK.
func (s *State) MarkFailed() {
	s.ok.Store(false)
	s.failures.Add(1)
}

// MarkOK asserts MEM_OK after a sweep that recorded no mismatch.
func (s *State) MarkOK() { s.ok.Store(true) }

func (s *State) IsOK() bool { return s.ok.Load() }

// Failures counts mismatches recorded since power-on.
func (s *State) Failures() uint32 { return s.failures.Load() }
