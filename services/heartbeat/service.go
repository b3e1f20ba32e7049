// Package heartbeat logs a periodic liveness line carrying the latest
// DRAM verdict and refresh counters seen on the bus.
package heartbeat

import (
	"context"
	"time"

	"dramtest-go/bus"
	"dramtest-go/services/tester"
	"dramtest-go/types"
	"dramtest-go/x/logx"
)

const DefaultInterval = time.Second

type Service struct {
	Interval time.Duration

	verdict types.Verdict
	stats   types.RefreshStats
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	healthSub := conn.Subscribe(tester.TopicHealth)
	defer conn.Unsubscribe(healthSub)
	refreshSub := conn.Subscribe(tester.TopicRefresh)
	defer conn.Unsubscribe(refreshSub)

	iv := s.Interval
	if iv <= 0 {
		iv = DefaultInterval
	}
	tick := time.NewTicker(iv)
	defer tick.Stop()

	s.verdict = types.VerdictPending
	for {
		select {
		case <-ctx.Done():
			logx.Info("heartbeat stopping")
			return
		case <-tick.C:
			logx.Info("heartbeat",
				"verdict", string(s.verdict),
				"sweeps", logx.U(s.stats.Sweeps),
				"dropped", logx.U(s.stats.Dropped))
		case m := <-healthSub.Channel():
			if st, ok := m.Payload.(types.HealthState); ok {
				s.verdict = st.Verdict
			}
		case m := <-refreshSub.Channel():
			if st, ok := m.Payload.(types.RefreshStats); ok {
				s.stats = st
			}
		}
	}
}

// Start runs the heartbeat until ctx is cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
