package heartbeat

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dramtest-go/bus"
	"dramtest-go/services/tester"
	"dramtest-go/types"
	"dramtest-go/x/logx"
)

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuf) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestHeartbeatReportsLatestState(t *testing.T) {
	out := &lockedBuf{}
	logx.SetSink(out)
	defer logx.SetSink(nil)

	b := bus.NewBus(4)
	pub := b.NewConnection("tester")
	pub.Publish(bus.NewMessage(tester.TopicHealth, types.HealthState{Verdict: types.VerdictOK}, true))
	pub.Publish(bus.NewMessage(tester.TopicRefresh, types.RefreshStats{Sweeps: 42, Dropped: 1}, true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := &Service{Interval: 2 * time.Millisecond}
	require.NoError(t, s.Start(ctx, b.NewConnection("heartbeat")))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Info: heartbeat verdict ok sweeps 42 dropped 1\n")
	}, time.Second, time.Millisecond)
}
