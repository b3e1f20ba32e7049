package main

import (
	"context"
	"time"

	"dramtest-go/bus"
	"dramtest-go/services/heartbeat"
	"dramtest-go/services/tester"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.Background()
	b := bus.NewBus(4)

	hb := &heartbeat.Service{Interval: 5 * time.Second}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	tester.Run(ctx, b.NewConnection("tester"), tester.DefaultConfig())
}
