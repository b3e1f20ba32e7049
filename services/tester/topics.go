package tester

import "dramtest-go/bus"

var (
	TopicHealth   = bus.T("dram", "health")
	TopicReport   = bus.T("dram", "selftest")
	TopicProgress = bus.T("dram", "selftest", "progress")
	TopicRefresh  = bus.T("dram", "refresh")
)
