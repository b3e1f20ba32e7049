package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dramtest-go/services/tester/internal/pins"
)

func TestParseFaults(t *testing.T) {
	got, err := parseFaults("12:34=1, ff:00=0")
	require.NoError(t, err)
	assert.Equal(t, []fault{{0x12, 0x34, pins.High}, {0xFF, 0x00, pins.Low}}, got)

	for _, bad := range []string{"12:34", "1234=1", "zz:00=1", "00:100=1", "00:00=2"} {
		_, err := parseFaults(bad)
		assert.Error(t, err, bad)
	}
}

func TestRunReportsFaults(t *testing.T) {
	var out bytes.Buffer
	ok, err := run(&out, options{
		faults:  "12:34=1,80:01=0",
		period:  time.Millisecond,
		retries: 3,
		bins:    4,
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "mismatches  2")
	assert.Contains(t, out.String(), "first fail  80:01", "the high pass trips first")
	assert.Contains(t, out.String(), "FAIL")
}

func TestRunHealthy(t *testing.T) {
	var out bytes.Buffer
	ok, err := run(&out, options{period: time.Millisecond, retries: 3, bins: 4, retention: 50 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "verdict     OK")
}
