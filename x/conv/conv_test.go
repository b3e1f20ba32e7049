package conv

import (
	"math"
	"testing"
)

func TestAppendUint(t *testing.T) {
	cases := map[uint64]string{0: "0", 7: "7", 65536: "65536", math.MaxUint64: "18446744073709551615"}
	for n, want := range cases {
		if got := string(AppendUint(nil, n)); got != want {
			t.Errorf("AppendUint(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestAppendInt(t *testing.T) {
	if got := string(AppendInt([]byte("x="), -1800)); got != "x=-1800" {
		t.Errorf("got %q", got)
	}
	if got := string(AppendInt(nil, 42)); got != "42" {
		t.Errorf("got %q", got)
	}
}

func TestAppendHex8(t *testing.T) {
	if got := string(AppendHex8(AppendHex8(nil, 0x12), 0xFE)); got != "12fe" {
		t.Errorf("got %q", got)
	}
}
