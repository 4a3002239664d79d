package logfmt

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

type dir uint8

func (dir) String() string { return "up left" }

func TestAppend(t *testing.T) {
	for _, c := range []struct {
		args []any
		want string
	}{
		{nil, "msg"},
		{[]any{"cycle", 56}, "msg cycle=56"},
		{[]any{"n", int64(math.MinInt64)}, "msg n=-9223372036854775808"},
		{[]any{"u", uint32(math.MaxUint32), "b", uint8(0)}, "msg u=4294967295 b=0"},
		{[]any{"ok", true, "bad", false}, "msg ok=true bad=false"},
		{[]any{"rate", 49.996}, "msg rate=50.00"},
		{[]any{"rate", -0.125}, "msg rate=-0.13"},
		{[]any{"err", errors.New("no_peer")}, "msg err=no_peer"},
		{[]any{"err", errors.New("pins: bad")}, `msg err="pins: bad"`},
		{[]any{"pov", dir(0)}, `msg pov="up left"`},
		{[]any{"s", ""}, `msg s=""`},
		{[]any{"q", `a"b`}, `msg q="a\"b"`},
		{[]any{"x", struct{}{}}, "msg x=<?>"},
		{[]any{"x", nil}, "msg x=<nil>"},
		{[]any{"dangling"}, "msg dangling=!MISSING"},
	} {
		if got := string(Append(nil, "msg", c.args...)); got != c.want {
			t.Errorf("Append(%v) = %q, want %q", c.args, got, c.want)
		}
	}
}

func TestFtoa2Limits(t *testing.T) {
	for x, want := range map[float64]string{
		0:          "0.00",
		1.005:      "1.00",
		1e17:       "inf",
		math.NaN(): "NaN",
		123456.789: "123456.79",
	} {
		if got := string(Ftoa2(nil, x)); got != want {
			t.Errorf("Ftoa2(%v) = %q, want %q", x, got, want)
		}
	}
}

func TestPrinterLevels(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Prefix: "[x52] ", Out: &buf}
	p.Debug("hidden")
	p.Info("link", "state", "up")
	p.Verbose = true
	p.Debug("shown", "cycle", 3)
	p.Error("failed")

	want := "[x52] INFO link state=up\n[x52] DEBUG shown cycle=3\n[x52] ERROR failed\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}
