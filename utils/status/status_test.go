package status

import (
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	var out strings.Builder
	l := NewStandardLogger(LogLevelWarning, &out)
	l.Infof("hidden")
	l.Warningf("shown %d", 1)
	l.Errorf("shown %d", 2)
	if out.String() != "Warning: shown 1\nError: shown 2\n" {
		t.Fatalf("Unexpected output %q", out.String())
	}

	out.Reset()
	l.LowerLevelTo(LogLevelDebug)
	l.Debugf("now visible")
	l.LowerLevelTo(LogLevelError)
	l.Debugf("still visible")
	if out.String() != "now visible\nstill visible\n" {
		t.Fatalf("Unexpected output %q", out.String())
	}

	out.Reset()
	l.SetLevel(LogLevelCritical)
	l.Errorf("hidden")
	l.Criticalf("%s!", "bad")
	if out.String() != "Critical: bad!\n" {
		t.Fatalf("Unexpected output %q", out.String())
	}
}

type countingArg struct {
	n *int
}

func (c countingArg) String() string {
	*c.n++
	return "x"
}

func TestDroppedNotFormatted(t *testing.T) {
	var out strings.Builder
	l := NewStandardLogger(LogLevelInfo, &out)
	n := 0
	l.Debugf("%v", countingArg{&n})
	if n != 0 || out.Len() != 0 {
		t.Fatalf("Debug message formatted: %d %q", n, out.String())
	}
	l.Infof("%v", countingArg{&n})
	if n != 1 || out.String() != "x\n" {
		t.Fatalf("Info message: %d %q", n, out.String())
	}

	l.SetOutput(nil)
	l.Errorf("%v", countingArg{&n})
	if n != 1 {
		t.Fatal("Formatted with no output")
	}
}
