package tzoffset

import "testing"

func TestGetUTC(t *testing.T) {
	if got := Get(true, nil); got != 0 {
		t.Fatalf("Get(true) = %d, want 0", got)
	}
}

func TestGetLocalNeverPanics(t *testing.T) {
	var warned string
	warnf := func(format string, args ...any) {
		warned = format
	}
	// Just exercise the non-UTC path; the actual offset depends on the
	// machine's zoneinfo and isn't asserted here.
	_ = Get(false, warnf)
	_ = warned
}
