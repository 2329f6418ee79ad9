// Package tzoffset samples the process's local UTC offset exactly once,
// before any worker goroutine is spawned, and hands that value around
// explicitly from then on.
package tzoffset

import (
	"fmt"
	"time"
)

// Get returns the UTC offset (seconds east of UTC) to use for the rest of
// the process's lifetime. When utc is true it returns 0 unconditionally.
// Otherwise it returns the current offset of Go's "Local" zone. Loading
// "Local" does not fail, so warnf is not called in practice: on a host with
// no local zoneinfo (e.g. a minimal container with no tzdata) Go's Local
// zone is UTC and Get returns 0 without a warning.
//
// Callers must invoke Get before spawning any goroutine that reads or
// writes the environment (TZ, locale) concurrently: resolving the local
// zone is not safe to race against environment mutation.
func Get(utc bool, warnf func(format string, args ...any)) int {
	if utc {
		return 0
	}
	loc, err := time.LoadLocation("Local")
	if err != nil {
		if warnf != nil {
			warnf("falling back to UTC: %s", fmt.Sprint(err))
		}
		return 0
	}
	_, offset := time.Now().In(loc).Zone()
	return offset
}
