// Package emergedate parses the flexible date strings accepted on the
// command line into Unix timestamps: plain epoch integers, partial
// ISO-8601, or relative "N unit ago" expressions.
package emergedate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var agoTokenRe = regexp.MustCompile(`[0-9]+|[a-z]+`)
var agoCharsetRe = regexp.MustCompile(`^[a-zA-Z0-9 ,]*$`)

var isoLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// nowUTC is overridable in tests; production callers always get real time.
var nowUTC = func() time.Time { return time.Now().UTC() }

// Parse converts a user-supplied date string to Unix seconds, trying in
// order: a plain signed integer, a flexible partial-ISO-8601 string
// (applying offset, seconds east of UTC), then a relative "N unit[, N
// unit...] ago" expression (always relative to "now" in UTC, independent
// of offset).
func Parse(s string, offset int) (int64, error) {
	s = strings.TrimSpace(s)

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	if ts, err := parseISO(s, offset); err == nil {
		return ts, nil
	}

	if ts, err := parseAgo(s); err == nil {
		return ts, nil
	}

	return 0, fmt.Errorf("couldn't parse %q, check examples in --help", s)
}

func parseISO(s string, offset int) (int64, error) {
	loc := time.FixedZone("", offset)
	for _, layout := range isoLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		// time.ParseInLocation requires an exact match of the whole string
		// against layout; there's no trailing-junk risk here because Go's
		// parser already rejects it, unlike a partial-prefix parser would.
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("not a recognized YYYY-MM-DD[THH:MM[:SS]] date: %q", s)
}

func parseAgo(s string) (int64, error) {
	if !agoCharsetRe.MatchString(s) {
		return 0, fmt.Errorf("illegal character in relative date %q", s)
	}

	tokens := agoTokenRe.FindAllString(s, -1)
	if len(tokens) == 0 {
		return 0, fmt.Errorf("no token found in %q", s)
	}

	now := nowUTC()
	atLeastOne := false

	for i := 0; i < len(tokens); i += 2 {
		if i+1 >= len(tokens) {
			return 0, fmt.Errorf("missing unit after %q", tokens[i])
		}
		num, err := strconv.Atoi(tokens[i])
		if err != nil {
			return 0, fmt.Errorf("bad number %q: %w", tokens[i], err)
		}
		unit := tokens[i+1]
		atLeastOne = true

		switch unit {
		case "y", "year", "years":
			now = addCalendarMonths(now, -12*num)
		case "m", "month", "months":
			now = addCalendarMonths(now, -num)
		case "w", "week", "weeks":
			now = now.Add(-time.Duration(num) * 7 * 24 * time.Hour)
		case "d", "day", "days":
			now = now.Add(-time.Duration(num) * 24 * time.Hour)
		case "h", "hour", "hours":
			now = now.Add(-time.Duration(num) * time.Hour)
		case "min", "mins", "minute", "minutes":
			now = now.Add(-time.Duration(num) * time.Minute)
		case "s", "sec", "secs", "second", "seconds":
			now = now.Add(-time.Duration(num) * time.Second)
		default:
			return 0, fmt.Errorf("bad span %q", unit)
		}
	}

	if !atLeastOne {
		return 0, fmt.Errorf("no token found in %q", s)
	}
	return now.Unix(), nil
}

// addCalendarMonths walks t back (or forward) by delta months, stepping
// one month at a time and clamping the day-of-month to the last valid day
// of the target month when the original day doesn't exist there (e.g. "1
// month ago" from March 31 lands on the last day of February).
func addCalendarMonths(t time.Time, delta int) time.Time {
	day := t.Day()
	step := 1
	if delta < 0 {
		step = -1
	}
	y, m, _ := t.Date()
	for n := 0; n < abs(delta); n++ {
		m += time.Month(step)
		if m < time.January {
			m = time.December
			y--
		} else if m > time.December {
			m = time.January
			y++
		}
	}
	lastDay := lastDayOfMonth(y, m)
	if day > lastDay {
		day = lastDay
	}
	return time.Date(y, m, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.Add(-24 * time.Hour).Day()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
