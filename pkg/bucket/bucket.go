// Package bucket advances timestamps to the next calendar boundary
// (year/month/week/day) in a given UTC offset, for grouping statistics into
// time buckets.
package bucket

import (
	"fmt"
	"time"
)

// Timespan is one of {Year, Month, Week, Day}.
type Timespan int

const (
	Year Timespan = iota
	Month
	Week
	Day
)

// ParseTimespan accepts the single-letter shorthand "y", "m", "w", "d".
func ParseTimespan(s string) (Timespan, error) {
	switch s {
	case "y":
		return Year, nil
	case "m":
		return Month, nil
	case "w":
		return Week, nil
	case "d":
		return Day, nil
	default:
		return 0, fmt.Errorf("bucket: valid values are y(ear), m(onth), w(eek), d(ay), got %q", s)
	}
}

// daysTillMonday maps time.Weekday to the number of days until the next
// Monday (today counts as 7, not 0 — "next" always advances).
var daysTillMonday = map[time.Weekday]int{
	time.Monday:    7,
	time.Tuesday:   6,
	time.Wednesday: 5,
	time.Thursday:  4,
	time.Friday:    3,
	time.Saturday:  2,
	time.Sunday:    1,
}

// Next returns the Unix timestamp of the next boundary of span, strictly
// after ts, interpreted as a wall-clock midnight in the given UTC offset
// (seconds east of UTC).
func Next(span Timespan, ts int64, offset int) int64 {
	loc := time.FixedZone("", offset)
	d := time.Unix(ts, 0).In(loc)

	var d2 time.Time
	switch span {
	case Year:
		d2 = time.Date(d.Year()+1, time.January, 1, 0, 0, 0, 0, loc)
	case Month:
		year, month := d.Year(), d.Month()
		if month == time.December {
			year++
			month = time.January
		} else {
			month++
		}
		d2 = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	case Week:
		till := daysTillMonday[d.Weekday()]
		midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		d2 = midnight.AddDate(0, 0, till)
	case Day:
		d2 = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	default:
		d2 = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	}
	return d2.Unix()
}

// Header formats the leading column for a row falling in the bucket that
// starts at ts: "YYYY " for Year, "YYYY-MM " for Month, "YYYY-WW " for
// Week (ISO week number), "YYYY-MM-DD " for Day.
func Header(span Timespan, ts int64, offset int) string {
	loc := time.FixedZone("", offset)
	d := time.Unix(ts, 0).In(loc)
	switch span {
	case Year:
		return fmt.Sprintf("%04d ", d.Year())
	case Month:
		return fmt.Sprintf("%04d-%02d ", d.Year(), int(d.Month()))
	case Week:
		// Pairs the calendar year with the ISO week number; the two can
		// disagree by one around Dec 31/Jan 1.
		_, week := d.ISOWeek()
		return fmt.Sprintf("%04d-%02d ", d.Year(), week)
	case Day:
		return fmt.Sprintf("%04d-%02d-%02d ", d.Year(), int(d.Month()), d.Day())
	default:
		return ""
	}
}
