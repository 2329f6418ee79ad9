package predict

import (
	"github.com/bascanada/buildlog/pkg/bucket"
	"github.com/bascanada/buildlog/pkg/emergelog"
)

// Bucket is one time-grouped slice of statistics: Header is the bucketer's
// formatted leading column and Tracker holds the durations recorded for
// every event whose timestamp fell before NextBoundary.
type Bucket struct {
	Header       string
	NextBoundary int64
	Tracker      *Tracker
}

// GroupByBucket consumes events (already in file order, as delivered by
// emergelog.Stream) and splits them into consecutive buckets of span,
// advancing the boundary with bucket.Next each time an event's timestamp
// reaches or passes it. Each bucket gets its own Tracker, seeded with the
// previous bucket's in-flight starts, so merges that straddle a boundary
// are recorded against the bucket containing their MergeStop (unclosed
// starts simply carry no duration, same as the single-tracker case).
func GroupByBucket(events []emergelog.Event, span bucket.Timespan, offset int, window int) []*Bucket {
	if len(events) == 0 {
		return nil
	}

	var buckets []*Bucket
	var cur *Bucket

	for _, ev := range events {
		if cur == nil || ev.TS >= cur.NextBoundary {
			next := bucket.Next(span, ev.TS, offset)
			// An event's own bucket starts at the most recent boundary at or
			// before its timestamp, which bucket.Next(ts) doesn't give
			// directly (it returns the *next* boundary); advance past any
			// number of empty buckets by recomputing from ev.TS each time.
			tr := NewTracker(window)
			if cur != nil {
				// Hand the in-flight starts to the new bucket's tracker so a
				// stop past the boundary still pairs with its start.
				for k, v := range cur.Tracker.mergeState {
					tr.mergeState[k] = v
				}
				for k, v := range cur.Tracker.unmergeState {
					tr.unmergeState[k] = v
				}
				tr.syncState = cur.Tracker.syncState
			}
			cur = &Bucket{
				Header:       bucket.Header(span, ev.TS, offset),
				NextBoundary: next,
				Tracker:      tr,
			}
			buckets = append(buckets, cur)
		}
		cur.Tracker.Feed(ev)
	}

	return buckets
}
