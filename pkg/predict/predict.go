// Package predict pairs start/stop events into completed-build durations
// and predicts how long a pending build set will take from the tail of
// that history.
package predict

import (
	"github.com/bascanada/buildlog/pkg/emergelog"
)

// DefaultWindow is the tail-window size used when none is specified.
const DefaultWindow = 10

// mergeKey identifies a merge in flight: pkg, version and iter must all
// match between a MergeStart and its MergeStop.
type mergeKey struct {
	pkg, version, iter string
}

// Tracker accumulates completed merge/unmerge durations per package from an
// event stream, keeping only the most recent Window per package (a tail
// window), and answers ETA queries for a pending build list.
type Tracker struct {
	window int

	mergeDurations   map[string][]int64
	unmergeDurations map[string][]int64
	syncDurations    []int64

	mergeState   map[string]mergeInProgress
	unmergeState map[string]unmergeInProgress
	syncState    *int64 // nil when idle, else the ts the in-progress sync started at
}

type mergeInProgress struct {
	ts      int64
	version string
	iter    string
}

type unmergeInProgress struct {
	ts      int64
	version string
}

// NewTracker builds an empty Tracker with the given tail-window size. A
// window <= 0 defaults to DefaultWindow.
func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		window:           window,
		mergeDurations:   make(map[string][]int64),
		unmergeDurations: make(map[string][]int64),
		mergeState:       make(map[string]mergeInProgress),
		unmergeState:     make(map[string]unmergeInProgress),
	}
}

// Feed applies a single event to the tracker's per-package state machines.
// Events must be fed in file order (the order emergelog.Stream delivers
// them).
func (t *Tracker) Feed(ev emergelog.Event) {
	switch ev.Kind {
	case emergelog.MergeStart:
		// A new Start always replaces any prior in-flight Start for this
		// package: the previous one was interrupted and is discarded
		// without recording a duration.
		t.mergeState[ev.Pkg()] = mergeInProgress{ts: ev.TS, version: ev.Version(), iter: ev.Iter()}

	case emergelog.MergeStop:
		if in, ok := t.mergeState[ev.Pkg()]; ok {
			if in.version == ev.Version() && in.iter == ev.Iter() {
				t.pushMerge(ev.Pkg(), ev.TS-in.ts)
			}
			delete(t.mergeState, ev.Pkg())
		}

	case emergelog.UnmergeStart:
		t.unmergeState[ev.Pkg()] = unmergeInProgress{ts: ev.TS, version: ev.Version()}

	case emergelog.UnmergeStop:
		if in, ok := t.unmergeState[ev.Pkg()]; ok {
			if in.version == ev.Version() {
				t.pushUnmerge(ev.Pkg(), ev.TS-in.ts)
			}
			delete(t.unmergeState, ev.Pkg())
		}

	case emergelog.SyncStart:
		ts := ev.TS
		t.syncState = &ts

	case emergelog.SyncStop:
		if t.syncState != nil {
			t.syncDurations = pushTail(t.syncDurations, ev.TS-*t.syncState, t.window)
			t.syncState = nil
		}
	}
}

func (t *Tracker) pushMerge(pkg string, dur int64) {
	t.mergeDurations[pkg] = pushTail(t.mergeDurations[pkg], dur, t.window)
}

func (t *Tracker) pushUnmerge(pkg string, dur int64) {
	t.unmergeDurations[pkg] = pushTail(t.unmergeDurations[pkg], dur, t.window)
}

func pushTail(seq []int64, v int64, window int) []int64 {
	seq = append(seq, v)
	if len(seq) > window {
		seq = seq[len(seq)-window:]
	}
	return seq
}

// MergeDurations returns the recorded tail-window merge durations for pkg,
// oldest first.
func (t *Tracker) MergeDurations(pkg string) []int64 {
	return t.mergeDurations[pkg]
}

// UnmergeDurations returns the recorded tail-window unmerge durations for
// pkg, oldest first.
func (t *Tracker) UnmergeDurations(pkg string) []int64 {
	return t.unmergeDurations[pkg]
}

// SyncDurations returns the recorded tail-window repository-sync durations,
// oldest first.
func (t *Tracker) SyncDurations() []int64 {
	return t.syncDurations
}

// PredictSync estimates the next sync's duration as the arithmetic mean of
// the recorded tail-window sync durations; known is false when no sync has
// completed yet.
func (t *Tracker) PredictSync() (seconds float64, known bool) {
	if len(t.syncDurations) == 0 {
		return 0, false
	}
	return average(t.syncDurations), true
}

// Estimate is the predicted merge duration for a single pending
// (pkg, version): Known is false when there's no history for pkg.
type Estimate struct {
	Pkg     string  `json:"pkg"`
	Version string  `json:"version"`
	Seconds float64 `json:"seconds"`
	Known   bool    `json:"known"`
}

// Pending is one (package, version) the caller wants an ETA for — the
// shape produced by pkg/pretend.
type Pending struct {
	Pkg     string
	Version string
}

// Predict estimates each pending build's duration as the arithmetic mean
// of that package's recorded merge durations, and returns the total ETA
// (the sum of known estimates) alongside each pending build's individual
// estimate in input order.
func (t *Tracker) Predict(pending []Pending) (estimates []Estimate, totalETA float64) {
	for _, p := range pending {
		durs := t.mergeDurations[p.Pkg]
		if len(durs) == 0 {
			estimates = append(estimates, Estimate{Pkg: p.Pkg, Version: p.Version})
			continue
		}
		mean := average(durs)
		totalETA += mean
		estimates = append(estimates, Estimate{Pkg: p.Pkg, Version: p.Version, Seconds: mean, Known: true})
	}
	return estimates, totalETA
}

func average(xs []int64) float64 {
	var sum int64
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
