// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bascanada/buildlog/pkg/bucket"
	"github.com/bascanada/buildlog/pkg/emergelog"
	"github.com/bascanada/buildlog/pkg/render"
	"github.com/bascanada/buildlog/pkg/tzoffset"
)

var statsOpts struct {
	source  string
	pkg     string
	exact   bool
	since   string
	until   string
	utc     bool
	show    string
	group   string
	jsonOut bool
}

// statsRow is one bucket/package summary line.
type statsRow struct {
	Bucket   string `json:"bucket,omitempty"`
	Pkg      string `json:"pkg"`
	Count    int    `json:"count"`
	TotalSec int64  `json:"total_seconds"`
	AvgSec   int64  `json:"avg_seconds"`
}

// pkgAgg accumulates completed-merge counts and durations for one package
// within one bucket.
type pkgAgg struct {
	count int
	total int64
}

// pendingStart mirrors the per-package pairing state machine in
// pkg/predict.Tracker.Feed: a MergeStart always replaces any prior in-flight
// start for the same package, and only a MergeStop whose version/iter match
// the in-flight start records a duration.
type pendingStart struct {
	version string
	iter    string
	ts      int64
}

// syncPkgLabel is the pseudo-package name sync counts/durations are
// aggregated under, keeping the repository-sync row in the same bucketed
// table as the per-package merge rows instead of a separate output shape.
const syncPkgLabel = "(sync)"

var statsCmd = &cobra.Command{
	Use:    "stats",
	Short:  "Summarize merge counts and durations, optionally bucketed by time span",
	PreRun: onCommandStart,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		render.InitColorState(nil, os.Stdout)

		events, err := streamEvents(cmd.Context(), cfg, streamOpts{
			sourceName: statsOpts.source,
			pkg:        statsOpts.pkg,
			exactPkg:   statsOpts.exact,
			since:      statsOpts.since,
			until:      statsOpts.until,
			utc:        statsOpts.utc,
			show:       statsOpts.show,
		})
		if err != nil {
			return err
		}

		var span *bucket.Timespan
		if statsOpts.group != "" {
			s, err := bucket.ParseTimespan(statsOpts.group)
			if err != nil {
				return fmt.Errorf("parsing --group: %w", err)
			}
			span = &s
		}

		offset := tzoffset.Get(statsOpts.utc, nil)
		rows := computeStats(events, span, offset)

		if statsOpts.jsonOut {
			return render.JSON(os.Stdout, rows)
		}
		printStatsTable(rows, span != nil)
		return nil
	},
}

// computeStats groups completed MergeStart/MergeStop pairs (and, under
// syncPkgLabel, completed SyncStart/SyncStop pairs) into calendar buckets
// (or a single implicit bucket when span is nil) and aggregates count/total
// duration per package within each bucket. Each completed duration is
// attributed to the bucket containing its Stop event.
func computeStats(events []emergelog.Event, span *bucket.Timespan, offset int) []statsRow {
	pending := map[string]*pendingStart{}
	var syncStart *int64

	type bucketKey struct {
		header string
		pkg    string
	}
	order := []bucketKey{}
	aggs := map[bucketKey]*pkgAgg{}

	var bucketEnd int64
	var bucketHeader string
	haveBucket := false

	advanceBucket := func(ts int64) {
		if span == nil {
			if !haveBucket {
				bucketHeader = ""
				haveBucket = true
			}
			return
		}
		if !haveBucket || ts >= bucketEnd {
			bucketHeader = bucket.Header(*span, ts, offset)
			bucketEnd = bucket.Next(*span, ts, offset)
			haveBucket = true
		}
	}

	record := func(ts int64, pkg string, dur int64) {
		advanceBucket(ts)
		key := bucketKey{header: bucketHeader, pkg: pkg}
		a, ok := aggs[key]
		if !ok {
			a = &pkgAgg{}
			aggs[key] = a
			order = append(order, key)
		}
		a.count++
		a.total += dur
	}

	for _, ev := range events {
		switch ev.Kind {
		case emergelog.MergeStart:
			pending[ev.Pkg()] = &pendingStart{version: ev.Version(), iter: ev.Iter(), ts: ev.TS}
		case emergelog.MergeStop:
			p, ok := pending[ev.Pkg()]
			if !ok {
				continue
			}
			delete(pending, ev.Pkg())
			if p.version != ev.Version() || p.iter != ev.Iter() {
				continue
			}
			record(ev.TS, ev.Pkg(), ev.TS-p.ts)

		case emergelog.SyncStart:
			ts := ev.TS
			syncStart = &ts
		case emergelog.SyncStop:
			if syncStart == nil {
				continue
			}
			record(ev.TS, syncPkgLabel, ev.TS-*syncStart)
			syncStart = nil
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].header != order[j].header {
			return order[i].header < order[j].header
		}
		return order[i].pkg < order[j].pkg
	})

	rows := make([]statsRow, 0, len(order))
	for _, key := range order {
		a := aggs[key]
		rows = append(rows, statsRow{
			Bucket:   key.header,
			Pkg:      key.pkg,
			Count:    a.count,
			TotalSec: a.total,
			AvgSec:   a.total / int64(a.count),
		})
	}
	return rows
}

func printStatsTable(rows []statsRow, showBucket bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if showBucket {
		fmt.Fprintln(w, "BUCKET\tPACKAGE\tCOUNT\tTOTAL\tAVG")
	} else {
		fmt.Fprintln(w, "PACKAGE\tCOUNT\tTOTAL\tAVG")
	}
	for _, r := range rows {
		total := formatSeconds(r.TotalSec)
		avg := formatSeconds(r.AvgSec)
		if showBucket {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.Bucket, r.Pkg, r.Count, total, avg)
		} else {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", r.Pkg, r.Count, total, avg)
		}
	}
}

func formatSeconds(s int64) string {
	d := s
	h := d / 3600
	m := (d % 3600) / 60
	sec := d % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsOpts.source, "source", "", "named source profile (defaults to the config's default source)")
	statsCmd.Flags().StringVar(&statsOpts.pkg, "pkg", "", "package atom filter (regex unless --exact)")
	statsCmd.Flags().BoolVar(&statsOpts.exact, "exact", false, "match --pkg exactly instead of as a regex")
	statsCmd.Flags().StringVar(&statsOpts.since, "since", "", "only events at or after this date/relative-ago expression")
	statsCmd.Flags().StringVar(&statsOpts.until, "until", "", "only events at or before this date/relative-ago expression")
	statsCmd.Flags().BoolVar(&statsOpts.utc, "utc", false, "interpret timestamps in UTC instead of local time")
	statsCmd.Flags().StringVarP(&statsOpts.show, "show", "s", "", "event classes to show: m(erge),u(nmerge),s(ync),p(kg),t(ot),a(ll) comma-separated (default all)")
	statsCmd.Flags().StringVarP(&statsOpts.group, "group", "g", "", "bucket results by y(ear), m(onth), w(eek), or d(ay)")
	statsCmd.Flags().BoolVar(&statsOpts.jsonOut, "json", false, "output JSON instead of a table")
}
