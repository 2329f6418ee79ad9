// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bascanada/buildlog/pkg/emergelog"
	"github.com/bascanada/buildlog/pkg/render"
)

// historyRow is the JSON-serializable projection of an emergelog.Event:
// Event's Pkg/Version/Iter are methods over an unexported shared buffer,
// not exported fields, so they need an explicit shape to marshal.
type historyRow struct {
	Kind    string `json:"kind"`
	TS      int64  `json:"timestamp"`
	Pkg     string `json:"pkg,omitempty"`
	Version string `json:"version,omitempty"`
	Iter    string `json:"iter,omitempty"`
}

func toHistoryRows(events []emergelog.Event) []historyRow {
	rows := make([]historyRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, historyRow{Kind: ev.Kind.String(), TS: ev.TS, Pkg: ev.Pkg(), Version: ev.Version(), Iter: ev.Iter()})
	}
	return rows
}

var historyOpts struct {
	source   string
	pkg      string
	exact    bool
	since    string
	until    string
	utc      bool
	show     string
	jsonOut  bool
	noColor  bool
	copyFlag bool
}

var historyCmd = &cobra.Command{
	Use:    "history",
	Short:  "List merge/unmerge/sync events recorded in a build log",
	PreRun: onCommandStart,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var colorOverride *bool
		if cmd.Flags().Changed("no-color") {
			v := !historyOpts.noColor
			colorOverride = &v
		}
		render.InitColorState(colorOverride, os.Stdout)

		events, err := streamEvents(cmd.Context(), cfg, streamOpts{
			sourceName: historyOpts.source,
			pkg:        historyOpts.pkg,
			exactPkg:   historyOpts.exact,
			since:      historyOpts.since,
			until:      historyOpts.until,
			utc:        historyOpts.utc,
			show:       historyOpts.show,
		})
		if err != nil {
			return err
		}

		if historyOpts.jsonOut {
			if err := render.JSON(os.Stdout, toHistoryRows(events)); err != nil {
				return err
			}
		} else {
			render.History(os.Stdout, events)
		}

		if historyOpts.copyFlag {
			var buf []byte
			for _, ev := range events {
				buf = append(buf, []byte(fmt.Sprintf("%s %s %s\n", ev.Kind, ev.Pkg(), ev.Version()))...)
			}
			if err := render.CopyToClipboard(string(buf)); err != nil {
				return fmt.Errorf("copying to clipboard: %w", err)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyOpts.source, "source", "", "named source profile (defaults to the config's default source)")
	historyCmd.Flags().StringVar(&historyOpts.pkg, "pkg", "", "package atom filter (regex unless --exact)")
	historyCmd.Flags().BoolVar(&historyOpts.exact, "exact", false, "match --pkg exactly instead of as a regex")
	historyCmd.Flags().StringVar(&historyOpts.since, "since", "", "only events at or after this date/relative-ago expression")
	historyCmd.Flags().StringVar(&historyOpts.until, "until", "", "only events at or before this date/relative-ago expression")
	historyCmd.Flags().BoolVar(&historyOpts.utc, "utc", false, "interpret/display timestamps in UTC instead of local time")
	historyCmd.Flags().StringVarP(&historyOpts.show, "show", "s", "", "event classes to show: m(erge),u(nmerge),s(ync),p(kg),t(ot),a(ll) comma-separated (default all)")
	historyCmd.Flags().BoolVar(&historyOpts.jsonOut, "json", false, "output JSON instead of a table")
	historyCmd.Flags().BoolVar(&historyOpts.noColor, "no-color", false, "disable ANSI color output")
	historyCmd.Flags().BoolVar(&historyOpts.copyFlag, "copy", false, "copy the listed events to the system clipboard, one 'kind package version' line each")
}
