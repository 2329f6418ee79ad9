// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/bascanada/buildlog/pkg/emergelog"
	"github.com/bascanada/buildlog/pkg/predict"
	"github.com/bascanada/buildlog/pkg/pretend"
	"github.com/bascanada/buildlog/pkg/render"
)

var predictOpts struct {
	source     string
	pretendCmd string
	show       string
	window     int
	jsonOut    bool
}

var predictCmd = &cobra.Command{
	Use:    "predict",
	Short:  "Estimate ETAs for a pending build set from this machine's merge history",
	PreRun: onCommandStart,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		render.InitColorState(nil, os.Stdout)

		events, err := streamEvents(cmd.Context(), cfg, streamOpts{sourceName: predictOpts.source, show: predictOpts.show})
		if err != nil {
			return err
		}

		window := predictOpts.window
		if window == 0 {
			window = cfg.DefaultWindow
		}
		tracker := predict.NewTracker(window)

		pending := inFlightPending(events, tracker)

		if predictOpts.pretendCmd != "" || len(pending) == 0 {
			dryRun, err := readPretend(cmd.Context(), predictOpts.pretendCmd)
			if err != nil {
				return err
			}
			pending = dryRun
		}

		estimates, total := tracker.Predict(pending)

		if predictOpts.jsonOut {
			return render.JSON(os.Stdout, struct {
				Estimates []predict.Estimate `json:"estimates"`
				TotalETA  float64             `json:"total_eta_seconds"`
			}{estimates, total})
		}
		render.Predict(os.Stdout, estimates, total)
		return nil
	},
}

// inFlightPending replays events through tracker (recording completed
// durations as it goes, same as pkg/tui's live dashboard) and returns the
// packages that are currently mid-merge: an unmatched MergeStart with no
// later MergeStop.
func inFlightPending(events []emergelog.Event, tracker *predict.Tracker) []predict.Pending {
	inFlight := map[string]predict.Pending{}
	order := []string{}

	for _, ev := range events {
		tracker.Feed(ev)
		switch ev.Kind {
		case emergelog.MergeStart:
			if _, ok := inFlight[ev.Pkg()]; !ok {
				order = append(order, ev.Pkg())
			}
			inFlight[ev.Pkg()] = predict.Pending{Pkg: ev.Pkg(), Version: ev.Version()}
		case emergelog.MergeStop:
			delete(inFlight, ev.Pkg())
		}
	}

	out := make([]predict.Pending, 0, len(inFlight))
	for _, pkg := range order {
		if p, ok := inFlight[pkg]; ok {
			out = append(out, p)
		}
	}
	return out
}

// readPretend runs predictOpts.pretendCmd (or, if empty, "emerge --pretend
// --update --deep @world") and parses its stdout for the pending build
// list.
func readPretend(ctx context.Context, cmdline string) ([]predict.Pending, error) {
	if cmdline == "" {
		cmdline = "emerge --pretend --update --deep @world"
	}
	c := exec.CommandContext(ctx, "sh", "-c", cmdline)
	out, err := c.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("starting pretend command: %w", err)
	}
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("starting pretend command: %w", err)
	}
	items := pretend.Read(out, "pretend", nil)
	if err := c.Wait(); err != nil {
		return nil, fmt.Errorf("running pretend command: %w", err)
	}

	pending := make([]predict.Pending, 0, len(items))
	for _, it := range items {
		pending = append(pending, predict.Pending{Pkg: it.Pkg, Version: it.Version})
	}
	return pending, nil
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVar(&predictOpts.source, "source", "", "named source profile (defaults to the config's default source)")
	predictCmd.Flags().StringVar(&predictOpts.pretendCmd, "pretend-cmd", "", "dry-run command to source the pending build list from (default: emerge --pretend --update --deep @world)")
	predictCmd.Flags().StringVarP(&predictOpts.show, "show", "s", "", "event classes to read from history: m(erge),u(nmerge),s(ync),p(kg),t(ot),a(ll) comma-separated (default all; must include merge to detect in-flight builds)")
	predictCmd.Flags().IntVar(&predictOpts.window, "window", 0, "tail window of past durations to average over (default: config's defaultWindow)")
	predictCmd.Flags().BoolVar(&predictOpts.jsonOut, "json", false, "output JSON instead of a table")
}
