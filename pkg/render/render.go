// Package render formats history/stats/predict output for the terminal:
// color-aware tables, JSON, and a one-shot clipboard export. It consumes
// the CORE's event/duration/estimate values and never feeds back into them.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/TylerBrock/colorjson"
	"github.com/atotto/clipboard"
	"github.com/bascanada/buildlog/pkg/emergelog"
	"github.com/bascanada/buildlog/pkg/predict"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorState tracks whether ANSI color output is currently enabled.
type ColorState struct {
	enabled bool
}

var global = &ColorState{}

// InitColorState decides whether to color output, in priority order:
// an explicit override, then the NO_COLOR convention, then TTY detection.
func InitColorState(explicitSetting *bool, w io.Writer) {
	switch {
	case explicitSetting != nil:
		global.enabled = *explicitSetting
	case os.Getenv("NO_COLOR") != "":
		global.enabled = false
	default:
		if f, ok := w.(*os.File); ok {
			global.enabled = isatty.IsTerminal(f.Fd())
		} else {
			global.enabled = false
		}
	}
	color.NoColor = !global.enabled
}

// IsColorEnabled reports the current color state.
func IsColorEnabled() bool {
	return global.enabled
}

// History renders a tab-aligned table of events to w, one row per event:
// timestamp, kind, package, version, iteration.
func History(w io.Writer, events []emergelog.Event) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tPACKAGE\tVERSION\tITER")
	for _, ev := range events {
		kind := kindLabel(ev.Kind)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			time.Unix(ev.TS, 0).Format(time.RFC3339), kind, ev.Pkg(), ev.Version(), ev.Iter())
	}
	tw.Flush()
}

func kindLabel(k emergelog.Kind) string {
	label := k.String()
	if !global.enabled {
		return label
	}
	switch k {
	case emergelog.MergeStart, emergelog.SyncStart:
		return color.YellowString(label)
	case emergelog.MergeStop, emergelog.SyncStop:
		return color.GreenString(label)
	case emergelog.UnmergeStart, emergelog.UnmergeStop:
		return color.RedString(label)
	default:
		return label
	}
}

// Predict renders per-package ETA estimates and the aggregate total.
func Predict(w io.Writer, estimates []predict.Estimate, totalETA float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PACKAGE\tVERSION\tETA\tKNOWN")
	for _, e := range estimates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", e.Pkg, e.Version, formatSeconds(e.Seconds), e.Known)
	}
	tw.Flush()
	fmt.Fprintf(w, "total ETA: %s\n", formatSeconds(totalETA))
}

func formatSeconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Second).String()
}

// JSON writes v as a single JSON document followed by a newline,
// pretty-printed with color when color output is enabled and plain-compact
// otherwise.
func JSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if !global.enabled {
		_, err := w.Write(append(data, '\n'))
		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	f := colorjson.NewFormatter()
	f.Indent = 2
	pretty, err := f.Marshal(generic)
	if err != nil {
		return err
	}
	_, err = w.Write(append(pretty, '\n'))
	return err
}

// CopyToClipboard copies text to the system clipboard, for pasting a single
// package's history into a chat or ticket.
func CopyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}
