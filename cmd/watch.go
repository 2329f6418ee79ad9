// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bascanada/buildlog/pkg/applog"
	"github.com/bascanada/buildlog/pkg/config"
	"github.com/bascanada/buildlog/pkg/emergelog"
	"github.com/bascanada/buildlog/pkg/filter"
	"github.com/bascanada/buildlog/pkg/predict"
	"github.com/bascanada/buildlog/pkg/source"
	"github.com/bascanada/buildlog/pkg/tui"
)

var watchOpts struct {
	source string
	window int
	show   string
}

var watchCmd = &cobra.Command{
	Use:    "watch",
	Short:  "Live dashboard of in-progress and recently finished merges",
	PreRun: onCommandStart,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name := watchOpts.source
		if name == "" {
			name = cfg.DefaultSource
		}
		src, err := openFollowingSource(cfg, name)
		if err != nil {
			return err
		}
		rc, err := src.Open(cmd.Context())
		if err != nil {
			return fmt.Errorf("opening source: %w", err)
		}
		defer rc.Close()

		window := watchOpts.window
		if window == 0 {
			window = cfg.DefaultWindow
		}

		show, err := emergelog.ParseShow(watchOpts.show)
		if err != nil {
			return err
		}

		events := emergelog.Stream(cmd.Context(), rc, name, show, filter.NewTimestamp(nil, nil), filter.Package{}, applog.Default)

		model := tui.New(events, predict.NewTracker(window))
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}

// openFollowingSource resolves name and opens it with followingSourceConfig
// applied.
func openFollowingSource(cfg *config.Config, name string) (source.Source, error) {
	srcCfg, err := followingSourceConfig(cfg, name)
	if err != nil {
		return nil, err
	}
	return source.New(srcCfg)
}

// followingSourceConfig resolves name and, for the local backend, forces its
// "follow" option on so watch gets new lines as they're appended instead of
// exiting once the file's current contents are drained. Other backends are
// returned unchanged: k8s/docker set client-side Follow and ssh runs its
// configured command (typically a tail), while cloudwatch reads the events
// present when it is opened and then ends, without following.
func followingSourceConfig(cfg *config.Config, name string) (config.Source, error) {
	srcCfg, ok := cfg.Sources[name]
	if !ok {
		return config.Source{}, fmt.Errorf("unknown source %q", name)
	}
	if srcCfg.Type != "local" {
		return srcCfg, nil
	}
	opts := make(map[string]string, len(srcCfg.Options)+1)
	for k, v := range srcCfg.Options {
		opts[k] = v
	}
	opts["follow"] = "true"
	srcCfg.Options = opts
	return srcCfg, nil
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchOpts.source, "source", "", "named source profile (defaults to the config's default source)")
	watchCmd.Flags().IntVar(&watchOpts.window, "window", 0, "tail window of past durations to average over (default: config's defaultWindow)")
	watchCmd.Flags().StringVarP(&watchOpts.show, "show", "s", "", "event classes to show: m(erge),u(nmerge),s(ync),p(kg),t(ot),a(ll) comma-separated (default all)")
}
