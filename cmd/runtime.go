package cmd

import (
	"context"
	"fmt"

	"github.com/bascanada/buildlog/pkg/applog"
	"github.com/bascanada/buildlog/pkg/config"
	"github.com/bascanada/buildlog/pkg/emergedate"
	"github.com/bascanada/buildlog/pkg/emergelog"
	"github.com/bascanada/buildlog/pkg/filter"
	"github.com/bascanada/buildlog/pkg/source"
	"github.com/bascanada/buildlog/pkg/tzoffset"
)

// loadConfig resolves and merges the YAML config, following the same
// precedence chain pkg/config.Load implements.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath, nil)
}

// openNamedSource resolves name against cfg (falling back to its default
// source) and opens it.
func openNamedSource(ctx context.Context, cfg *config.Config, name string) (source.Source, error) {
	if name == "" {
		name = cfg.DefaultSource
	}
	srcCfg, ok := cfg.Sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}
	return source.New(srcCfg)
}

// streamOpts bundles the filter parameters shared by history/stats/predict.
type streamOpts struct {
	sourceName string
	pkg        string
	exactPkg   bool
	since      string
	until      string
	utc        bool
	show       string
}

// streamEvents opens opts.sourceName (or the config default), tokenizes it,
// and returns every event in file order, applying the timestamp/pkg filters.
// The UTC offset is sampled once up front (spec's "sample before spawning
// goroutines" requirement) and threaded through both the date parse and the
// tokenizer.
func streamEvents(ctx context.Context, cfg *config.Config, opts streamOpts) ([]emergelog.Event, error) {
	offset := tzoffset.Get(opts.utc, applog.Warnf)

	show, err := emergelog.ParseShow(opts.show)
	if err != nil {
		return nil, err
	}

	src, err := openNamedSource(ctx, cfg, opts.sourceName)
	if err != nil {
		return nil, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer rc.Close()

	var min, max *int64
	if opts.since != "" {
		v, err := emergedate.Parse(opts.since, offset)
		if err != nil {
			return nil, fmt.Errorf("parsing --since: %w", err)
		}
		min = &v
	}
	if opts.until != "" {
		v, err := emergedate.Parse(opts.until, offset)
		if err != nil {
			return nil, fmt.Errorf("parsing --until: %w", err)
		}
		max = &v
	}
	ts := filter.NewTimestamp(min, max)

	pkg, err := filter.NewPackage(opts.pkg, opts.exactPkg)
	if err != nil {
		return nil, fmt.Errorf("parsing --pkg: %w", err)
	}

	ch := emergelog.Stream(ctx, rc, opts.sourceName, show, ts, pkg, applog.Default)

	var events []emergelog.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events, nil
}
