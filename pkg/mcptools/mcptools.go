// Package mcptools exposes build history, ETA prediction, and the current
// in-progress build set as MCP tools, so an agent can ask "what's building"
// or "how long until X finishes" the same way a human runs "buildlog
// history"/"buildlog predict".
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bascanada/buildlog/pkg/applog"
	"github.com/bascanada/buildlog/pkg/config"
	"github.com/bascanada/buildlog/pkg/emergedate"
	"github.com/bascanada/buildlog/pkg/emergelog"
	"github.com/bascanada/buildlog/pkg/filter"
	"github.com/bascanada/buildlog/pkg/predict"
	"github.com/bascanada/buildlog/pkg/source"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Deps is what the tool handlers need to resolve a named source and turn it
// into an event stream: the config whose named sources are opened through
// the registered pkg/source backends, the UTC offset for "since" dates, and
// the tail window.
type Deps struct {
	Config *config.Config
	Offset int
	Window int
}

// NewServer builds the MCP server and registers the three build tools.
func NewServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"buildlog",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(historyTool(), historyHandler(deps))
	s.AddTool(predictTool(), predictHandler(deps))
	s.AddTool(currentBuildsTool(), currentBuildsHandler(deps))

	return s
}

func historyTool() mcp.Tool {
	return mcp.NewTool("build_history",
		mcp.WithDescription(`List merge/unmerge/sync events recorded in a build log.

Usage: build_history source=<name> pkg=<atom> since=<date-or-ago>

Parameters:
  source (string, optional): named source profile from config; defaults to the configured default source.
  pkg (string, optional): package atom filter, substring match unless it contains '/', in which case it matches category/name exactly.
  since (string, optional): ISO8601 prefix or a relative "ago" expression of number/unit pairs (e.g. "2h", "1 day, 3 hours"). Defaults to no lower bound.
  show (string, optional): comma-separated event classes to include: m(erge),u(nmerge),s(ync),p(kg),t(ot),a(ll). Defaults to all.

Returns: JSON array of events, each {kind, timestamp, pkg, version, iter}.`),
		mcp.WithString("source", mcp.Description("Named source profile.")),
		mcp.WithString("pkg", mcp.Description("Package atom filter.")),
		mcp.WithString("since", mcp.Description("ISO8601 prefix or relative \"ago\" expression.")),
		mcp.WithString("show", mcp.Description("Comma-separated event classes: m,u,s,p,t,a.")),
	)
}

func historyHandler(deps Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID := uuid.New().String()
		applog.Debug("mcp[%s] build_history", callID)

		events, err := readEvents(ctx, deps, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		type row struct {
			Kind    string `json:"kind"`
			TS      int64  `json:"timestamp"`
			Pkg     string `json:"pkg,omitempty"`
			Version string `json:"version,omitempty"`
			Iter    string `json:"iter,omitempty"`
		}
		rows := make([]row, 0, len(events))
		for _, ev := range events {
			rows = append(rows, row{Kind: ev.Kind.String(), TS: ev.TS, Pkg: ev.Pkg(), Version: ev.Version(), Iter: ev.Iter()})
		}

		data, err := json.Marshal(rows)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal events: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func predictTool() mcp.Tool {
	return mcp.NewTool("build_predict",
		mcp.WithDescription(`Estimate ETA for every build currently in progress, from historical merge durations.

Usage: build_predict source=<name>

Parameters:
  source (string, optional): named source profile; defaults to the configured default source.
  show (string, optional): comma-separated event classes to read from history: m(erge),u(nmerge),s(ync),p(kg),t(ot),a(ll). Defaults to all; must include merge to detect in-flight builds.

Returns: JSON {estimates: [{pkg, version, seconds, known}], totalEtaSeconds}.`),
		mcp.WithString("source", mcp.Description("Named source profile.")),
		mcp.WithString("show", mcp.Description("Comma-separated event classes: m,u,s,p,t,a.")),
	)
}

func predictHandler(deps Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID := uuid.New().String()
		applog.Debug("mcp[%s] build_predict", callID)

		events, err := readEvents(ctx, deps, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tracker := predict.NewTracker(window(deps))
		pending := feedAndCollectPending(tracker, events)

		estimates, total := tracker.Predict(pending)

		resp := struct {
			Estimates       []predict.Estimate `json:"estimates"`
			TotalETASeconds float64             `json:"totalEtaSeconds"`
		}{Estimates: estimates, TotalETASeconds: total}

		data, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal estimates: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func currentBuildsTool() mcp.Tool {
	return mcp.NewTool("current_builds",
		mcp.WithDescription(`List packages currently mid-build: a MergeStart with no matching MergeStop yet.

Usage: current_builds source=<name>

Parameters:
  source (string, optional): named source profile; defaults to the configured default source.
  show (string, optional): comma-separated event classes to read from history: m(erge),u(nmerge),s(ync),p(kg),t(ot),a(ll). Defaults to all; must include merge to detect in-flight builds.

Returns: JSON array of {pkg, version}; the build's start time is not included.`),
		mcp.WithString("source", mcp.Description("Named source profile.")),
		mcp.WithString("show", mcp.Description("Comma-separated event classes: m,u,s,p,t,a.")),
	)
}

func currentBuildsHandler(deps Deps) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID := uuid.New().String()
		applog.Debug("mcp[%s] current_builds", callID)

		events, err := readEvents(ctx, deps, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tracker := predict.NewTracker(window(deps))
		pending := feedAndCollectPending(tracker, events)

		type row struct {
			Pkg     string `json:"pkg"`
			Version string `json:"version"`
		}
		rows := make([]row, 0, len(pending))
		for _, p := range pending {
			rows = append(rows, row{Pkg: p.Pkg, Version: p.Version})
		}

		data, err := json.Marshal(rows)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal pending builds: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// readEvents resolves the "source" arg against deps.Config, opens it, and
// streams every event matching the optional "pkg"/"since" filters.
func readEvents(ctx context.Context, deps Deps, req mcp.CallToolRequest) ([]emergelog.Event, error) {
	name, _ := req.RequireString("source")
	if name == "" {
		name = deps.Config.DefaultSource
	}
	srcCfg, ok := deps.Config.Sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}

	src, err := source.New(srcCfg)
	if err != nil {
		return nil, fmt.Errorf("building source %q: %w", name, err)
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening source %q: %w", name, err)
	}
	defer rc.Close()

	ts := filter.NewTimestamp(nil, nil)
	if since, e := req.RequireString("since"); e == nil && since != "" {
		min, perr := emergedate.Parse(since, deps.Offset)
		if perr != nil {
			return nil, fmt.Errorf("parsing since: %w", perr)
		}
		ts = filter.NewTimestamp(&min, nil)
	}

	pkgFilter, _ := req.RequireString("pkg")
	pkg, err := filter.NewPackage(pkgFilter, strings.Contains(pkgFilter, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing pkg filter: %w", err)
	}

	showSpec, _ := req.RequireString("show")
	show, err := emergelog.ParseShow(showSpec)
	if err != nil {
		return nil, fmt.Errorf("parsing show filter: %w", err)
	}

	ch := emergelog.Stream(ctx, rc, name, show, ts, pkg, applog.Default)

	var events []emergelog.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events, nil
}

func feedAndCollectPending(tracker *predict.Tracker, events []emergelog.Event) []predict.Pending {
	inFlight := map[string]predict.Pending{}
	var order []string

	for _, ev := range events {
		tracker.Feed(ev)

		switch ev.Kind {
		case emergelog.MergeStart:
			if _, existed := inFlight[ev.Pkg()]; !existed {
				order = append(order, ev.Pkg())
			}
			inFlight[ev.Pkg()] = predict.Pending{Pkg: ev.Pkg(), Version: ev.Version()}

		case emergelog.MergeStop:
			delete(inFlight, ev.Pkg())
		}
	}

	pending := make([]predict.Pending, 0, len(inFlight))
	for _, pkg := range order {
		if p, ok := inFlight[pkg]; ok {
			pending = append(pending, p)
		}
	}
	return pending
}

func window(deps Deps) int {
	if deps.Window > 0 {
		return deps.Window
	}
	if deps.Config != nil && deps.Config.DefaultWindow > 0 {
		return deps.Config.DefaultWindow
	}
	return predict.DefaultWindow
}
