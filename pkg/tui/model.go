// SPDX-License-Identifier: GPL-3.0-only

// Package tui implements the live build dashboard ("buildlog watch"): it
// tails the historical event stream, maintains the set of in-progress
// builds (unmatched MergeStart events), and renders them with elapsed time
// and the predictor's ETA, refreshed on a tick.
package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/bascanada/buildlog/pkg/emergelog"
	"github.com/bascanada/buildlog/pkg/predict"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const tickInterval = time.Second

// pendingBuild is a MergeStart with no matching MergeStop yet.
type pendingBuild struct {
	pkg, version string
	startedAt    int64
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	events  <-chan emergelog.Event
	tracker *predict.Tracker

	pending map[string]pendingBuild
	order   []string

	table  table.Model
	styles Styles

	quitting bool
	closed   bool
	err      error
	now      func() time.Time
}

type eventMsg struct {
	ev emergelog.Event
	ok bool
}

type tickMsg time.Time

// New builds a dashboard Model that reads from events until the channel
// closes, feeding tracker for ETA prediction.
func New(events <-chan emergelog.Event, tracker *predict.Tracker) Model {
	cols := []table.Column{
		{Title: "PACKAGE", Width: 30},
		{Title: "VERSION", Width: 14},
		{Title: "ELAPSED", Width: 10},
		{Title: "ETA", Width: 10},
		{Title: "STATUS", Width: 10},
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(nil),
		table.WithFocused(false),
		table.WithHeight(15),
	)

	styles := DefaultStyles()
	tableStyles := table.DefaultStyles()
	tableStyles.Header = tableStyles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true)
	tableStyles.Selected = tableStyles.Selected.
		Foreground(ColorText).
		Background(ColorBg)
	t.SetStyles(tableStyles)

	return Model{
		events:  events,
		tracker: tracker,
		pending: map[string]pendingBuild{},
		table:   t,
		styles:  styles,
		now:     time.Now,
	}
}

// Init starts the event-wait loop and the refresh tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tick())
}

func waitForEvent(events <-chan emergelog.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{ev: ev, ok: ok}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 6)

	case eventMsg:
		if !msg.ok {
			m.closed = true
			return m, nil
		}
		m.applyEvent(msg.ev)
		return m, waitForEvent(m.events)

	case tickMsg:
		m.refreshRows()
		return m, tick()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) applyEvent(ev emergelog.Event) {
	m.tracker.Feed(ev)

	switch ev.Kind {
	case emergelog.MergeStart:
		if _, existed := m.pending[ev.Pkg()]; !existed {
			m.order = append(m.order, ev.Pkg())
		}
		m.pending[ev.Pkg()] = pendingBuild{pkg: ev.Pkg(), version: ev.Version(), startedAt: ev.TS}

	case emergelog.MergeStop:
		delete(m.pending, ev.Pkg())
		m.order = removeString(m.order, ev.Pkg())
	}
}

func removeString(xs []string, s string) []string {
	out := xs[:0]
	for _, x := range xs {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}

func (m *Model) refreshRows() {
	pendingList := make([]predict.Pending, 0, len(m.pending))
	for _, pkg := range m.order {
		pendingList = append(pendingList, predict.Pending{Pkg: m.pending[pkg].pkg, Version: m.pending[pkg].version})
	}
	estimates, _ := m.tracker.Predict(pendingList)

	byPkg := make(map[string]predict.Estimate, len(estimates))
	for _, e := range estimates {
		byPkg[e.Pkg] = e
	}

	rows := make([]table.Row, 0, len(m.order))
	nowUnix := m.now().Unix()
	for _, pkg := range m.order {
		pb := m.pending[pkg]
		elapsed := time.Duration(nowUnix-pb.startedAt) * time.Second

		eta := "unknown"
		if e, ok := byPkg[pkg]; ok && e.Known {
			eta = time.Duration(e.Seconds * float64(time.Second)).Round(time.Second).String()
		}

		rows = append(rows, table.Row{pb.pkg, pb.version, elapsed.Round(time.Second).String(), eta, "building"})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	m.table.SetRows(rows)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := m.styles.Header.Render(fmt.Sprintf("buildlog watch — %d build(s) in progress", len(m.pending)))
	footer := m.styles.Footer.Render("")
	if m.closed {
		footer = m.styles.Footer.Render("source closed")
	}
	help := m.styles.HelpBar.Render("q: quit")

	return header + "\n" + m.table.View() + "\n" + footer + "\n" + help
}
