package emergelog

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/bascanada/buildlog/pkg/atom"
	"github.com/bascanada/buildlog/pkg/filter"
)

// Logger is the minimal warning sink the tokenizer needs. pkg/applog's
// Default value satisfies it.
type Logger interface {
	Warnf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warnf(string, ...any) {}

// Stream reads name from r line by line on its own goroutine and emits
// every event that passes show/ts/pkg onto the returned channel, in file
// order. The channel is closed when the reader reaches EOF or hits an I/O
// error, or when the producer finds ctx canceled while sending an event;
// callers never see a partial event.
//
// Cancellation: the real equivalent of dropping the receiver side of an
// unbounded channel (the reference implementation's termination signal)
// is canceling ctx — the producer's next send observes ctx.Done() and
// returns without sending. Lines that yield no event do not check ctx, so
// reading goes on until the next matching line or EOF.
func Stream(ctx context.Context, r io.Reader, name string, show Show, ts filter.Timestamp, pkg filter.Package, logger Logger) <-chan Event {
	if logger == nil {
		logger = noopLogger{}
	}
	out := make(chan Event, 256)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var prevTS int64
		lineNo := 0

		for scanner.Scan() {
			lineNo++
			line := scanner.Text()

			t, rest, status := parseTimestamp(line, ts)
			if status == tsMalformed {
				logger.Warnf("%s:%d: malformed timestamp", name, lineNo)
				continue
			}
			if status == tsFiltered {
				continue
			}
			if prevTS > t {
				logger.Warnf("%s:%d: clock jump: %d -> %d", name, lineNo, prevTS, t)
			}
			prevTS = t

			ev, matched := dispatch(show, t, rest, pkg)
			if !matched {
				continue
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			logger.Warnf("%s:%d: %s", name, lineNo, err)
		}
	}()

	return out
}

// tsStatus classifies the outcome of parseTimestamp: whether the line
// should warn (malformed), be silently dropped (filtered out, no event
// and no clock-jump bookkeeping), or proceed to dispatch.
type tsStatus int

const (
	tsOK tsStatus = iota
	tsMalformed
	tsFiltered
)

// parseTimestamp splits "<ts>: rest" off the front of line. A bad/missing
// integer timestamp is malformed (caller should warn); a well-formed
// timestamp excluded by ts is filtered (dropped silently, never updating
// clock-jump state, matching the reference's filter-before-dispatch
// ordering).
func parseTimestamp(line string, ts filter.Timestamp) (t int64, rest string, status tsStatus) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return 0, "", tsMalformed
	}
	n, err := strconv.ParseInt(line[:idx], 10, 64)
	if err != nil {
		return 0, "", tsMalformed
	}
	if !ts.Match(n) {
		return 0, "", tsFiltered
	}
	body := line[idx:]
	if len(body) < 2 {
		return 0, "", tsMalformed
	}
	body = strings.TrimLeftFunc(body[2:], unicode.IsSpace)
	return n, body, tsOK
}

// dispatch runs the fixed prefix-test order, first match wins.
func dispatch(show Show, ts int64, rest string, pkg filter.Package) (Event, bool) {
	switch {
	case strings.HasPrefix(rest, ">>> emer"):
		return parseMergeStart(show.mergeEnabled(), ts, rest, pkg)
	case strings.HasPrefix(rest, "::: comp"):
		return parseMergeStop(show.mergeEnabled(), ts, rest, pkg)
	case strings.HasPrefix(rest, "=== Unmerging..."):
		return parseUnmergeStart(show.unmergeEnabled(), ts, rest, pkg)
	case strings.HasPrefix(rest, ">>> unmerge success"):
		return parseUnmergeStop(show.unmergeEnabled(), ts, rest, pkg)
	case rest == "=== sync":
		return parseSyncStart(show.syncEnabled(), ts)
	case strings.HasPrefix(rest, "=== Sync completed"):
		return parseSyncStop(show.syncEnabled(), ts)
	default:
		return Event{}, false
	}
}

func parseMergeStart(enabled bool, ts int64, rest string, pkg filter.Package) (Event, bool) {
	if !enabled {
		return Event{}, false
	}
	tok := strings.Fields(rest)
	if len(tok) < 6 || len(tok[2]) < 2 {
		return Event{}, false
	}
	ebuild, version, err := atom.Split(tok[5])
	if err != nil || !pkg.Match(ebuild) {
		return Event{}, false
	}
	iter := tok[4] + tok[2][1:]
	return newMergeEvent(MergeStart, ts, ebuild, version, iter), true
}

func parseMergeStop(enabled bool, ts int64, rest string, pkg filter.Package) (Event, bool) {
	if !enabled {
		return Event{}, false
	}
	tok := strings.Fields(rest)
	if len(tok) < 7 || len(tok[3]) < 2 {
		return Event{}, false
	}
	ebuild, version, err := atom.Split(tok[6])
	if err != nil || !pkg.Match(ebuild) {
		return Event{}, false
	}
	iter := tok[5] + tok[3][1:]
	return newMergeEvent(MergeStop, ts, ebuild, version, iter), true
}

func parseUnmergeStart(enabled bool, ts int64, rest string, pkg filter.Package) (Event, bool) {
	if !enabled {
		return Event{}, false
	}
	tok := strings.Fields(rest)
	if len(tok) < 3 || len(tok[2]) < 2 {
		return Event{}, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(tok[2], "("), ")")
	ebuild, version, err := atom.Split(inner)
	if err != nil || !pkg.Match(ebuild) {
		return Event{}, false
	}
	return newUnmergeEvent(UnmergeStart, ts, ebuild, version), true
}

func parseUnmergeStop(enabled bool, ts int64, rest string, pkg filter.Package) (Event, bool) {
	if !enabled {
		return Event{}, false
	}
	tok := strings.Fields(rest)
	if len(tok) < 4 {
		return Event{}, false
	}
	ebuild, version, err := atom.Split(tok[3])
	if err != nil || !pkg.Match(ebuild) {
		return Event{}, false
	}
	return newUnmergeEvent(UnmergeStop, ts, ebuild, version), true
}

func parseSyncStart(enabled bool, ts int64) (Event, bool) {
	if !enabled {
		return Event{}, false
	}
	return newSyncEvent(SyncStart, ts), true
}

func parseSyncStop(enabled bool, ts int64) (Event, bool) {
	if !enabled {
		return Event{}, false
	}
	return newSyncEvent(SyncStop, ts), true
}
