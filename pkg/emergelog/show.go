package emergelog

import (
	"fmt"
	"strings"
)

// Show is a set of event-class bits the tokenizer uses to decide which
// parse helpers to run. Pkg and Tot both imply Merge and Unmerge at the
// parser level.
type Show uint8

const (
	ShowMerge Show = 1 << iota
	ShowUnmerge
	ShowSync
	ShowPkg
	ShowTot
)

// ShowAll enables every event class.
const ShowAll = ShowMerge | ShowUnmerge | ShowSync

func (s Show) mergeEnabled() bool {
	return s&ShowMerge != 0 || s&ShowPkg != 0 || s&ShowTot != 0
}

func (s Show) unmergeEnabled() bool {
	return s&ShowUnmerge != 0 || s&ShowPkg != 0 || s&ShowTot != 0
}

func (s Show) syncEnabled() bool {
	return s&ShowSync != 0
}

// ParseShow parses a comma-separated --show value into a Show mask. Each
// token is one of the single-letter codes the original CLI used
// (m=merge, u=unmerge, s=sync, p=pkg, t=tot, a=all) or its long form
// (merge, unmerge, sync, pkg, tot, all); an empty string means ShowAll.
func ParseShow(spec string) (Show, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return ShowAll, nil
	}

	var mask Show
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		switch tok {
		case "m", "merge":
			mask |= ShowMerge
		case "u", "unmerge":
			mask |= ShowUnmerge
		case "s", "sync":
			mask |= ShowSync
		case "p", "pkg":
			mask |= ShowPkg
		case "t", "tot":
			mask |= ShowTot
		case "a", "all":
			mask |= ShowAll
		default:
			return 0, fmt.Errorf("unknown --show token %q (want m,u,s,p,t,a or merge,unmerge,sync,pkg,tot,all)", tok)
		}
	}
	return mask, nil
}
