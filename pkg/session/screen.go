package session

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/modpick/pkg/orchestrator"
)

// LineKind selects how a screen line is coloured.
type LineKind int

// Screen line kinds.
const (
	LineInfo LineKind = iota
	LineSuccess
	LineError
	LineMuted
)

// Line is one line of the session screen.
type Line struct {
	Kind LineKind
	Text string
}

// Key hints shown above every package page.
var helpLines = []Line{
	{Kind: LineMuted, Text: "ENTER: DOWNLOAD"},
	{Kind: LineMuted, Text: "OPTION 1: VIEW GITHUB"},
	{Kind: LineMuted, Text: "OPTION 2: REFRESH MOD LIST"},
	{Kind: LineMuted, Text: ""},
}

// renderLocked rebuilds the page for the package under the cursor.
// c.mu must be held.
func (c *Controller) renderLocked() {
	pkg, ok := c.catalog.At(c.cursor)
	if !ok {
		c.lines = []Line{{Kind: LineMuted, Text: "No mods available. Press any key to refresh."}}
		return
	}

	lines := append([]Line(nil), helpLines...)
	lines = append(lines,
		Line{Kind: LineInfo, Text: pkg.Title()},
		Line{Kind: LineInfo, Text: "Developers: " + pkg.Developers},
	)
	if len(pkg.Dependencies) > 0 {
		lines = append(lines, Line{Kind: LineMuted, Text: "Requires: " + strings.Join(pkg.Dependencies, ", ")})
	}
	lines = append(lines,
		Line{Kind: LineMuted, Text: ""},
		Line{Kind: LineMuted, Text: fmt.Sprintf("%d/%d", c.cursor+1, c.catalog.Len())},
	)
	c.lines = lines
}

func reportLines(r orchestrator.Report) []Line {
	out := make([]Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		kind := LineInfo
		switch l.Kind {
		case orchestrator.LineSuccess:
			kind = LineSuccess
		case orchestrator.LineError:
			kind = LineError
		}
		out = append(out, Line{Kind: kind, Text: l.Text})
	}
	return out
}

// Text joins the screen lines for plain-text output.
func (s Snapshot) Text() string {
	var b strings.Builder
	for i, l := range s.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text)
	}
	return b.String()
}
