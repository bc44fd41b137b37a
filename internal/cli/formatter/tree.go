package formatter

import (
	"strings"
)

// TreeItem is one row of the component tree display.
type TreeItem struct {
	Title    string // component id
	Type     string // component type badge
	Level    int
	IsLast   bool
	Selected bool
	Faulted  bool
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders component tree rows with box-drawing connectors. The
// selected row gets the orange header style, faulted rows a red marker, and
// type badges are dimmed after each title.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return Dim("(no components)")
	}

	var b strings.Builder
	for idx, item := range items {
		if idx > 0 {
			b.WriteString("\n")
		}

		var prefix string
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				prefix += treePipe
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		switch {
		case item.Selected:
			title = StyleHeader.Render("▸ " + title)
		case item.Faulted:
			title = StyleRed.Render("✖ " + title)
		default:
			title = StyleFg.Render(title)
		}

		b.WriteString(Dim(prefix) + title)
		if item.Type != "" {
			b.WriteString(" " + Dim("("+item.Type+")"))
		}
	}
	return b.String()
}
