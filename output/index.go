package output

import (
	"sort"
	"strings"
)

// indexRow is one line of the generated index: a named statement, its
// category label and the group it was placed in.
type indexRow struct {
	name     string
	category string
	group    string
}

// renderIndex builds the aligned index table over every named statement in
// the retained groups, sorted ascending by name (case-sensitive). Aliases
// are not named statements and contribute no rows.
func renderIndex(groups []*group) string {
	var rows []indexRow
	for _, g := range groups {
		for _, m := range g.members {
			rows = append(rows, indexRow{
				name:     m.Name(),
				category: m.Kind().String(),
				group:    g.name,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].name < rows[j].name
	})

	header := indexRow{name: "Name", category: "Category", group: "Group"}
	nameW, catW := len(header.name), len(header.category)
	for _, r := range rows {
		if len(r.name) > nameW {
			nameW = len(r.name)
		}
		if len(r.category) > catW {
			catW = len(r.category)
		}
	}

	var sb strings.Builder
	writeRow := func(r indexRow) {
		sb.WriteString(pad(r.name, nameW))
		sb.WriteString("  ")
		sb.WriteString(pad(r.category, catW))
		sb.WriteString("  ")
		sb.WriteString(r.group)
		sb.WriteString("\n")
	}
	writeRow(header)
	for _, r := range rows {
		writeRow(r)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
