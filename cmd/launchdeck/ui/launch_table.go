package ui

import (
	"strings"
	"time"

	"launchdeck/internal/reconcile"
	"launchdeck/internal/table"

	"github.com/charmbracelet/lipgloss"
)

// LaunchTable renders one page of launch rows.
type LaunchTable struct {
	Rows []reconcile.ViewRow
	// Cursor is the highlighted row; negative disables highlighting.
	Cursor   int
	Location *time.Location
	// SortState marks the sorted column headers.
	SortState table.SortState
}

// View renders the table using the provided styles.
func (t LaunchTable) View(styles Styles) string {
	cols := table.Columns()
	cells := make([]table.Cells, len(t.Rows))
	for i, r := range t.Rows {
		cells[i] = table.FormatRow(r, t.Location)
	}

	rendered := make([][]string, len(t.Rows))
	for i, c := range cells {
		rendered[i] = []string{
			styles.Star.Render(c.Favorite),
			truncate(c.Name, nameWidth(cols)),
			styles.Tag(c.Rocket[0].Text, c.Rocket[0].Color) + " " + styles.Tag(c.Rocket[1].Text, c.Rocket[1].Color),
			c.Date,
			styles.Tag(c.Status.Text, c.Status.Color),
		}
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Title + sortMarker(c.Key, t.SortState)
	}

	// Fixed columns keep their width; the rest size to content.
	colWidths := make([]int, len(cols))
	for i, c := range cols {
		colWidths[i] = lipgloss.Width(headers[i])
		if c.Width > colWidths[i] {
			colWidths[i] = c.Width
		}
		if c.Width > 0 {
			continue
		}
		for _, row := range rendered {
			if w := lipgloss.Width(row[i]); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}
	// Add padding to widths because lipgloss Width includes padding
	for i := range colWidths {
		colWidths[i] += 2
	}

	headerStyle := styles.Bold.Copy().Padding(0, 1)
	rowStyle := styles.Body.Copy().Padding(0, 1)
	sepStyle := styles.Muted

	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(headerStyle.Width(colWidths[i]).Render(h))
		if i < len(headers)-1 {
			sb.WriteString(sepStyle.Render("│"))
		}
	}
	sb.WriteString("\n")

	totalWidth := len(colWidths) - 1
	for _, w := range colWidths {
		totalWidth += w
	}
	sb.WriteString(styles.RenderDivider(totalWidth) + "\n")

	for r, row := range rendered {
		style := rowStyle
		if r == t.Cursor {
			style = rowStyle.Copy().Inherit(styles.Selected)
		}
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(style.Width(colWidths[i]).Render(cell))
			if i < len(row)-1 {
				line.WriteString(sepStyle.Render("│"))
			}
		}
		sb.WriteString(line.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

func nameWidth(cols []table.Column) int {
	for _, c := range cols {
		if c.Key == table.ColumnName {
			return c.Width
		}
	}
	return 30
}

func sortMarker(key table.ColumnKey, s table.SortState) string {
	var o table.SortOrder
	switch key {
	case table.ColumnFavorite:
		o = s.Favorite
	case table.ColumnDate:
		o = s.Date
	default:
		return ""
	}
	switch o {
	case table.SortAscend:
		return " ▲"
	case table.SortDescend:
		if key == table.ColumnFavorite {
			return ""
		}
		return " ▼"
	}
	return ""
}

// truncate shortens s to at most w cells, ending in an ellipsis.
func truncate(s string, w int) string {
	if w <= 0 || lipgloss.Width(s) <= w {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
