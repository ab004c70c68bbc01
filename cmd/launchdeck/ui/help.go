package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# launchdeck

Browse past and upcoming launches. Favorites are saved as you toggle them.

| Key | Action |
|-----|--------|
| ↑/↓, k/j | move the cursor |
| space, f | toggle favorite |
| ←/→, h/l | previous / next page |
| p / n | fetch the previous / next window of launches |
| t | switch between upcoming and past launches |
| d | cycle launch date sort |
| r | cycle rocket filter (group, then each name or type) |
| s | cycle status filter (succeed, failed) |
| c | clear filters |
| y | copy the launch id |
| ? | close this help |
| q | quit |

Favorites always sort first. A rocket filter matches when the rocket
name or type contains the selected value.
`

// newHelpRenderer builds the markdown renderer for the help overlay.
// Explicit styles keep rendering independent of terminal detection.
func newHelpRenderer(dark bool, width int) (*glamour.TermRenderer, error) {
	style := "light"
	if dark {
		style = "dark"
	}
	if width <= 0 {
		width = 80
	}
	return glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
}

// renderHelp renders the help overlay, falling back to the raw markdown.
func renderHelp(r *glamour.TermRenderer) string {
	if r == nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
