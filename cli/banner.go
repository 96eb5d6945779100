package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultWidth is the banner width used when the caller has no preference.
const DefaultWidth = 60

const bannerPadding = 2

// bannerBorder is a double rule on top over a single-line box.
var bannerBorder = lipgloss.Border{ //nolint:gochecknoglobals
	Top:         "═",
	Bottom:      "─",
	Left:        "│",
	Right:       "│",
	TopLeft:     "╒",
	TopRight:    "╕",
	BottomLeft:  "└",
	BottomRight: "┘",
}

// Banner boxes s, one row per line, width columns wide including the border.
// It returns "" for widths too small to hold any text.
func Banner(s string, width int, align lipgloss.Position) string {
	if width <= bannerPadding || s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")

	return lipgloss.NewStyle().
		Border(bannerBorder).
		Width(width - bannerPadding).
		Align(align).
		Render(s)
}

// Divider is a horizontal rule width columns wide.
func Divider(width int) string {
	if width <= bannerPadding {
		return ""
	}

	return "┠" + strings.Repeat("─", width-bannerPadding) + "┨"
}
