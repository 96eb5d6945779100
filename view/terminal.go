package view

import (
	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/charmbracelet/lipgloss"
)

var (
	green  = lipgloss.Color("76")  //nolint:gochecknoglobals
	red    = lipgloss.Color("204") //nolint:gochecknoglobals
	yellow = lipgloss.Color("214") //nolint:gochecknoglobals
	dim    = lipgloss.Color("243") //nolint:gochecknoglobals
)

//nolint:gochecknoglobals
var stateStyles = map[fetchmachine.State]lipgloss.Style{
	fetchmachine.Idle:    lipgloss.NewStyle().Foreground(dim),
	fetchmachine.Loading: lipgloss.NewStyle().Foreground(yellow),
	fetchmachine.Success: lipgloss.NewStyle().Foreground(green).Bold(true),
	fetchmachine.Failure: lipgloss.NewStyle().Foreground(red).Bold(true),
}

var mutedStyle = lipgloss.NewStyle().Foreground(dim) //nolint:gochecknoglobals

// Terminal renders snap as one styled line for a terminal.
func Terminal(snap fetchmachine.Snapshot) string {
	style, ok := stateStyles[snap.State]
	if !ok {
		style = lipgloss.NewStyle()
	}

	line := style.Render(Label(snap.State))

	if detail := Detail(snap); detail != "" {
		line += " " + mutedStyle.Render(detail)
	}

	return line
}

// Heading renders the title shown above the terminal prompt.
func Heading() string {
	return lipgloss.NewStyle().Bold(true).Render(pageTitle)
}
