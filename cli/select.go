// Package cli holds the interactive terminal helpers used by the fetchsim
// command: a promptui menu and a boxed banner.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/manifoldco/promptui"
)

// ErrQuit is returned by Select when the user interrupts the menu or its
// input ends.
var ErrQuit = errors.New("quit")

// Menu is a single-choice menu.
type Menu struct {
	Label string
	Items []string

	// Stdin and Stdout default to the process streams.
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

// Select shows the menu and returns the chosen item.
func (m *Menu) Select() (string, error) {
	if len(m.Items) == 0 {
		return "", nil
	}

	sel := &promptui.Select{
		Label:    m.Label,
		Items:    m.Items,
		Size:     len(m.Items),
		HideHelp: true,
		Stdin:    m.Stdin,
		Stdout:   m.Stdout,
	}

	if sel.Stdin == nil {
		sel.Stdin = os.Stdin
	}

	if sel.Stdout == nil {
		sel.Stdout = os.Stdout
	}

	_, value, err := sel.Run()
	if err != nil {
		return "", selectError(err)
	}

	return value, nil
}

func selectError(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt),
		errors.Is(err, promptui.ErrEOF),
		errors.Is(err, promptui.ErrAbort),
		errors.Is(err, io.EOF):
		return ErrQuit
	default:
		return err
	}
}
