package terminal

import "github.com/gdamore/tcell/v2"

// TerminalOption is a functional option for configuring a Terminal.
type TerminalOption func(*terminal)

// WithScreen uses an existing, uninitialized screen instead of the process terminal, e.g. a
// tcell.SimulationScreen.
//
// Parameters:
//   - s: the screen
//
// Returns:
//   - TerminalOption: option function to apply
func WithScreen(s tcell.Screen) TerminalOption {
	return func(t *terminal) {
		t.screen = s
	}
}

// WithOnClose registers fn to run when the terminal closes, before the screen is finalized.
// Hosts use it to stop drawing into the screen.
func WithOnClose(fn func()) TerminalOption {
	return func(t *terminal) {
		t.onClose = fn
	}
}
