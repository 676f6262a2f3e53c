// Package terminal hosts the engine in a text terminal through tcell, translating mouse and
// resize events into input events.
package terminal

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/h2scape/engine/input"
	"github.com/gdamore/tcell/v2"
)

const (
	// cellWidth and cellHeight scale cell coordinates to nominal pixels so orbit drags feel the
	// same as in a window.
	cellWidth  = 8
	cellHeight = 16
)

// Terminal is a tcell screen the engine mounts on. Size reports cells, not pixels.
type Terminal interface {
	input.Surface

	// Screen returns the underlying screen for renderers.
	//
	// Returns:
	//   - tcell.Screen: the screen
	Screen() tcell.Screen

	// Size returns the screen size in cells.
	//
	// Returns:
	//   - int: columns
	//   - int: rows
	Size() (int, int)

	// Run polls terminal events until Escape, Ctrl-C or q is pressed, ctx is done, or Close is
	// called. It blocks and must be called at most once.
	//
	// Parameters:
	//   - ctx: stops the loop when done
	Run(ctx context.Context)

	// Done is closed once the terminal has been closed.
	//
	// Returns:
	//   - <-chan struct{}: the done channel
	Done() <-chan struct{}

	// Close restores the terminal. Safe to call more than once.
	Close()
}

type terminal struct {
	input.Dispatcher

	screen    tcell.Screen
	pressed   bool
	onClose   func()
	done      chan struct{}
	closeOnce *sync.Once
}

var _ Terminal = &terminal{}

// NewTerminal initializes a screen for mouse-driven rendering.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Terminal: the terminal
//   - error: an error if the screen could not be created or initialized
func NewTerminal(options ...TerminalOption) (Terminal, error) {
	t := &terminal{
		Dispatcher: input.NewDispatcher(),
		done:       make(chan struct{}),
		closeOnce:  &sync.Once{},
	}
	for _, opt := range options {
		opt(t)
	}
	if t.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("create terminal screen: %w", err)
		}
		t.screen = s
	}
	if err := t.screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal screen: %w", err)
	}
	t.screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents)
	t.screen.HideCursor()
	return t, nil
}

func (t *terminal) Screen() tcell.Screen {
	return t.screen
}

func (t *terminal) Size() (int, int) {
	return t.screen.Size()
}

func (t *terminal) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, t.Close)
	defer stop()

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		events, quit := t.translate(ev)
		for _, e := range events {
			t.Dispatch(e)
		}
		if quit {
			t.Close()
			return
		}
	}
}

func (t *terminal) Done() <-chan struct{} {
	return t.done
}

func (t *terminal) Close() {
	t.closeOnce.Do(func() {
		if t.onClose != nil {
			t.onClose()
		}
		t.screen.Fini()
		close(t.done)
	})
}

// translate maps one tcell event to input events. Only the Run goroutine calls it.
func (t *terminal) translate(ev tcell.Event) ([]input.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return nil, true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return nil, true
		}
	case *tcell.EventResize:
		w, h := ev.Size()
		t.screen.Sync()
		return []input.Event{{Type: input.Resize, Width: w, Height: h}}, false
	case *tcell.EventMouse:
		return t.mouse(ev), false
	}
	return nil, false
}

func (t *terminal) mouse(ev *tcell.EventMouse) []input.Event {
	col, row := ev.Position()
	x, y := float32(col*cellWidth), float32(row*cellHeight)
	buttons := ev.Buttons()

	var out []input.Event
	if buttons&tcell.WheelUp != 0 {
		out = append(out, input.Event{Type: input.Wheel, DeltaY: -1})
	}
	if buttons&tcell.WheelDown != 0 {
		out = append(out, input.Event{Type: input.Wheel, DeltaY: 1})
	}

	down := buttons&tcell.Button1 != 0
	switch {
	case down && !t.pressed:
		out = append(out, input.Event{Type: input.PointerDown, X: x, Y: y})
	case down:
		out = append(out, input.Event{Type: input.PointerMove, X: x, Y: y})
	case t.pressed:
		out = append(out, input.Event{Type: input.PointerUp, X: x, Y: y})
	}
	t.pressed = down
	return out
}
