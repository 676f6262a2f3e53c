package terminal

import (
	"context"
	"testing"
	"time"

	"github.com/Carmen-Shannon/h2scape/engine/input"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimTerminal(t *testing.T) (Terminal, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	term, err := NewTerminal(WithScreen(s))
	require.NoError(t, err)
	s.SetSize(80, 24)
	t.Cleanup(term.Close)
	return term, s
}

func TestMouseDrag(t *testing.T) {
	term, _ := newSimTerminal(t)
	tm := term.(*terminal)

	events := tm.mouse(tcell.NewEventMouse(2, 3, tcell.Button1, tcell.ModNone))
	assert.Equal(t, []input.Event{{Type: input.PointerDown, X: 16, Y: 48}}, events)

	events = tm.mouse(tcell.NewEventMouse(4, 3, tcell.Button1, tcell.ModNone))
	assert.Equal(t, []input.Event{{Type: input.PointerMove, X: 32, Y: 48}}, events)

	events = tm.mouse(tcell.NewEventMouse(4, 3, tcell.ButtonNone, tcell.ModNone))
	assert.Equal(t, []input.Event{{Type: input.PointerUp, X: 32, Y: 48}}, events)

	assert.Empty(t, tm.mouse(tcell.NewEventMouse(5, 5, tcell.ButtonNone, tcell.ModNone)))
}

func TestWheel(t *testing.T) {
	term, _ := newSimTerminal(t)
	tm := term.(*terminal)

	up := tm.mouse(tcell.NewEventMouse(0, 0, tcell.WheelUp, tcell.ModNone))
	down := tm.mouse(tcell.NewEventMouse(0, 0, tcell.WheelDown, tcell.ModNone))

	assert.Equal(t, []input.Event{{Type: input.Wheel, DeltaY: -1}}, up)
	assert.Equal(t, []input.Event{{Type: input.Wheel, DeltaY: 1}}, down)
}

func TestTranslateKeysAndResize(t *testing.T) {
	term, _ := newSimTerminal(t)
	tm := term.(*terminal)

	_, quit := tm.translate(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.True(t, quit)
	_, quit = tm.translate(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	assert.True(t, quit)
	_, quit = tm.translate(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	assert.False(t, quit)

	events, quit := tm.translate(tcell.NewEventResize(120, 40))
	assert.False(t, quit)
	assert.Equal(t, []input.Event{{Type: input.Resize, Width: 120, Height: 40}}, events)
}

func TestRunDispatchesUntilEscape(t *testing.T) {
	term, s := newSimTerminal(t)

	got := make(chan input.Event, 8)
	remove := term.AddListener(func(ev input.Event) { got <- ev })
	defer remove()

	finished := make(chan struct{})
	go func() {
		term.Run(context.Background())
		close(finished)
	}()

	s.InjectMouse(1, 1, tcell.Button1, tcell.ModNone)
	select {
	case ev := <-got:
		assert.Equal(t, input.PointerDown, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no pointer event")
	}

	s.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return")
	}
	select {
	case <-term.Done():
	default:
		t.Fatal("terminal not closed")
	}
}

func TestRunStopsWithContext(t *testing.T) {
	term, _ := newSimTerminal(t)
	w, h := term.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)

	ctx, cancel := context.WithCancel(context.Background())

	finished := make(chan struct{})
	go func() {
		term.Run(ctx)
		close(finished)
	}()
	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return")
	}
	<-term.Done()
}

func TestOnCloseRunsOnce(t *testing.T) {
	s := tcell.NewSimulationScreen("")
	calls := 0
	term, err := NewTerminal(WithScreen(s), WithOnClose(func() { calls++ }))
	require.NoError(t, err)

	term.Close()
	term.Close()
	assert.Equal(t, 1, calls)
	<-term.Done()
}
