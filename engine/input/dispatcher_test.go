package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchInRegistrationOrder(t *testing.T) {
	d := NewDispatcher()
	var got []string
	d.AddListener(func(Event) { got = append(got, "a") })
	d.AddListener(func(Event) { got = append(got, "b") })

	d.Dispatch(Event{Type: PointerDown})

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRemoveIsIdempotent(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	remove := d.AddListener(func(Event) { calls++ })
	keep := d.AddListener(func(Event) {})
	assert.Equal(t, 2, d.Len())

	remove()
	remove()
	assert.Equal(t, 1, d.Len())

	d.Dispatch(Event{Type: Wheel, DeltaY: 1})
	assert.Zero(t, calls)

	keep()
	assert.Zero(t, d.Len())
}

func TestListenerMayRemoveItselfDuringDispatch(t *testing.T) {
	d := NewDispatcher()
	var remove func()
	calls := 0
	remove = d.AddListener(func(Event) {
		calls++
		remove()
	})

	d.Dispatch(Event{})
	d.Dispatch(Event{})

	assert.Equal(t, 1, calls)
	assert.Zero(t, d.Len())
}

func TestNilListenerIsIgnored(t *testing.T) {
	d := NewDispatcher()
	remove := d.AddListener(nil)
	remove()
	assert.Zero(t, d.Len())
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "wheel", Wheel.String())
	assert.Equal(t, "unknown", EventType(99).String())
}
