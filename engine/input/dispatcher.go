package input

import "sync"

// Dispatcher is an in-memory Surface. Hosts feed it events with Dispatch; windows and terminals
// embed one to fan their platform callbacks out to listeners.
type Dispatcher interface {
	Surface

	// Dispatch delivers ev to every registered listener in registration order.
	// Listeners are invoked outside the dispatcher lock, so they may add or remove listeners.
	//
	// Parameters:
	//   - ev: the event to deliver
	Dispatch(ev Event)

	// Len returns the number of registered listeners.
	//
	// Returns:
	//   - int: listener count
	Len() int
}

type listener struct {
	id int
	fn func(Event)
}

type dispatcherImpl struct {
	mu        *sync.Mutex
	nextID    int
	listeners []listener
}

var _ Dispatcher = &dispatcherImpl{}

// NewDispatcher creates an empty Dispatcher.
//
// Returns:
//   - Dispatcher: a dispatcher with no listeners
func NewDispatcher() Dispatcher {
	return &dispatcherImpl{mu: &sync.Mutex{}}
}

func (d *dispatcherImpl) AddListener(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}

	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners = append(d.listeners, listener{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(id) })
	}
}

func (d *dispatcherImpl) Dispatch(ev Event) {
	d.mu.Lock()
	fns := make([]func(Event), len(d.listeners))
	for i, l := range d.listeners {
		fns[i] = l.fn
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (d *dispatcherImpl) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

func (d *dispatcherImpl) remove(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, l := range d.listeners {
		if l.id == id {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}
