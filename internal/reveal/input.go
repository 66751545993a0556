package reveal

// PointerKind distinguishes pointer events
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	default:
		return "unknown"
	}
}

// PointerEvent is a pointer sample in screen coordinates
type PointerEvent struct {
	Kind PointerKind
	Pos  Point
}

// Listener receives pointer events from a Hub
type Listener func(PointerEvent)

type registration struct {
	id uint64
	fn Listener
}

// Hub fans pointer events out to registered listeners in registration order.
// It is owned by one event loop and is not safe for concurrent use.
type Hub struct {
	next      uint64
	listeners []registration
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{}
}

// Listen registers fn and returns the function that releases it. Release
// may be called any number of times.
func (h *Hub) Listen(fn Listener) (release func()) {
	h.next++
	id := h.next
	h.listeners = append(h.listeners, registration{id: id, fn: fn})

	released := false
	return func() {
		if released {
			return
		}
		released = true
		for i, r := range h.listeners {
			if r.id == id {
				h.listeners = append(h.listeners[:i:i], h.listeners[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers ev to the listeners registered when dispatch starts
func (h *Hub) Dispatch(ev PointerEvent) {
	current := make([]registration, len(h.listeners))
	copy(current, h.listeners)
	for _, r := range current {
		if h.registered(r.id) {
			r.fn(ev)
		}
	}
}

// Len returns the number of live registrations
func (h *Hub) Len() int {
	return len(h.listeners)
}

func (h *Hub) registered(id uint64) bool {
	for _, r := range h.listeners {
		if r.id == id {
			return true
		}
	}
	return false
}

// Mapper converts a screen position to a surface point, reporting whether
// the position falls on the surface
type Mapper func(screen Point) (Point, bool)

// Binding connects a Hub to a Surface. A down event on the surface opens an
// erase session; move and up listeners exist only while a session is open.
type Binding struct {
	hub     *Hub
	surface *Surface
	mapper  Mapper

	releaseDown    func()
	releaseSession func()
}

// Bind starts listening for down events on hub
func Bind(hub *Hub, surface *Surface, mapper Mapper) *Binding {
	b := &Binding{hub: hub, surface: surface, mapper: mapper}
	b.releaseDown = hub.Listen(b.onDown)
	return b
}

// Active reports whether an erase session is open
func (b *Binding) Active() bool {
	return b.releaseSession != nil
}

func (b *Binding) onDown(ev PointerEvent) {
	if ev.Kind != PointerDown || b.Active() || !b.surface.IsInteractive() {
		return
	}
	p, ok := b.mapper(ev.Pos)
	if !ok {
		return
	}

	b.surface.BeginErase(p)
	if b.surface.State() != Revealing {
		return
	}
	b.releaseSession = b.hub.Listen(b.onSession)
}

// onSession follows the pointer anywhere on screen. Samples off the surface
// are still forwarded; the brush disc is clipped to the buffer.
func (b *Binding) onSession(ev PointerEvent) {
	switch ev.Kind {
	case PointerMove:
		p, _ := b.mapper(ev.Pos)
		b.surface.ContinueErase(p)
	case PointerUp:
		b.endSession()
		b.surface.EndErase()
	}
}

func (b *Binding) endSession() {
	if b.releaseSession != nil {
		b.releaseSession()
		b.releaseSession = nil
	}
}

// Close releases every registration and the surface buffer. Input arriving
// afterwards never reaches the surface.
func (b *Binding) Close() {
	b.endSession()
	if b.releaseDown != nil {
		b.releaseDown()
		b.releaseDown = nil
	}
	b.surface.Close()
}
