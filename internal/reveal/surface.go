// Package reveal implements the scratch-off surface that occludes a card
// until enough of it has been erased.
package reveal

import (
	"image"
	"math"
	"time"
)

// Point is a position in surface units (before pixel density is applied)
type Point struct {
	X, Y float64
}

// Size is a surface size in surface units
type Size struct {
	Width, Height float64
}

// State is the position of a surface in its reveal lifecycle
type State int

const (
	// Hidden is the initial state: occluded, accepting input
	Hidden State = iota
	// Revealing means an erase session is active
	Revealing
	// Revealed is terminal: the card is unlocked and input is ignored
	Revealed
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Revealing:
		return "revealing"
	case Revealed:
		return "revealed"
	default:
		return "unknown"
	}
}

// RevealState is a snapshot of a surface's transient state
type RevealState struct {
	ErasedFraction float64
	Revealed       bool
	Interactive    bool
}

// Event is emitted once, when a surface becomes revealed
type Event struct {
	Fraction float64
	At       time.Time
}

// Surface is an opaque alpha buffer laid over a card image. Erasing clears
// discs of the buffer; ending an erase session measures the cleared area and
// unlocks the card once it passes the tier threshold.
//
// A Surface is not safe for concurrent use. It is owned by the single event
// loop that feeds it input.
type Surface struct {
	cfg      Config
	tier     Tier
	viewport float64

	mask    *image.Alpha
	density float64

	state       State
	interactive bool
	closed      bool
	evaluated   float64

	handlers []func(Event)
	now      func() time.Time
}

// New creates a surface in the Hidden state. It accepts no input until
// Initialize allocates its buffer.
func New(cfg Config) *Surface {
	return &Surface{
		cfg:         cfg,
		tier:        cfg.TierFor(0),
		interactive: true,
		now:         time.Now,
	}
}

// OnRevealed registers a callback for the reveal event
func (s *Surface) OnRevealed(fn func(Event)) {
	if fn != nil {
		s.handlers = append(s.handlers, fn)
	}
}

// SetViewport selects the brush and threshold tier for a viewport width
func (s *Surface) SetViewport(width float64) {
	s.viewport = width
	s.tier = s.cfg.TierFor(width)
}

// Tier returns the brush radius and threshold currently in effect
func (s *Surface) Tier() Tier {
	return s.tier
}

// Initialize allocates a fully opaque buffer of size*density pixels,
// discarding any previous erase progress. It does nothing once the surface
// is revealed or closed. A buffer that cannot be allocated leaves the surface
// Hidden and non-interactive.
func (s *Surface) Initialize(size Size, density float64) {
	if s.closed || s.state == Revealed {
		return
	}

	s.mask = nil
	s.state = Hidden
	s.evaluated = 0

	if !(density > 0) {
		density = 1
	}
	fw := math.Ceil(size.Width * density)
	fh := math.Ceil(size.Height * density)
	if !(fw >= 1) || !(fh >= 1) {
		s.interactive = false
		return
	}
	if limit := float64(s.cfg.MaxBufferPixels); limit > 0 && fw*fh > limit {
		s.interactive = false
		return
	}

	mask, ok := allocate(int(fw), int(fh))
	if !ok {
		s.interactive = false
		return
	}
	s.mask = mask
	s.density = density
	s.interactive = true
}

func allocate(w, h int) (mask *image.Alpha, ok bool) {
	defer func() {
		if recover() != nil {
			mask, ok = nil, false
		}
	}()

	mask = image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range mask.Pix {
		mask.Pix[i] = 0xff
	}
	return mask, true
}

// BeginErase starts an erase session and erases one disc at p
func (s *Surface) BeginErase(p Point) {
	if s.closed || !s.interactive || s.mask == nil {
		return
	}
	s.state = Revealing
	s.erase(p)
}

// ContinueErase erases one disc at p during an active session
func (s *Surface) ContinueErase(p Point) {
	if s.closed || s.state != Revealing || s.mask == nil {
		return
	}
	s.erase(p)
}

// EndErase closes the active session and evaluates the erased fraction.
// Crossing the threshold reveals the surface and fires the reveal event.
func (s *Surface) EndErase() {
	if s.closed || s.state != Revealing || s.mask == nil {
		return
	}

	s.state = Hidden
	s.evaluated = s.scan()
	if s.evaluated <= s.tier.Threshold {
		return
	}

	s.state = Revealed
	s.interactive = false

	ev := Event{Fraction: s.evaluated, At: s.now()}
	for _, fn := range s.handlers {
		fn(ev)
	}
}

// Close releases the buffer, keeping the last erased fraction readable.
// Every later call is a no-op.
func (s *Surface) Close() {
	if s.closed {
		return
	}
	if s.mask != nil {
		s.evaluated = s.scan()
	}
	s.closed = true
	s.mask = nil
}

// erase clears every pixel whose centre lies inside the brush disc at p.
// It only visits the disc's bounding box.
func (s *Surface) erase(p Point) {
	cx := p.X * s.density
	cy := p.Y * s.density
	r := s.tier.BrushRadius * s.density
	if math.IsNaN(cx) || math.IsNaN(cy) || math.IsInf(cx, 0) || math.IsInf(cy, 0) || !(r > 0) {
		return
	}

	b := s.mask.Rect
	x0 := max(b.Min.X, int(math.Floor(cx-r)))
	x1 := min(b.Max.X, int(math.Ceil(cx+r)))
	y0 := max(b.Min.Y, int(math.Floor(cy-r)))
	y1 := min(b.Max.Y, int(math.Ceil(cy+r)))

	r2 := r * r
	for y := y0; y < y1; y++ {
		dy := float64(y) + 0.5 - cy
		span := r2 - dy*dy
		if span < 0 {
			continue
		}
		row := s.mask.Pix[(y-b.Min.Y)*s.mask.Stride:]
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx <= span {
				row[x-b.Min.X] = 0
			}
		}
	}
}

// scan counts fully transparent pixels over the whole buffer
func (s *Surface) scan() float64 {
	b := s.mask.Rect
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	cleared := 0
	for y := 0; y < h; y++ {
		row := s.mask.Pix[y*s.mask.Stride : y*s.mask.Stride+w]
		for _, a := range row {
			if a == 0 {
				cleared++
			}
		}
	}
	return float64(cleared) / float64(w*h)
}

// ErasedFraction counts the current erased fraction of the buffer
func (s *Surface) ErasedFraction() float64 {
	if s.mask == nil {
		return s.evaluated
	}
	return s.scan()
}

// State returns the lifecycle state
func (s *Surface) State() State {
	return s.state
}

// IsRevealed reports whether the surface has been unlocked
func (s *Surface) IsRevealed() bool {
	return s.state == Revealed
}

// IsInteractive reports whether the surface accepts erase input
func (s *Surface) IsInteractive() bool {
	return s.interactive && !s.closed
}

// Snapshot returns the surface's current RevealState
func (s *Surface) Snapshot() RevealState {
	return RevealState{
		ErasedFraction: s.ErasedFraction(),
		Revealed:       s.IsRevealed(),
		Interactive:    s.IsInteractive(),
	}
}

// Mask exposes the buffer for rendering. Callers must not modify it.
// It is nil before Initialize and after Close.
func (s *Surface) Mask() *image.Alpha {
	return s.mask
}
