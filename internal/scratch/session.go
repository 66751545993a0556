// Package scratch runs the full-screen scratch-off interaction for one card.
package scratch

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/zerei-app/zerei/internal/card"
	"github.com/zerei-app/zerei/internal/render"
	"github.com/zerei-app/zerei/internal/reveal"
)

// Cards are drawn at a 9:14 aspect ratio
const (
	aspectW = 9
	aspectH = 14
)

const frameInterval = 33 * time.Millisecond

// Options configures a session
type Options struct {
	Surface  reveal.Config
	Density  float64
	Subtitle string
	// Progress is shown in the header, e.g. "3/10"
	Progress string
	Logger   *zap.Logger
}

// Result is how a session ended
type Result struct {
	Revealed bool
	// Confirmed means the user chose to save the revealed card
	Confirmed bool
	Fraction  float64
}

// Session draws a card under its scratch-off coating on a tcell screen and
// feeds mouse input to the reveal surface.
type Session struct {
	screen tcell.Screen
	card   *card.Card
	img    image.Image
	opts   Options
	logger *zap.Logger

	surface *reveal.Surface
	hub     *reveal.Hub
	binding *reveal.Binding

	// card rectangle in cells
	x0, y0, cols, rows int
	scaled             image.Image
	plain              [][]render.Cell

	pressed    bool
	revealedAt time.Time
	now        func() time.Time
}

// New prepares a session; nothing is drawn until Run
func New(screen tcell.Screen, c *card.Card, img image.Image, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Density <= 0 {
		opts.Density = 1
	}

	s := &Session{
		screen:  screen,
		card:    c,
		img:     img,
		opts:    opts,
		logger:  logger,
		surface: reveal.New(opts.Surface),
		hub:     reveal.NewHub(),
		now:     time.Now,
	}
	s.surface.OnRevealed(s.onRevealed)
	return s
}

// Run processes events until the user leaves, the channel closes or ctx is
// done. The surface's input registrations are released before it returns.
func (s *Session) Run(ctx context.Context, events <-chan tcell.Event) (Result, error) {
	s.binding = reveal.Bind(s.hub, s.surface, s.toSurface)
	defer s.binding.Close()

	s.layout()
	s.draw()

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return s.result(false), ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return s.result(false), nil
			}
			if done, confirmed := s.handle(ev); done {
				return s.result(confirmed), nil
			}
			if s.fading() && ticker == nil {
				ticker = time.NewTicker(frameInterval)
				tick = ticker.C
			}
			s.draw()

		case <-tick:
			s.draw()
			if !s.fading() {
				ticker.Stop()
				ticker, tick = nil, nil
			}
		}
	}
}

// handle applies one event and reports whether the session is over
func (s *Session) handle(ev tcell.Event) (done, confirmed bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()
		s.layout()

	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return true, false
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return true, false
		case ev.Key() == tcell.KeyEnter && s.surface.IsRevealed():
			return true, true
		}

	case *tcell.EventMouse:
		s.handleMouse(ev)
	}
	return false, false
}

// handleMouse turns tcell's button state into down, move and up events.
// Positions are in half-block units: one per column, two per row.
func (s *Session) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pos := reveal.Point{X: float64(x) + 0.5, Y: float64(y)*2 + 1}
	held := ev.Buttons()&tcell.Button1 != 0

	switch {
	case held && !s.pressed:
		s.pressed = true
		s.hub.Dispatch(reveal.PointerEvent{Kind: reveal.PointerDown, Pos: pos})
	case held:
		s.hub.Dispatch(reveal.PointerEvent{Kind: reveal.PointerMove, Pos: pos})
	case s.pressed:
		s.pressed = false
		s.hub.Dispatch(reveal.PointerEvent{Kind: reveal.PointerUp, Pos: pos})
	}
}

// toSurface maps a screen point in half-block units onto the card
func (s *Session) toSurface(p reveal.Point) (reveal.Point, bool) {
	q := reveal.Point{X: p.X - float64(s.x0), Y: p.Y - float64(s.y0*2)}
	inside := q.X >= 0 && q.Y >= 0 && q.X < float64(s.cols) && q.Y < float64(s.rows*2)
	return q, inside
}

// layout fits the card into the screen and sizes the surface to it.
// While the card is hidden this starts a fresh coating.
func (s *Session) layout() {
	w, h := s.screen.Size()

	rows := max(1, h-4)
	cols := rows * 2 * aspectW / aspectH
	if cols > w-2 {
		cols = max(1, w-2)
		rows = max(1, cols*aspectH/(2*aspectW))
	}
	s.cols, s.rows = cols, rows
	s.x0 = max(0, (w-cols)/2)
	s.y0 = 2

	s.surface.SetViewport(float64(w))
	s.surface.Initialize(reveal.Size{Width: float64(cols), Height: float64(rows * 2)}, s.opts.Density)

	if mask := s.surface.Mask(); mask != nil {
		s.scaled = render.Scale(s.img, mask.Rect.Dx(), mask.Rect.Dy())
	} else {
		s.scaled = s.img
	}
	s.plain = render.Cells(s.img, cols, rows)

	s.logger.Debug("Laid out card",
		zap.String("card", s.card.ID),
		zap.Int("cols", cols),
		zap.Int("rows", rows),
		zap.Bool("interactive", s.surface.IsInteractive()),
		zap.Float64("brush_radius", s.surface.Tier().BrushRadius))
}

func (s *Session) onRevealed(ev reveal.Event) {
	s.revealedAt = s.now()
	_ = s.screen.Beep()
	s.logger.Info("Card revealed",
		zap.String("card", s.card.ID),
		zap.Float64("fraction", ev.Fraction))
}

// fading reports whether the coating is still fading out
func (s *Session) fading() bool {
	return s.surface.IsRevealed() && s.opacity() > 0
}

func (s *Session) opacity() float64 {
	if !s.surface.IsRevealed() {
		return 1
	}
	return render.FadeOpacity(s.now().Sub(s.revealedAt))
}

// frame returns the card cells for the current coating and fade
func (s *Session) frame() [][]render.Cell {
	opacity := s.opacity()
	if opacity <= 0 {
		return s.plain
	}
	composite := render.Composite(s.scaled, s.surface.Mask(), render.OverlayColor, opacity)
	return render.Cells(composite, s.cols, s.rows)
}

func (s *Session) draw() {
	s.screen.Clear()
	w, h := s.screen.Size()

	title := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Dim(true)
	s.text(1, 0, title, s.card.Title)
	header := s.opts.Subtitle
	if s.opts.Progress != "" {
		header = fmt.Sprintf("%s  [%s]", header, s.opts.Progress)
	}
	s.text(1, 1, dim, header)

	for r, row := range s.frame() {
		for c, cell := range row {
			style := tcell.StyleDefault.
				Foreground(rgb(cell.Top)).
				Background(rgb(cell.Bottom))
			s.screen.SetContent(s.x0+c, s.y0+r, '▀', nil, style)
		}
	}

	if !s.surface.IsRevealed() {
		label := "Scratch to reveal"
		coat := tcell.StyleDefault.
			Foreground(tcell.ColorDimGray).
			Background(rgb(render.OverlayColor))
		s.text(s.x0+max(0, (s.cols-len(label))/2), s.y0+s.rows/2, coat, label)
	}

	var footer string
	switch {
	case s.surface.IsRevealed():
		footer = "Revealed! Enter to save progress, Esc to close"
	case !s.surface.IsInteractive():
		footer = "This card cannot be scratched at this size. q to quit"
	default:
		footer = fmt.Sprintf("Drag with the mouse to scratch (%d%% cleared). q to quit",
			int(s.surface.ErasedFraction()*100))
	}
	s.text(1, h-1, dim, truncate(footer, w-2))

	s.screen.Show()
}

func (s *Session) text(x, y int, style tcell.Style, str string) {
	for i, r := range []rune(str) {
		s.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (s *Session) result(confirmed bool) Result {
	revealed := s.surface.IsRevealed()
	return Result{
		Revealed:  revealed,
		Confirmed: revealed && confirmed,
		Fraction:  s.surface.ErasedFraction(),
	}
}

func rgb(c interface{ RGBA() (r, g, b, a uint32) }) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
