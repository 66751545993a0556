package scratch

import (
	"context"

	"github.com/gdamore/tcell/v2"
)

// Pump forwards screen events to a channel. The goroutine ends when the
// screen is finalized (PollEvent returns nil) or ctx is done, and the
// channel is closed when it does.
func Pump(ctx context.Context, screen tcell.Screen) <-chan tcell.Event {
	out := make(chan tcell.Event)
	go func() {
		defer close(out)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
