package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wachiwi/knipskiste/pkg/capture"
	"github.com/wachiwi/knipskiste/pkg/display"
	"github.com/wachiwi/knipskiste/pkg/input"
	"github.com/wachiwi/knipskiste/pkg/overlay"
)

// Loop drives the appliance. Each tick, in order: poll every input switch
// (edge callbacks run synchronously into the controller), rebuild the
// overlay when the idle mode changed, acquire one frame, feed it to the
// controller, composite, display, and check for an exit request. Pacing
// comes from the blocking frame read plus the display's bounded key wait.
type Loop struct {
	Switches   []*input.Switch
	Source     capture.Source
	Display    display.Display
	Controller *Controller
	Overlay    *overlay.Compositor
	Joystick   *input.Joystick // optional, off the critical path
}

// Run loops until the exit key is pressed, the context got canceled, or
// frame acquisition fails. Only the last case returns an error.
func (l *Loop) Run(ctx context.Context) error {
	_, h := l.Overlay.Size()
	prevMode := l.Controller.Mode()
	l.Overlay.Set("mode", prevMode.String(), 10, h-10)
	l.Overlay.Rebuild()

	for {
		if ctx.Err() != nil {
			slog.Info("shutdown requested")
			return nil
		}

		for _, sw := range l.Switches {
			sw.Update()
		}

		if mode := l.Controller.Mode(); mode != prevMode {
			l.Overlay.Set("mode", mode.String(), 10, h-10)
			l.Overlay.Rebuild()
			prevMode = mode
		}

		frame, err := l.Source.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("shutdown requested")
				return nil
			}
			return fmt.Errorf("frame acquisition failed: %w", err)
		}

		l.Controller.Tick(ctx, frame)

		// The preview is the only consumer of decoded pixels; the cached and
		// recorded frames stay overlay-free.
		img, err := frame.Decode()
		if err != nil {
			slog.Warn("dropping undisplayable frame", "error", err)
		} else if err := l.Display.Show(l.Overlay.Composite(img)); err != nil {
			slog.Warn("display write failed", "error", err)
		}

		if l.Joystick != nil {
			if pos, err := l.Joystick.Sample(); err == nil {
				slog.Debug("joystick", "x", pos.X, "y", pos.Y, "pressed", pos.Pressed)
			}
		}

		if l.Display.ExitRequested() {
			slog.Info("exit key pressed")
			return nil
		}
	}
}
