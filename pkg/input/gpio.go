//go:build linux

package input

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIO owns the character-device GPIO chip and every line requested from it.
// Close releases all of them.
type GPIO struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// OpenGPIO opens the named chip, e.g. "gpiochip0".
func OpenGPIO(chipName string) (*GPIO, error) {
	c, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("failed to open chip: %w", err)
	}
	return &GPIO{chip: c}, nil
}

// Line is a single pulled-up, active-low input line. Pressed returns true
// when the control is physically actuated; the polarity inversion lives here
// and nowhere else.
type Line struct {
	line *gpiocdev.Line
}

// Button requests a line wired in the usual switch-to-ground arrangement:
// internal pull-up, electrically low when actuated. AsActiveLow makes the
// kernel report 1 for the actuated state.
func (g *GPIO) Button(offset int) (*Line, error) {
	l, err := g.chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.AsActiveLow,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to request line %d: %w", offset, err)
	}
	g.lines = append(g.lines, l)
	return &Line{line: l}, nil
}

// Pressed implements Sampler.
func (l *Line) Pressed() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Close releases all requested lines and the chip.
func (g *GPIO) Close() {
	for _, l := range g.lines {
		l.Close()
	}
	g.chip.Close()
}
