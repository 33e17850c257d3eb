package display

import "image"

// Display presents one frame per tick and reports whether the user asked to
// exit. ExitRequested doubles as the loop's pacing wait.
type Display interface {
	Show(img image.Image) error
	ExitRequested() bool
	Close() error
}
