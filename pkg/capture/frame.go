package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
)

// Frame is one captured camera frame as delivered by the sensor: JPEG bytes
// plus pixel dimensions. The JPEG bytes are what gets written to disk for
// photos and piped into a recording; the decoded image is only needed for
// the on-screen preview.
type Frame struct {
	JPEG   []byte
	Width  int
	Height int

	img image.Image
}

// Decode parses the JPEG payload. The result is cached, so repeated calls on
// the same frame are cheap.
func (f *Frame) Decode() (image.Image, error) {
	if f.img != nil {
		return f.img, nil
	}
	img, err := jpeg.Decode(bytes.NewReader(f.JPEG))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	f.img = img
	return img, nil
}

// Source produces a lazy, effectively infinite sequence of frames. A read
// error means the source has stopped producing and ends the session.
type Source interface {
	ReadFrame(ctx context.Context) (*Frame, error)
}
