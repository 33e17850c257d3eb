package display

import (
	"image"
	"image/color"
	"testing"
)

func TestPackRGB565(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	img.SetRGBA(1, 0, color.RGBA{R: 0xFF, G: 0, B: 0, A: 0xFF})

	buf := make([]byte, 4)
	packRGB565(img, buf)

	// White: all bits set. Little-endian on the wire.
	if buf[0] != 0xFF || buf[1] != 0xFF {
		t.Errorf("white pixel = %02x%02x, want ffff", buf[1], buf[0])
	}
	// Pure red: top 5 bits.
	red := uint16(buf[3])<<8 | uint16(buf[2])
	if red != 0xF800 {
		t.Errorf("red pixel = %04x, want f800", red)
	}
}
