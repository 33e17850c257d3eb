package display

import (
	"bufio"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"os"
	"time"
)

// keyWait is the bounded wait inside ExitRequested. It keeps the appliance
// responsive while also pacing the main loop, the same role the 1 ms key
// poll played on the desktop build.
const keyWait = time.Millisecond

// Framebuffer presents frames on a Linux framebuffer device in RGB565, the
// native format of the appliance's SPI LCD. The exit key ('q') is read from
// stdin by a background watcher since a blocking read cannot be polled.
type Framebuffer struct {
	f      *os.File
	width  int
	height int
	buf    []byte
	keys   chan byte
}

// OpenFramebuffer opens the device, e.g. /dev/fb1, for a fixed resolution.
func OpenFramebuffer(dev string, width, height int) (*Framebuffer, error) {
	f, err := os.OpenFile(dev, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open framebuffer %s: %w", dev, err)
	}

	fb := &Framebuffer{
		f:      f,
		width:  width,
		height: height,
		buf:    make([]byte, width*height*2),
		keys:   make(chan byte, 8),
	}
	go fb.watchKeys()
	return fb, nil
}

func (fb *Framebuffer) watchKeys() {
	r := bufio.NewReader(os.Stdin)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		select {
		case fb.keys <- b:
		default:
		}
	}
}

// Show converts the frame to RGB565 little-endian and writes it at offset 0.
// The frame must already be at the display resolution.
func (fb *Framebuffer) Show(img image.Image) error {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		tmp := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		draw.Draw(tmp, tmp.Bounds(), img, img.Bounds().Min, draw.Src)
		rgba = tmp
	}
	if rgba.Bounds().Dx() != fb.width || rgba.Bounds().Dy() != fb.height {
		return fmt.Errorf("frame is %v, display is %dx%d", rgba.Bounds(), fb.width, fb.height)
	}

	packRGB565(rgba, fb.buf)
	if _, err := fb.f.WriteAt(fb.buf, 0); err != nil {
		return fmt.Errorf("framebuffer write failed: %w", err)
	}
	return nil
}

// packRGB565 converts an RGBA image into a little-endian RGB565 pixel buffer.
func packRGB565(img *image.RGBA, dst []byte) {
	j := 0
	for i := 0; i < len(img.Pix); i += 4 {
		r := uint16(img.Pix[i]) >> 3
		g := uint16(img.Pix[i+1]) >> 2
		b := uint16(img.Pix[i+2]) >> 3
		px := r<<11 | g<<5 | b
		dst[j] = byte(px)
		dst[j+1] = byte(px >> 8)
		j += 2
	}
}

// ExitRequested waits up to keyWait for a pending keypress and reports
// whether it was the exit key.
func (fb *Framebuffer) ExitRequested() bool {
	select {
	case b := <-fb.keys:
		if b == 'q' {
			return true
		}
	case <-time.After(keyWait):
	}
	return false
}

// Close releases the framebuffer. The stdin watcher goroutine ends with the
// process.
func (fb *Framebuffer) Close() error {
	if err := fb.f.Close(); err != nil {
		slog.Warn("framebuffer close failed", "error", err)
		return err
	}
	return nil
}
