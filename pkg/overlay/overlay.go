package overlay

import (
	"image"
	"image/color"
	"sort"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const glyphScale = 2

// Annotation is one labeled piece of text on the overlay. X, Y is the text
// baseline origin in screen coordinates.
type Annotation struct {
	Text string
	X, Y int
}

// Compositor maintains a transparent annotation layer at the fixed display
// resolution and blends it onto outgoing frames. The pixel layer is only
// consistent with the annotation map after Rebuild; Set never redraws.
// Rebuild is the expensive change-triggered step, Composite is cheap and runs
// every displayed frame.
type Compositor struct {
	width, height int
	annotations   map[string]Annotation
	layer         *image.RGBA
}

// New creates a compositor with an empty, fully transparent layer.
func New(width, height int) *Compositor {
	return &Compositor{
		width:       width,
		height:      height,
		annotations: make(map[string]Annotation),
		layer:       image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Set upserts a text annotation. The layer is not redrawn until Rebuild.
func (c *Compositor) Set(key, text string, x, y int) {
	c.annotations[key] = Annotation{Text: text, X: x, Y: y}
}

// Rebuild clears the layer and redraws every annotation, then derives a
// binary alpha mask from glyph coverage: fully opaque wherever any color
// channel is non-zero, fully transparent elsewhere.
func (c *Compositor) Rebuild() {
	for i := range c.layer.Pix {
		c.layer.Pix[i] = 0
	}

	// Glyphs are drawn at half resolution and scaled up with nearest
	// neighbor, which keeps the mask hard-edged.
	scratch := image.NewRGBA(image.Rect(0, 0, c.width/glyphScale, c.height/glyphScale))
	drawer := font.Drawer{
		Dst:  scratch,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}

	keys := make([]string, 0, len(c.annotations))
	for k := range c.annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a := c.annotations[k]
		drawer.Dot = fixed.P(a.X/glyphScale, a.Y/glyphScale)
		drawer.DrawString(a.Text)
	}

	xdraw.NearestNeighbor.Scale(c.layer, c.layer.Bounds(), scratch, scratch.Bounds(), xdraw.Src, nil)

	for i := 0; i < len(c.layer.Pix); i += 4 {
		if c.layer.Pix[i] > 0 || c.layer.Pix[i+1] > 0 || c.layer.Pix[i+2] > 0 {
			c.layer.Pix[i+3] = 0xFF
		} else {
			c.layer.Pix[i+3] = 0
		}
	}
}

// Composite resizes frame to the display resolution and alpha-blends the
// annotation layer on top. It is a pure function of the frame and the
// current layer content.
func (c *Compositor) Composite(frame image.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)

	for i := 0; i < len(out.Pix); i += 4 {
		alpha := float64(c.layer.Pix[i+3]) / 255.0
		if alpha == 0 {
			continue
		}
		for ch := 0; ch < 3; ch++ {
			f := float64(out.Pix[i+ch])
			o := float64(c.layer.Pix[i+ch])
			out.Pix[i+ch] = uint8(f*(1-alpha) + o*alpha)
		}
	}
	return out
}

// Size returns the fixed output resolution.
func (c *Compositor) Size() (int, int) {
	return c.width, c.height
}
