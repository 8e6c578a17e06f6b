// Package display holds the display-side state of the core: the bitmap
// layout, the single-slot handoff buffer and the built-in images.
package display

import (
	"image/color"

	"tinygo.org/x/drivers"

	"github.com/robotalks/tagpad/pkg/hal"
)

// Bitmap geometry. The frame is laid out in 8 pages of 128 columns, each
// byte holding 8 vertical pixels with the least significant bit on top.
const (
	Width  = 128
	Height = 64
	Pages  = Height / 8
)

// Bitmap is a frame with pixel access. It implements drivers.Displayer
// so fonts and drawing helpers from tinygo.org/x can render into it.
type Bitmap hal.Frame

var _ drivers.Displayer = (*Bitmap)(nil)

// Frame returns the raw frame.
func (b *Bitmap) Frame() *hal.Frame {
	return (*hal.Frame)(b)
}

// Size implements drivers.Displayer.
func (b *Bitmap) Size() (x, y int16) {
	return Width, Height
}

// SetPixel implements drivers.Displayer. Any non-black color lights the
// pixel.
func (b *Bitmap) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return
	}
	idx, mask := int(y/8)*Width+int(x), byte(1)<<uint(y%8)
	if c.R|c.G|c.B != 0 {
		b[idx] |= mask
	} else {
		b[idx] &^= mask
	}
}

// Display implements drivers.Displayer. A Bitmap has nothing to flush.
func (b *Bitmap) Display() error {
	return nil
}

// Pixel reports whether a pixel is lit.
func (b *Bitmap) Pixel(x, y int16) bool {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return false
	}
	return b[int(y/8)*Width+int(x)]&(1<<uint(y%8)) != 0
}

// Lit counts lit pixels.
func (b *Bitmap) Lit() (n int) {
	for _, v := range b {
		for ; v != 0; v &= v - 1 {
			n++
		}
	}
	return
}
