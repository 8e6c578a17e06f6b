package display

import (
	"image/color"
	"sync"

	"tinygo.org/x/tinyfont"

	"github.com/robotalks/tagpad/pkg/hal"
)

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	commErrorOnce  sync.Once
	commErrorImage Bitmap
)

// CommErrorImage is shown when the host has been silent for too long.
func CommErrorImage() *hal.Frame {
	commErrorOnce.Do(func() {
		renderCommError(&commErrorImage)
	})
	return commErrorImage.Frame()
}

func renderCommError(b *Bitmap) {
	for x := int16(0); x < Width; x++ {
		b.SetPixel(x, 0, white)
		b.SetPixel(x, Height-1, white)
	}
	for y := int16(0); y < Height; y++ {
		b.SetPixel(0, y, white)
		b.SetPixel(Width-1, y, white)
	}
	// crossed-out link glyph
	for i := int16(0); i < 16; i++ {
		b.SetPixel(56+i, 8+i, white)
		b.SetPixel(71-i, 8+i, white)
	}
	tinyfont.WriteLine(b, &tinyfont.TomThumb, 34, 38, "NO HOST LINK", white)
	tinyfont.WriteLine(b, &tinyfont.TomThumb, 22, 50, "CHECK THE CABLE", white)
}

// lineHeight is the TomThumb advance plus one pixel of spacing.
const lineHeight = 7

// MaxTextLines is the number of text lines RenderText fits.
const MaxTextLines = Height / lineHeight

// RenderText renders lines of text top down, clipping what does not fit.
func RenderText(lines ...string) *hal.Frame {
	var b Bitmap
	for n, line := range lines {
		if n >= MaxTextLines {
			break
		}
		tinyfont.WriteLine(&b, &tinyfont.TomThumb, 1, int16((n+1)*lineHeight-1), line, white)
	}
	return b.Frame()
}
