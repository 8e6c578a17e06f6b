package display

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/tagpad/pkg/hal"
)

func TestBitmapLayout(t *testing.T) {
	var b Bitmap
	b.SetPixel(0, 0, white)
	b.SetPixel(5, 9, white)
	b.SetPixel(127, 63, white)
	b.SetPixel(128, 0, white)
	b.SetPixel(-1, 3, white)
	require.Equal(t, byte(0x01), b[0])
	require.Equal(t, byte(0x02), b[Width+5])
	require.Equal(t, byte(0x80), b[hal.FrameSize-1])
	require.Equal(t, 3, b.Lit())
	require.True(t, b.Pixel(5, 9))
	require.False(t, b.Pixel(5, 8))

	b.SetPixel(5, 9, color.RGBA{A: 0xff})
	require.False(t, b.Pixel(5, 9))
	require.Equal(t, 2, b.Lit())
}

func TestSlotLastWriteWins(t *testing.T) {
	var s Slot
	_, ok := s.Take()
	require.False(t, ok)

	a, c := make([]byte, hal.FrameSize), make([]byte, hal.FrameSize)
	a[0], c[0] = 1, 2
	s.Set(a)
	s.Set(c)
	f, ok := s.Take()
	require.True(t, ok)
	require.Equal(t, byte(2), f[0])
	require.True(t, s.IsEmpty())
	_, ok = s.Take()
	require.False(t, ok)
}

func TestSlotWrongSize(t *testing.T) {
	var s Slot
	require.Panics(t, func() { s.Set(make([]byte, 10)) })
	require.True(t, s.IsEmpty())
}

func TestCommErrorImage(t *testing.T) {
	img := CommErrorImage()
	b := (*Bitmap)(img)
	require.True(t, b.Pixel(0, 0))
	require.True(t, b.Pixel(Width-1, Height-1))
	// border plus glyph plus text
	require.True(t, b.Lit() > 2*Width+2*Height)
	require.Same(t, img, CommErrorImage())
}

func TestRenderText(t *testing.T) {
	blank := (*Bitmap)(RenderText())
	require.Zero(t, blank.Lit())

	one := (*Bitmap)(RenderText("HELLO"))
	require.True(t, one.Lit() > 0)
	// first line stays within the first text row
	for x := int16(0); x < Width; x++ {
		for y := int16(lineHeight); y < Height; y++ {
			require.False(t, one.Pixel(x, y))
		}
	}

	many := make([]string, MaxTextLines+3)
	for i := range many {
		many[i] = "X"
	}
	require.Equal(t, (*Bitmap)(RenderText(many[:MaxTextLines]...)).Lit(),
		(*Bitmap)(RenderText(many...)).Lit())
}
