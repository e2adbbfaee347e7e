package pixel

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	white = Color{255, 255, 255, 255}
	red   = Color{255, 0, 0, 255}
)

func TestBuffer_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	b := New(3, 2)
	b.Fill(white)
	require.Len(t, b.Data(), 3*2*4)

	c := b.Clone()
	c.Set(1, 1, red)

	assert.Equal(t, white, b.At(1, 1))
	assert.Equal(t, red, c.At(1, 1))
	assert.False(t, b.Equal(c))
}

func TestBuffer_OutOfBounds(t *testing.T) {
	t.Parallel()

	b := New(2, 2)
	b.Set(-1, 0, red)
	b.Set(2, 0, red)
	b.SetAlpha(0, 5, 10)

	assert.Equal(t, Color{}, b.At(5, 5))
	assert.Equal(t, uint8(0), b.Alpha(-1, -1))
	assert.Equal(t, 4, b.CountTransparent())
}

func TestFromImage_NonZeroOrigin(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	sub := src.SubImage(image.Rect(1, 1, 4, 4)).(*image.NRGBA)

	b := FromImage(sub)
	assert.Equal(t, 3, b.Width())
	assert.Equal(t, 3, b.Height())
	assert.Equal(t, Color{10, 20, 30, 128}, b.At(1, 1))
}

func TestFromImage_Opaque(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	b := FromImage(src)
	assert.Equal(t, Color{1, 2, 3, 255}, b.At(0, 0))
	assert.Equal(t, Color{0, 0, 0, 0}, b.At(1, 0))
}

func TestBuffer_AlphaBounds(t *testing.T) {
	t.Parallel()

	b := New(10, 8)
	_, ok := b.AlphaBounds(0)
	assert.False(t, ok)

	b.FillRect(image.Rect(2, 3, 5, 7), red)
	r, ok := b.AlphaBounds(0)
	require.True(t, ok)
	assert.Equal(t, image.Rect(2, 3, 5, 7), r)
	assert.True(t, b.HasTransparency())
}

func TestPNGRoundTrip(t *testing.T) {
	t.Parallel()

	b := New(4, 3)
	b.Set(1, 2, Color{9, 8, 7, 100})

	data, err := EncodePNGBytes(b)
	require.NoError(t, err)
	assert.True(t, IsPNG(data))

	got, err := DecodePNGBytes(data)
	require.NoError(t, err)
	assert.True(t, b.Equal(got))
}

func TestDecodePNG_Rejects(t *testing.T) {
	t.Parallel()

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil))

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "jpeg", data: jpg.Bytes()},
		{name: "truncated png", data: append([]byte{}, pngMagic...)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePNG(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecode))
		})
	}
}

func TestFitWithin(t *testing.T) {
	t.Parallel()

	b := New(400, 200)
	assert.Same(t, b, FitWithin(b, 1024))

	got := FitWithin(b, 100)
	assert.Equal(t, 100, got.Width())
	assert.Equal(t, 50, got.Height())
}

func TestResize_KeepsSolidColor(t *testing.T) {
	t.Parallel()

	b := New(8, 8)
	b.Fill(red)

	got := Resize(b, 20, 20)
	assert.Equal(t, 20, got.Width())
	c := got.At(10, 10)
	assert.InDelta(t, 255, int(c.R), 3)
	assert.InDelta(t, 0, int(c.G), 3)
	assert.InDelta(t, 255, int(c.A), 3)
}
