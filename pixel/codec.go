package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
)

// ErrDecode 输入不是合法的 PNG，或者尺寸为 0
var ErrDecode = errors.New("pixel: decode image")

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// IsPNG checks the PNG signature.
func IsPNG(data []byte) bool {
	return len(data) >= len(pngMagic) && bytes.Equal(data[:len(pngMagic)], pngMagic)
}

// DecodePNG 读取完整的 PNG 并解码为 Buffer
func DecodePNG(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrDecode, err)
	}
	return DecodePNGBytes(data)
}

func DecodePNGBytes(data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	if !IsPNG(data) {
		return nil, fmt.Errorf("%w: not a png", ErrDecode)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: zero dimension %dx%d", ErrDecode, b.Dx(), b.Dy())
	}
	return FromImage(img), nil
}

// EncodePNG always writes an RGBA png so the alpha channel survives.
func EncodePNG(w io.Writer, b *Buffer) error {
	return png.Encode(w, b.ToNRGBA())
}

func EncodePNGBytes(b *Buffer) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
