package pixel

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
)

// Color 是一个非预乘的 RGBA 像素
type Color struct {
	R, G, B, A uint8
}

// Buffer 是 width×height 的 RGBA 像素缓冲区，每个通道一个字节
// 尺寸在创建后不可变，len(data) == width*height*4 始终成立
type Buffer struct {
	width  int
	height int
	data   []uint8
}

// New 创建一个全透明的缓冲区
func New(width, height int) *Buffer {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("pixel: negative buffer size %dx%d", width, height))
	}
	return &Buffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// FromImage 把任意 image.Image 转成 Buffer（非预乘 RGBA）
func FromImage(img image.Image) *Buffer {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return FromNRGBA(nrgba)
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Buffer{width: b.Dx(), height: b.Dy(), data: dst.Pix}
}

// FromNRGBA 按行拷贝，兼容 Stride 与非零 Min 的子图
func FromNRGBA(img *image.NRGBA) *Buffer {
	b := img.Bounds()
	buf := New(b.Dx(), b.Dy())
	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		src := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(buf.data[y*rowLen:(y+1)*rowLen], img.Pix[src:src+rowLen])
	}
	return buf
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

// Data returns the raw RGBA bytes. Callers that did not create the buffer
// must treat it as read-only.
func (b *Buffer) Data() []uint8 { return b.data }

func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Len returns the pixel count.
func (b *Buffer) Len() int { return b.width * b.height }

func (b *Buffer) In(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Offset 返回 (x, y) 在 data 中的起始下标，不做边界检查
func (b *Buffer) Offset(x, y int) int {
	return (y*b.width + x) * 4
}

// At returns the pixel at (x, y), or the zero Color outside the buffer.
func (b *Buffer) At(x, y int) Color {
	if !b.In(x, y) {
		return Color{}
	}
	return b.ColorAt(b.Offset(x, y))
}

// ColorAt reads the pixel starting at byte offset off.
func (b *Buffer) ColorAt(off int) Color {
	return Color{R: b.data[off], G: b.data[off+1], B: b.data[off+2], A: b.data[off+3]}
}

func (b *Buffer) Set(x, y int, c Color) {
	if !b.In(x, y) {
		return
	}
	i := b.Offset(x, y)
	b.data[i] = c.R
	b.data[i+1] = c.G
	b.data[i+2] = c.B
	b.data[i+3] = c.A
}

func (b *Buffer) Alpha(x, y int) uint8 {
	if !b.In(x, y) {
		return 0
	}
	return b.data[b.Offset(x, y)+3]
}

func (b *Buffer) SetAlpha(x, y int, a uint8) {
	if !b.In(x, y) {
		return
	}
	b.data[b.Offset(x, y)+3] = a
}

// Fill 用同一颜色填满整个缓冲区
func (b *Buffer) Fill(c Color) {
	for i := 0; i < len(b.data); i += 4 {
		b.data[i] = c.R
		b.data[i+1] = c.G
		b.data[i+2] = c.B
		b.data[i+3] = c.A
	}
}

// FillRect fills r (clipped to the buffer) with c.
func (b *Buffer) FillRect(r image.Rectangle, c Color) {
	r = r.Intersect(b.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.Set(x, y, c)
		}
	}
}

// Clone 深拷贝，新旧缓冲区之间没有任何共享
func (b *Buffer) Clone() *Buffer {
	data := make([]uint8, len(b.data))
	copy(data, b.data)
	return &Buffer{width: b.width, height: b.height, data: data}
}

// Equal reports whether both buffers have the same size and identical bytes.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.width == o.width && b.height == o.height && bytes.Equal(b.data, o.data)
}

// SameSize reports whether o has the same dimensions as b.
func (b *Buffer) SameSize(o *Buffer) bool {
	return b.width == o.width && b.height == o.height
}

// ToNRGBA 拷贝出一个 *image.NRGBA，方便交给 draw / png / resize
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	copy(img.Pix, b.data)
	return img
}

// CountTransparent returns the number of pixels whose alpha is 0.
func (b *Buffer) CountTransparent() int {
	n := 0
	for i := 3; i < len(b.data); i += 4 {
		if b.data[i] == 0 {
			n++
		}
	}
	return n
}

// HasTransparency 检查 alpha 通道是否真的包含透明信息
// 只要存在非 255（非完全不透明），就认为“已有抠图”
func (b *Buffer) HasTransparency() bool {
	for i := 3; i < len(b.data); i += 4 {
		if b.data[i] != 255 {
			return true
		}
	}
	return false
}

// AlphaBounds 从 alpha 通道计算主体 bounding box
// alpha > threshold 的像素当作主体；没有主体时 ok 为 false
func (b *Buffer) AlphaBounds(threshold uint8) (r image.Rectangle, ok bool) {
	minX, minY := b.width, b.height
	maxX, maxY := -1, -1

	for y := 0; y < b.height; y++ {
		row := y * b.width * 4
		for x := 0; x < b.width; x++ {
			if b.data[row+x*4+3] <= threshold {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}

	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// AlphaPlane copies the alpha channel into a grayscale image.
func (b *Buffer) AlphaPlane() *image.Gray {
	g := image.NewGray(b.Bounds())
	for i := 0; i < b.Len(); i++ {
		g.Pix[i] = b.data[i*4+3]
	}
	return g
}
