package pixel

import (
	"github.com/nfnt/resize"
)

// Resize 用 Lanczos3 缩放到指定尺寸（拉伸，不保持比例）
func Resize(b *Buffer, width, height int) *Buffer {
	if width == b.width && height == b.height {
		return b.Clone()
	}
	if width <= 0 || height <= 0 || b.Len() == 0 {
		return New(max(width, 0), max(height, 0))
	}
	resized := resize.Resize(uint(width), uint(height), b.ToNRGBA(), resize.Lanczos3)
	return FromImage(resized)
}

// FitWithin 缩放（最长边 <= maxSize），已经足够小时原样返回
func FitWithin(b *Buffer, maxSize int) *Buffer {
	longest := max(b.width, b.height)
	if maxSize <= 0 || longest <= maxSize {
		return b
	}

	scale := float64(maxSize) / float64(longest)
	newW := max(1, int(float64(b.width)*scale))
	newH := max(1, int(float64(b.height)*scale))
	return Resize(b, newW, newH)
}
