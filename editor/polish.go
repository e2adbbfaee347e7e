package editor

import (
	"image"

	"github.com/disintegration/gift"

	"github.com/chaos-io/cutout/pixel"
)

// AutoPolish 边缘精修：
//  1. 与透明像素相邻的边缘像素，用更严格的近白规则再判一次，命中则擦掉
//  2. 对 alpha 做 3x3 均值模糊，只作用在剩下的边缘像素上，且只降不升
//
// 模糊按行分片，每片多带上下各一行，结果与整幅模糊一致
// 有变化时提交一次历史
func (s *Session) AutoPolish() bool {
	cur := s.Export()
	next := cur.Clone()
	w, h := cur.Width(), cur.Height()
	data := next.Data()
	sl := s.slicer()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sl.Tick()
			off := cur.Offset(x, y)
			c := cur.ColorAt(off)
			if c.A == 0 || !touchesTransparent(cur, x, y) {
				continue
			}
			if pixel.BrighterThan(c, s.polishThreshold) && pixel.IsNearGray(c, s.grayDelta) {
				data[off+3] = 0
			}
		}
	}

	alpha := next.AlphaPlane()
	g := gift.New(gift.Mean(3, false))
	band := sl.Rows(w)
	if band == 0 {
		band = max(h, 1)
	}

	for y0 := 0; y0 < h; y0 += band {
		y1 := min(y0+band, h)
		// 上下各多取一行，保证边界行的邻域完整
		padded := image.Rect(0, max(y0-1, 0), w, min(y1+1, h))
		src := alpha.SubImage(padded)
		blurred := image.NewGray(g.Bounds(src.Bounds()))
		g.Draw(blurred, src)

		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				sl.Tick()
				off := next.Offset(x, y) + 3
				a := data[off]
				if a == 0 || !touchesTransparent(next, x, y) {
					continue
				}
				if v := blurred.Pix[blurred.PixOffset(x, y-padded.Min.Y)]; v < a {
					data[off] = v
				}
			}
		}
	}

	if next.Equal(cur) {
		return false
	}
	s.cancelStroke()
	s.commit("auto_polish", next)
	return true
}

// touchesTransparent 4 邻域里有全透明像素；缓冲区外不算透明
func touchesTransparent(b *pixel.Buffer, x, y int) bool {
	return (x > 0 && b.Alpha(x-1, y) == 0) ||
		(x+1 < b.Width() && b.Alpha(x+1, y) == 0) ||
		(y > 0 && b.Alpha(x, y-1) == 0) ||
		(y+1 < b.Height() && b.Alpha(x, y+1) == 0)
}
