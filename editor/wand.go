package editor

import (
	"math"

	"github.com/chaos-io/cutout/pixel"
)

// MagicWand 从 seed（缓冲区坐标）开始做 4 连通洪水填充，
// 与种子颜色的距离 <= tolerance 的像素 alpha 置 0
// 种子越界或已经全透明时什么都不做，返回 false
func (s *Session) MagicWand(seed Point, tolerance uint8) bool {
	cur := s.Export()
	sx, sy := int(math.Floor(seed.X)), int(math.Floor(seed.Y))
	if !cur.In(sx, sy) || cur.Alpha(sx, sy) == 0 {
		return false
	}

	next := cur.Clone()
	floodErase(next, sx, sy, tolerance, s.metric, s.slicer())

	s.cancelStroke()
	s.commit("magic_wand", next)
	return true
}

// MagicWandAt runs the wand at a screen point with the session tolerance.
func (s *Session) MagicWandAt(p Point) bool {
	return s.MagicWand(s.ScreenToBuffer(p), s.tools.Tolerance)
}

func floodErase(b *pixel.Buffer, sx, sy int, tolerance uint8, metric pixel.Metric, sl *pixel.Slicer) {
	w, h := b.Width(), b.Height()
	data := b.Data()
	seedColor := b.At(sx, sy)
	tol := uint32(tolerance)

	visited := make([]bool, w*h)
	stack := []int{sy*w + sx}

	for len(stack) > 0 {
		n := len(stack) - 1
		idx := stack[n]
		stack = stack[:n]
		sl.Tick()

		if visited[idx] {
			continue
		}
		visited[idx] = true

		off := idx * 4
		if metric.Distance(b.ColorAt(off), seedColor) > tol {
			continue
		}
		data[off+3] = 0

		x, y := idx%w, idx/w
		if x+1 < w {
			stack = append(stack, idx+1)
		}
		if x > 0 {
			stack = append(stack, idx-1)
		}
		if y+1 < h {
			stack = append(stack, idx+w)
		}
		if y > 0 {
			stack = append(stack, idx-w)
		}
	}
}
