package editor

import (
	"math"

	"github.com/chaos-io/cutout/pixel"
)

// stroke 一次按下到抬起之间的笔画，只在结束时提交一次历史
type stroke struct {
	buf     *pixel.Buffer
	last    Point
	radius  float64
	changed bool
}

// EraseStroke erases a whole stroke in one call. Points are in screen space;
// diameter is in buffer pixels (<= 0 uses the brush diameter).
// It reports whether any pixel changed, in which case one history entry is
// committed.
func (s *Session) EraseStroke(points []Point, diameter float64) bool {
	if len(points) == 0 {
		return false
	}
	s.BeginStroke(points[0], diameter)
	for _, p := range points[1:] {
		s.StrokeTo(p)
	}
	return s.EndStroke()
}

// BeginStroke 鼠标按下：在工作副本上盖第一个圆
func (s *Session) BeginStroke(p Point, diameter float64) {
	if diameter <= 0 {
		diameter = s.tools.BrushDiameter
	}
	diameter = max(diameter, 1)

	st := &stroke{
		buf:    s.Export().Clone(),
		radius: diameter / 2,
		last:   s.ScreenToBuffer(p),
	}
	st.stamp(st.last)
	s.stroke = st
}

// StrokeTo 鼠标移动：两点之间按半径插值，快速拖动也不会断开
// 线段先裁剪到缓冲区（外扩一个半径）内，画布外的点不会产生额外的插值
func (s *Session) StrokeTo(p Point) {
	st := s.stroke
	if st == nil {
		return
	}
	to := s.ScreenToBuffer(p)
	from := st.last
	st.last = to

	r := st.radius
	a, b, ok := clipSegment(from, to,
		-r, -r, float64(st.buf.Width())+r, float64(st.buf.Height())+r)
	if !ok {
		return
	}

	dx, dy := b.X-a.X, b.Y-a.Y
	step := max(r/2, 0.5)
	n := int(math.Ceil(math.Hypot(dx, dy) / step))
	if a != from {
		st.stamp(a)
	}
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		st.stamp(Point{X: a.X + dx*t, Y: a.Y + dy*t})
	}
}

// clipSegment 用 Liang-Barsky 把线段 a-b 裁剪到矩形内，完全在外面时 ok 为 false
func clipSegment(a, b Point, minX, minY, maxX, maxY float64) (Point, Point, bool) {
	if math.IsNaN(a.X+a.Y+b.X+b.Y) || math.IsInf(a.X+a.Y+b.X+b.Y, 0) {
		return a, b, false
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X - minX},
		{dx, maxX - a.X},
		{-dy, a.Y - minY},
		{dy, maxY - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return Point{X: a.X + dx*t0, Y: a.Y + dy*t0}, Point{X: a.X + dx*t1, Y: a.Y + dy*t1}, true
}

// EndStroke 鼠标抬起：有像素变化才提交
func (s *Session) EndStroke() bool {
	st := s.stroke
	s.stroke = nil
	if st == nil || !st.changed {
		return false
	}
	s.commit("erase", st.buf)
	return true
}

func (s *Session) cancelStroke() { s.stroke = nil }

// stamp 把圆内像素的 alpha 置 0，RGB 不动
func (st *stroke) stamp(c Point) {
	b := st.buf
	r := st.radius
	minX := max(int(math.Floor(c.X-r)), 0)
	maxX := min(int(math.Ceil(c.X+r)), b.Width()-1)
	minY := max(int(math.Floor(c.Y-r)), 0)
	maxY := min(int(math.Ceil(c.Y+r)), b.Height()-1)

	data := b.Data()
	r2 := r * r
	for y := minY; y <= maxY; y++ {
		dy := float64(y) - c.Y
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - c.X
			if dx*dx+dy*dy > r2 {
				continue
			}
			off := b.Offset(x, y) + 3
			if data[off] != 0 {
				data[off] = 0
				st.changed = true
			}
		}
	}
}
