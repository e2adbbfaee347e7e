package editor

// Pan moves the view. It never touches pixels or history.
func (s *Session) Pan(dx, dy float64) {
	s.tools.PanX += dx
	s.tools.PanY += dy
}

// Zoom 以倍数缩放视图，结果限制在 [MinZoom, MaxZoom]
func (s *Session) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	s.tools.Zoom = clampZoom(s.tools.Zoom * factor)
}

// ZoomAt zooms while keeping the buffer point under screen point p fixed.
func (s *Session) ZoomAt(factor float64, p Point) {
	before := s.ScreenToBuffer(p)
	s.Zoom(factor)
	s.tools.PanX = p.X - before.X*s.tools.Zoom
	s.tools.PanY = p.Y - before.Y*s.tools.Zoom
}

func (s *Session) SetZoom(z float64) {
	s.tools.Zoom = clampZoom(z)
}

// ScreenToBuffer 屏幕坐标 -> 缓冲区坐标（平移/缩放的逆变换）
func (s *Session) ScreenToBuffer(p Point) Point {
	return Point{
		X: (p.X - s.tools.PanX) / s.tools.Zoom,
		Y: (p.Y - s.tools.PanY) / s.tools.Zoom,
	}
}

func (s *Session) BufferToScreen(p Point) Point {
	return Point{
		X: p.X*s.tools.Zoom + s.tools.PanX,
		Y: p.Y*s.tools.Zoom + s.tools.PanY,
	}
}
