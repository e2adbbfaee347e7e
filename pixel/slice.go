package pixel

// Slicer 把一次整幅缓冲区的遍历切成若干片，每处理 Size 个单位调用一次 Yield
// Size <= 0 或 Yield 为 nil 时不切片；切片只影响调度，不影响结果
type Slicer struct {
	Size  int
	Yield func()

	n      int
	slices int
}

func NewSlicer(size int, yield func()) *Slicer {
	return &Slicer{Size: size, Yield: yield}
}

// Tick counts one unit of work and yields when a slice is full.
// A nil Slicer is valid and never yields.
func (s *Slicer) Tick() {
	if s == nil || s.Size <= 0 {
		return
	}
	s.n++
	if s.n < s.Size {
		return
	}
	s.n = 0
	s.slices++
	if s.Yield != nil {
		s.Yield()
	}
}

// Slices returns how many full slices have been completed.
func (s *Slicer) Slices() int {
	if s == nil {
		return 0
	}
	return s.slices
}

// Rows 每片包含的行数（宽度为 width 时），不切片时返回 0
func (s *Slicer) Rows(width int) int {
	if s == nil || s.Size <= 0 || width <= 0 {
		return 0
	}
	return max(1, s.Size/width)
}
