package segment

import (
	"github.com/chaos-io/cutout/pixel"
)

type phase int

const (
	phaseFlat phase = iota
	phaseSeed
	phaseFill
	phaseDone
)

// Job 是一次可分片执行的分割任务
// 每次 Step 最多处理 SliceSize 个单位（像素或出栈次数），
// 分片大小只影响调度，不影响结果
type Job struct {
	buf   *pixel.Buffer
	slice int

	// flat 为 nil 时跳过平坦分类
	flat func(c pixel.Color) bool
	// passable 为 nil 时跳过洪水填充
	passable func(c pixel.Color) bool

	phase   phase
	next    int
	visited []bool
	stack   []int
	slices  int
}

// Start 拷贝输入并准备好分片任务
func (s *Segmenter) Start(src *pixel.Buffer) *Job {
	o := s.opts
	j := &Job{
		buf:   src.Clone(),
		slice: o.SliceSize,
	}

	switch o.Mode {
	case ModeKeyed:
		key := j.buf.At(0, 0)
		j.passable = func(c pixel.Color) bool {
			return c.A == 0 || pixel.ChannelsWithin(c, key, o.KeyTolerance)
		}
	case ModeWhite:
		t := o.WhiteThreshold
		j.flat = func(c pixel.Color) bool {
			return c.R > t && c.G > t && c.B > t
		}
	default:
		j.flat = func(c pixel.Color) bool {
			return pixel.BrighterThan(c, o.FlatThreshold) && pixel.IsNearGray(c, o.GrayDelta)
		}
		j.passable = func(c pixel.Color) bool {
			return c.A == 0 || pixel.BrighterThan(c, o.LooseThreshold)
		}
	}

	if j.flat == nil {
		j.phase = phaseSeed
	}
	return j
}

// Step runs one slice and reports whether the job is finished.
func (j *Job) Step() bool {
	if j.phase == phaseDone {
		return true
	}
	j.slices++

	budget := j.slice
	if budget <= 0 {
		budget = -1
	}

	for budget != 0 {
		switch j.phase {
		case phaseFlat:
			if j.next >= j.buf.Len() {
				j.phase = phaseSeed
				continue
			}
			off := j.next * 4
			if j.flat(j.buf.ColorAt(off)) {
				j.buf.Data()[off+3] = 0
			}
			j.next++
		case phaseSeed:
			j.seed()
			continue
		case phaseFill:
			if len(j.stack) == 0 {
				j.phase = phaseDone
				j.visited = nil
				return true
			}
			j.fillOne()
		case phaseDone:
			return true
		}
		if budget > 0 {
			budget--
		}
	}
	return j.phase == phaseDone
}

func (j *Job) seed() {
	w, h := j.buf.Width(), j.buf.Height()
	if j.passable == nil || w == 0 || h == 0 {
		j.phase = phaseDone
		return
	}
	j.visited = make([]bool, w*h)
	j.stack = append(j.stack,
		0,
		w-1,
		(h-1)*w,
		(h-1)*w+w-1,
	)
	j.phase = phaseFill
}

// fillOne 弹出一个坐标并处理，用显式栈代替递归
func (j *Job) fillOne() {
	n := len(j.stack) - 1
	idx := j.stack[n]
	j.stack = j.stack[:n]

	if j.visited[idx] {
		return
	}
	j.visited[idx] = true

	off := idx * 4
	if !j.passable(j.buf.ColorAt(off)) {
		return
	}
	j.buf.Data()[off+3] = 0

	w := j.buf.Width()
	x, y := idx%w, idx/w
	if x+1 < w {
		j.stack = append(j.stack, idx+1)
	}
	if x > 0 {
		j.stack = append(j.stack, idx-1)
	}
	if y+1 < j.buf.Height() {
		j.stack = append(j.stack, idx+w)
	}
	if y > 0 {
		j.stack = append(j.stack, idx-w)
	}
}

func (j *Job) Done() bool { return j.phase == phaseDone }

// Slices returns how many Step calls did work.
func (j *Job) Slices() int { return j.slices }

// Result returns the segmented buffer, or nil while the job is still running.
func (j *Job) Result() *pixel.Buffer {
	if j.phase != phaseDone {
		return nil
	}
	return j.buf
}
