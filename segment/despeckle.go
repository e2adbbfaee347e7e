package segment

import (
	"github.com/chaos-io/cutout/pixel"
)

// Despeckle 去掉孤立的小块不透明区域（8 连通）
// minRatio 是保留一个连通块所需的最小占比（相对全部不透明像素）
// 只会把 alpha 置 0，RGB 不变；返回新的缓冲区
func Despeckle(src *pixel.Buffer, minRatio float64) *pixel.Buffer {
	return despeckle(src, minRatio, nil)
}

// Despeckle 同包级 Despeckle，按 Options 的 SliceSize/Yield 分片
func (s *Segmenter) Despeckle(src *pixel.Buffer, minRatio float64) *pixel.Buffer {
	return despeckle(src, minRatio, pixel.NewSlicer(s.opts.SliceSize, s.opts.Yield))
}

func despeckle(src *pixel.Buffer, minRatio float64, sl *pixel.Slicer) *pixel.Buffer {
	out := src.Clone()
	w, h := src.Width(), src.Height()
	data := out.Data()

	total := src.Len() - src.CountTransparent()
	if total == 0 || minRatio <= 0 {
		return out
	}

	labels := make([]int, w*h)
	for i := range labels {
		labels[i] = -1
	}
	var sizes []int

	dx := [8]int{-1, 0, 1, -1, 1, -1, 0, 1}
	dy := [8]int{-1, -1, -1, 0, 0, 1, 1, 1}
	queue := make([]int, 0, 1024)

	for start := 0; start < w*h; start++ {
		sl.Tick()
		if data[start*4+3] == 0 || labels[start] >= 0 {
			continue
		}

		id := len(sizes)
		labels[start] = id
		queue = append(queue[:0], start)
		size := 0

		for head := 0; head < len(queue); head++ {
			cur := queue[head]
			size++
			sl.Tick()
			cx, cy := cur%w, cur/w
			for d := 0; d < 8; d++ {
				nx, ny := cx+dx[d], cy+dy[d]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if data[ni*4+3] != 0 && labels[ni] < 0 {
					labels[ni] = id
					queue = append(queue, ni)
				}
			}
		}
		sizes = append(sizes, size)
	}

	if len(sizes) <= 1 {
		return out
	}

	minSize := int(float64(total) * minRatio)
	for i, l := range labels {
		sl.Tick()
		if l >= 0 && sizes[l] < minSize {
			data[i*4+3] = 0
		}
	}
	return out
}
