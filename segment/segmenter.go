package segment

import (
	"context"
	"image"
	"log/slog"

	"github.com/chaos-io/cutout/pixel"
)

// Mode 选择背景判定规则
type Mode int

const (
	// ModeFlood 平坦分类 + 四角种子洪水填充（默认）
	ModeFlood Mode = iota
	// ModeKeyed 以左上角像素为背景色，按通道容差从四角洪水填充
	ModeKeyed
	// ModeWhite 只做逐像素的白色阈值，不看连通性
	ModeWhite
)

func (m Mode) String() string {
	switch m {
	case ModeFlood:
		return "flood"
	case ModeKeyed:
		return "keyed"
	case ModeWhite:
		return "white"
	}
	return "unknown"
}

func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "flood":
		return ModeFlood, true
	case "keyed":
		return ModeKeyed, true
	case "white":
		return ModeWhite, true
	}
	return ModeFlood, false
}

const (
	DefaultFlatThreshold  = 225
	DefaultLooseThreshold = 195
	DefaultGrayDelta      = 10
	DefaultKeyTolerance   = 10
	DefaultWhiteThreshold = 220
)

// Options 所有阈值都可配置，零值不会被替换成默认值
type Options struct {
	Mode Mode

	// FlatThreshold: brightness above which a near-gray pixel is erased
	// regardless of connectivity.
	FlatThreshold uint8
	// LooseThreshold: brightness above which a pixel reachable from the
	// border is erased by the flood fill.
	LooseThreshold uint8
	GrayDelta      uint8
	// KeyTolerance 每个通道的差严格小于它才算背景：0 不匹配任何像素，1 只匹配完全相同的颜色
	KeyTolerance   uint8
	WhiteThreshold uint8

	// SliceSize bounds the work done per Step. <= 0 means one slice.
	SliceSize int
	// Yield is called between slices by Segment.
	Yield func()
}

func DefaultOptions() Options {
	return Options{
		Mode:           ModeFlood,
		FlatThreshold:  DefaultFlatThreshold,
		LooseThreshold: DefaultLooseThreshold,
		GrayDelta:      DefaultGrayDelta,
		KeyTolerance:   DefaultKeyTolerance,
		WhiteThreshold: DefaultWhiteThreshold,
	}
}

type Segmenter struct {
	opts Options
}

// New 按原样使用 opts，阈值为 0 就是 0；需要默认值时从 DefaultOptions() 开始改
func New(opts Options) *Segmenter {
	return &Segmenter{opts: opts}
}

func (s *Segmenter) Options() Options { return s.opts }

// Segment 返回一个新的缓冲区，背景像素 alpha 置 0，输入不会被修改
func (s *Segmenter) Segment(src *pixel.Buffer) *pixel.Buffer {
	job := s.Start(src)
	for !job.Step() {
		if s.opts.Yield != nil {
			s.opts.Yield()
		}
	}

	out := job.Result()
	slog.Debug("segment done",
		"mode", s.opts.Mode,
		"width", out.Width(), "height", out.Height(),
		"transparent", out.CountTransparent(),
		"slices", job.Slices())
	return out
}

// Segment runs the default flood segmentation.
func Segment(src *pixel.Buffer) *pixel.Buffer {
	return New(DefaultOptions()).Segment(src)
}

// Remove 实现 Remover，ctx 不会打断正在进行的填充
func (s *Segmenter) Remove(_ context.Context, img image.Image) (image.Image, error) {
	return s.Segment(pixel.FromImage(img)).ToNRGBA(), nil
}
