package editor

import (
	"log/slog"

	"github.com/chaos-io/cutout/pixel"
)

const (
	DefaultPolishThreshold = 200
	DefaultGrayDelta       = 10
)

// Session 手动修图会话：持有工作缓冲区、工具状态与撤销栈
// 每个命令都在副本上修改再整体替换，已经交出去的缓冲区不会被改写
// Session 不是并发安全的
type Session struct {
	history *History
	tools   ToolState

	polishThreshold uint8
	grayDelta       uint8
	metric          pixel.Metric

	sliceSize int
	yield     func()

	stroke *stroke
}

type Option func(*Session)

func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		s.history.limit = max(n, 1)
	}
}

// WithPolishThreshold sets the brightness above which near-gray edge pixels are
// erased by AutoPolish.
func WithPolishThreshold(t uint8) Option {
	return func(s *Session) { s.polishThreshold = t }
}

func WithGrayDelta(d uint8) Option {
	return func(s *Session) { s.grayDelta = d }
}

func WithMetric(m pixel.Metric) Option {
	return func(s *Session) { s.metric = m }
}

// WithSliceSize 让洪水填充和边缘精修每处理 n 个像素调用一次 yield
func WithSliceSize(n int, yield func()) Option {
	return func(s *Session) {
		s.sliceSize = n
		s.yield = yield
	}
}

func WithToolState(ts ToolState) Option {
	return func(s *Session) {
		ts.Zoom = clampZoom(ts.Zoom)
		ts.BrushDiameter = max(ts.BrushDiameter, 1)
		s.tools = ts
	}
}

// NewSession 拷贝 src 作为初始快照
func NewSession(src *pixel.Buffer, opts ...Option) *Session {
	s := &Session{
		history:         NewHistory(src.Clone(), DefaultHistoryLimit),
		tools:           DefaultToolState(),
		polishThreshold: DefaultPolishThreshold,
		grayDelta:       DefaultGrayDelta,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export returns the current working buffer. It is shared with the history;
// clone it before mutating.
func (s *Session) Export() *pixel.Buffer { return s.history.Current() }

func (s *Session) Width() int  { return s.Export().Width() }
func (s *Session) Height() int { return s.Export().Height() }

func (s *Session) Undo() bool {
	s.cancelStroke()
	_, ok := s.history.Undo()
	return ok
}

func (s *Session) Redo() bool {
	s.cancelStroke()
	_, ok := s.history.Redo()
	return ok
}

func (s *Session) CanUndo() bool { return s.history.CanUndo() }
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// HistoryLen returns the number of retained snapshots.
func (s *Session) HistoryLen() int { return s.history.Len() }

func (s *Session) ToolState() ToolState { return s.tools }

func (s *Session) SetTool(t Tool) { s.tools.Tool = t }

func (s *Session) SetBrushDiameter(d float64) {
	s.tools.BrushDiameter = max(d, 1)
}

func (s *Session) SetTolerance(t uint8) { s.tools.Tolerance = t }

func (s *Session) Metric() pixel.Metric { return s.metric }

func (s *Session) slicer() *pixel.Slicer {
	return pixel.NewSlicer(s.sliceSize, s.yield)
}

// commit 记录一次编辑；next 之后不能再被修改
func (s *Session) commit(op string, next *pixel.Buffer) {
	s.history.Commit(next)
	slog.Debug("editor commit", "op", op, "history", s.history.Len(), "cursor", s.history.Cursor())
}
