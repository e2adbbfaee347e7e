package editor

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/cutout/pixel"
)

var (
	white = pixel.Color{R: 255, G: 255, B: 255, A: 255}
	red   = pixel.Color{R: 255, A: 255}
	blue  = pixel.Color{B: 255, A: 255}
)

func solid(w, h int, c pixel.Color) *pixel.Buffer {
	b := pixel.New(w, h)
	b.Fill(c)
	return b
}

func TestHistory_Bounds(t *testing.T) {
	t.Parallel()

	h := NewHistory(pixel.New(1, 1), 3)
	_, ok := h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)

	bufs := make([]*pixel.Buffer, 5)
	for i := range bufs {
		bufs[i] = solid(1, 1, pixel.Color{R: uint8(i), A: 255})
		h.Commit(bufs[i])
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Cursor())
	assert.Same(t, bufs[4], h.Current())

	h.Undo()
	h.Undo()
	assert.Same(t, bufs[2], h.Current())
	assert.False(t, h.CanUndo())

	// 在中间提交会丢掉重做分支
	extra := pixel.New(1, 1)
	h.Commit(extra)
	assert.Equal(t, 2, h.Len())
	assert.False(t, h.CanRedo())
	assert.Same(t, extra, h.Current())
}

func TestHistory_CommitReleasesRedoBranch(t *testing.T) {
	t.Parallel()

	h := NewHistory(pixel.New(1, 1), 10)
	for i := 0; i < 3; i++ {
		h.Commit(pixel.New(1, 1))
	}
	h.Undo()
	h.Undo()
	h.Commit(pixel.New(1, 1))
	require.Equal(t, 3, h.Len())

	// 底层数组里 len 之后的位置不能再引用被丢弃的快照
	backing := h.entries[:cap(h.entries)]
	for i := h.Len(); i < len(backing); i++ {
		assert.Nil(t, backing[i], "slot %d", i)
	}
}

func TestSession_DoesNotAliasSource(t *testing.T) {
	t.Parallel()

	src := solid(4, 4, red)
	s := NewSession(src)
	require.True(t, s.EraseStroke([]Point{{X: 1, Y: 1}}, 1))

	assert.Equal(t, uint8(255), src.Alpha(1, 1))
	assert.Equal(t, uint8(0), s.Export().Alpha(1, 1))
}

func TestSession_UndoRedoIdentity(t *testing.T) {
	t.Parallel()

	s := NewSession(solid(8, 8, red))
	require.True(t, s.EraseStroke([]Point{{X: 2, Y: 2}, {X: 6, Y: 2}}, 3))
	afterErase := s.Export().Clone()

	require.True(t, s.MagicWand(Point{X: 7, Y: 7}, 0))
	afterWand := s.Export().Clone()

	require.True(t, s.Undo())
	assert.True(t, s.Export().Equal(afterErase))
	require.True(t, s.Redo())
	assert.True(t, s.Export().Equal(afterWand))

	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.True(t, s.Export().Equal(solid(8, 8, red)))
	assert.False(t, s.Undo())
	assert.True(t, s.CanRedo())
}

func TestSession_BoundedHistory(t *testing.T) {
	t.Parallel()

	orig := solid(30, 1, red)
	s := NewSession(orig)

	var snapshots []*pixel.Buffer
	for i := 0; i < 25; i++ {
		require.True(t, s.EraseStroke([]Point{{X: float64(i), Y: 0}}, 1))
		snapshots = append(snapshots, s.Export().Clone())
	}
	assert.Equal(t, DefaultHistoryLimit, s.HistoryLen())

	undone := 0
	for i := 0; i < 20; i++ {
		if s.Undo() {
			undone++
		}
	}
	assert.Equal(t, 19, undone)
	assert.False(t, s.CanUndo())
	// 最旧保留的是第 6 次编辑后的快照，而不是原图
	assert.True(t, s.Export().Equal(snapshots[5]))
	assert.False(t, s.Export().Equal(orig))
}

func TestSession_ViewDoesNotTouchHistory(t *testing.T) {
	t.Parallel()

	s := NewSession(solid(10, 10, red))
	s.Pan(5, -3)
	s.Zoom(2)
	s.Zoom(100)
	assert.Equal(t, MaxZoom, s.ToolState().Zoom)
	s.SetZoom(0.001)
	assert.Equal(t, MinZoom, s.ToolState().Zoom)
	s.Zoom(-1)
	assert.Equal(t, MinZoom, s.ToolState().Zoom)

	assert.Equal(t, 1, s.HistoryLen())
	assert.False(t, s.CanUndo())
}

func TestSession_ScreenToBuffer(t *testing.T) {
	t.Parallel()

	s := NewSession(solid(10, 10, red))
	s.SetZoom(2)
	s.Pan(10, 20)

	p := s.ScreenToBuffer(Point{X: 14, Y: 30})
	assert.Equal(t, Point{X: 2, Y: 5}, p)
	assert.Equal(t, Point{X: 14, Y: 30}, s.BufferToScreen(p))

	s.ZoomAt(1.5, Point{X: 14, Y: 30})
	assert.InDelta(t, 2, s.ScreenToBuffer(Point{X: 14, Y: 30}).X, 1e-9)
	assert.InDelta(t, 5, s.ScreenToBuffer(Point{X: 14, Y: 30}).Y, 1e-9)
}

func TestSession_ToolSetters(t *testing.T) {
	t.Parallel()

	s := NewSession(pixel.New(1, 1), WithToolState(ToolState{Tool: ToolPan, Zoom: 9, BrushDiameter: 0}))
	ts := s.ToolState()
	assert.Equal(t, ToolPan, ts.Tool)
	assert.Equal(t, MaxZoom, ts.Zoom)
	assert.Equal(t, 1.0, ts.BrushDiameter)

	s.SetTool(ToolMagicWand)
	s.SetBrushDiameter(-4)
	s.SetTolerance(12)
	ts = s.ToolState()
	assert.Equal(t, "magic_wand", ts.Tool.String())
	assert.Equal(t, 1.0, ts.BrushDiameter)
	assert.Equal(t, uint8(12), ts.Tolerance)
}

type fakeEditor struct {
	out *pixel.Buffer
	err error
	got string
}

func (f *fakeEditor) EditImage(_ context.Context, img *pixel.Buffer, instruction string) (*pixel.Buffer, error) {
	f.got = instruction
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	img.Fill(blue)
	return img, nil
}

func TestSession_ApplyEdit(t *testing.T) {
	t.Parallel()

	s := NewSession(solid(6, 4, red))
	assert.ErrorIs(t, s.ApplyEdit(context.Background(), nil, "x"), ErrNoEditor)

	ed := &fakeEditor{}
	require.NoError(t, s.ApplyEdit(context.Background(), ed, "make it blue"))
	assert.Equal(t, "make it blue", ed.got)
	assert.Equal(t, blue, s.Export().At(3, 3))
	assert.True(t, s.CanUndo())

	s.Undo()
	assert.Equal(t, red, s.Export().At(3, 3))
}

func TestSession_ApplyEditResizesAndSurfacesErrors(t *testing.T) {
	t.Parallel()

	s := NewSession(solid(6, 4, red))

	errQuota := errors.New("rate limited")
	err := s.ApplyEdit(context.Background(), &fakeEditor{err: errQuota}, "x")
	assert.ErrorIs(t, err, errQuota)
	assert.False(t, s.CanUndo())

	require.NoError(t, s.ApplyEdit(context.Background(), &fakeEditor{out: solid(12, 8, blue)}, "x"))
	assert.Equal(t, image.Rect(0, 0, 6, 4), s.Export().Bounds())
}
