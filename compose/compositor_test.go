package compose

import (
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
)

func solid(w, h int, c pixel.Color) *pixel.Buffer {
	b := pixel.New(w, h)
	b.Fill(c)
	return b
}

func TestCompositor_DefaultScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bgW, bgH  int
		assetW    int
		assetH    int
		wantScale float64
	}{
		{name: "wide asset", bgW: 1000, bgH: 500, assetW: 200, assetH: 100, wantScale: 2},
		{name: "tall asset", bgW: 1000, bgH: 500, assetW: 50, assetH: 400, wantScale: 0.5},
		{name: "square", bgW: 100, bgH: 100, assetW: 80, assetH: 80, wantScale: 0.5},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := New(pixel.New(tt.bgW, tt.bgH), pixel.New(tt.assetW, tt.assetH))
			assert.InDelta(t, tt.wantScale, c.DefaultScale(), 1e-9)

			id := c.AddDefaultLayer()
			l, err := c.Layer(id)
			require.NoError(t, err)
			assert.Equal(t, float64(tt.bgW)/2, l.X)
			assert.Equal(t, float64(tt.bgH)/2, l.Y)
			assert.InDelta(t, tt.wantScale, l.Scale, 1e-9)
		})
	}
}

func TestCompositor_HitTestTopmostFirst(t *testing.T) {
	t.Parallel()

	c := New(pixel.New(1000, 1000), pixel.New(100, 50))
	bottom := c.AddLayer(500, 500, 1)
	top := c.AddLayer(540, 500, 1)

	id, ok := c.HitTest(530, 510)
	require.True(t, ok)
	assert.Equal(t, top, id)

	id, ok = c.HitTest(455, 500)
	require.True(t, ok)
	assert.Equal(t, bottom, id)

	_, ok = c.HitTest(500, 530)
	assert.False(t, ok)
}

func TestCompositor_LayerOps(t *testing.T) {
	t.Parallel()

	c := New(pixel.New(400, 400), pixel.New(10, 10))
	a := c.AddLayer(100, 100, 2)

	require.NoError(t, c.MoveLayer(a, 120, 130))
	require.NoError(t, c.ScaleLayer(a, 3))
	l, _ := c.Layer(a)
	assert.Equal(t, Layer{ID: a, X: 120, Y: 130, Scale: 3}, l)
	assert.Error(t, c.ScaleLayer(a, 0))

	b, err := c.DuplicateLayer(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	dup, _ := c.Layer(b)
	assert.Equal(t, 170.0, dup.X)
	assert.Equal(t, 180.0, dup.Y)
	assert.Equal(t, 3.0, dup.Scale)
	assert.Equal(t, []LayerID{a, b}, []LayerID{c.Layers()[0].ID, c.Layers()[1].ID})

	missing := LayerID(99)
	assert.ErrorIs(t, c.MoveLayer(missing, 0, 0), ErrLayerNotFound)
	assert.ErrorIs(t, c.ScaleLayer(missing, 1), ErrLayerNotFound)
	_, err = c.DuplicateLayer(missing)
	assert.ErrorIs(t, err, ErrLayerNotFound)
	assert.ErrorIs(t, c.RemoveLayer(missing), ErrLayerNotFound)

	require.NoError(t, c.RemoveLayer(a))
	assert.Equal(t, 1, c.Len())
	assert.True(t, errors.Is(c.RemoveLayer(b), ErrCannotRemoveLastLayer))
	assert.Equal(t, 1, c.Len())

	// 删除后 id 不会复用
	assert.NotEqual(t, a, c.AddLayer(0, 0, 1))
}

func TestCompositor_RenderEmpty(t *testing.T) {
	t.Parallel()

	c := New(solid(10, 10, white), solid(2, 2, red))
	_, err := c.Render(DefaultExportTarget)
	assert.ErrorIs(t, err, ErrEmptyComposition)

	// 会话仍然可用
	c.AddDefaultLayer()
	_, err = c.Render(ExportTarget{Width: 20, Height: 20})
	assert.NoError(t, err)

	_, err = c.Render(ExportTarget{})
	assert.Error(t, err)
}

func TestCompositor_PlacementIsResolutionIndependent(t *testing.T) {
	t.Parallel()

	c := New(pixel.New(1000, 1000), pixel.New(200, 100))
	id := c.AddLayer(500, 500, 0.5)
	l, _ := c.Layer(id)

	p := c.Placement(l, ExportTarget{Width: 2500, Height: 2500})
	assert.InDelta(t, 1250, p.CenterX, 1e-9)
	assert.InDelta(t, 1250, p.CenterY, 1e-9)
	assert.InDelta(t, 1.25, p.ScaleX, 1e-9)
	assert.InDelta(t, 1.25, p.ScaleY, 1e-9)
	assert.Equal(t, image.Rect(1125, 1187, 1375, 1313), p.Rect)
}

func TestCompositor_Render(t *testing.T) {
	t.Parallel()

	asset := solid(20, 20, red)
	c := New(solid(100, 100, white), asset)
	c.AddLayer(50, 50, 0.5)

	got, err := c.Render(ExportTarget{Width: 250, Height: 250})
	require.NoError(t, err)
	assert.Equal(t, 250, got.Width())

	center := got.At(125, 125)
	assert.InDelta(t, 255, int(center.R), 2)
	assert.InDelta(t, 0, int(center.G), 2)
	assert.InDelta(t, 255, int(center.A), 2)

	// 25x25 的红块之外仍是背景
	outside := got.At(100, 100)
	assert.InDelta(t, 255, int(outside.G), 2)
	assert.True(t, asset.Equal(solid(20, 20, red)))
}

func TestCompositor_SetAssetIsShared(t *testing.T) {
	t.Parallel()

	c := New(solid(100, 100, white), solid(10, 10, pixel.Color{B: 255, A: 255}))
	c.AddLayer(30, 30, 2)
	c.AddLayer(70, 70, 2)

	// 编辑器产出新版本后整体替换引用，所有图层一起更新
	c.SetAsset(solid(10, 10, red))

	got, err := c.Render(ExportTarget{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.InDelta(t, 255, int(got.At(30, 30).R), 2)
	assert.InDelta(t, 255, int(got.At(70, 70).R), 2)
	assert.InDelta(t, 0, int(got.At(70, 70).B), 2)
}

func TestCompositor_SetAssetSizeMismatchPanics(t *testing.T) {
	t.Parallel()

	c := New(pixel.New(10, 10), pixel.New(4, 4))
	assert.Panics(t, func() { c.SetAsset(pixel.New(5, 4)) })
}

func TestExportAsset(t *testing.T) {
	t.Parallel()

	asset := pixel.New(100, 60)
	asset.FillRect(image.Rect(10, 20, 50, 40), red) // 40x20 的主体

	got, err := ExportAsset(asset, ExportTarget{Width: 200, Height: 200})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 200), got.Bounds())

	bbox, ok := got.AlphaBounds(128)
	require.True(t, ok)
	// 正方形 40x40 放大 5 倍，主体 200x100 垂直居中
	assert.InDelta(t, 0, bbox.Min.X, 2)
	assert.InDelta(t, 200, bbox.Max.X, 2)
	assert.InDelta(t, 50, bbox.Min.Y, 2)
	assert.InDelta(t, 150, bbox.Max.Y, 2)
	assert.Equal(t, uint8(0), got.Alpha(100, 10))

	_, err = ExportAsset(pixel.New(5, 5), DefaultExportTarget)
	assert.ErrorIs(t, err, ErrEmptyAsset)
}
