package compose

import (
	"fmt"
	"slices"

	"github.com/chaos-io/cutout/pixel"
)

// Compositor 背景（mockup）+ 一组共享同一素材的图层
// 素材只读，Compositor 从不修改它
type Compositor struct {
	background *pixel.Buffer
	asset      *pixel.Buffer
	layers     []Layer
	nextID     LayerID
}

func New(background, asset *pixel.Buffer) *Compositor {
	if background == nil || asset == nil {
		panic("compose: nil background or asset")
	}
	return &Compositor{background: background, asset: asset, nextID: 1}
}

func (c *Compositor) Background() *pixel.Buffer { return c.background }
func (c *Compositor) Asset() *pixel.Buffer      { return c.asset }

// WorkingSize is the coordinate space layer positions live in.
func (c *Compositor) WorkingSize() (int, int) {
	return c.background.Width(), c.background.Height()
}

// SetAsset 替换共享素材的引用（编辑器产出了新版本）
// 尺寸必须与原素材一致，否则是调用方用错了 API
func (c *Compositor) SetAsset(asset *pixel.Buffer) {
	if !asset.SameSize(c.asset) {
		panic(fmt.Sprintf("compose: asset size %dx%d does not match %dx%d",
			asset.Width(), asset.Height(), c.asset.Width(), c.asset.Height()))
	}
	c.asset = asset
}

// DefaultScale 让素材的长边占背景对应边的 DefaultCoverage
func (c *Compositor) DefaultScale() float64 {
	aw, ah := c.asset.Width(), c.asset.Height()
	if aw == 0 || ah == 0 {
		return 1
	}
	if aw >= ah {
		return DefaultCoverage * float64(c.background.Width()) / float64(aw)
	}
	return DefaultCoverage * float64(c.background.Height()) / float64(ah)
}

// AddLayer appends a layer centred at (x, y). scale <= 0 uses DefaultScale.
func (c *Compositor) AddLayer(x, y, scale float64) LayerID {
	if scale <= 0 {
		scale = c.DefaultScale()
	}
	id := c.nextID
	c.nextID++
	c.layers = append(c.layers, Layer{ID: id, X: x, Y: y, Scale: scale})
	return id
}

// AddDefaultLayer places a layer in the middle of the background.
func (c *Compositor) AddDefaultLayer() LayerID {
	w, h := c.WorkingSize()
	return c.AddLayer(float64(w)/2, float64(h)/2, 0)
}

// Layers returns a copy in draw order (bottom first).
func (c *Compositor) Layers() []Layer {
	return slices.Clone(c.layers)
}

func (c *Compositor) Len() int { return len(c.layers) }

func (c *Compositor) Layer(id LayerID) (Layer, error) {
	i := c.index(id)
	if i < 0 {
		return Layer{}, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	return c.layers[i], nil
}

// HitTest 从最上层往下找，返回第一个包围盒包含该点的图层
func (c *Compositor) HitTest(x, y float64) (LayerID, bool) {
	for i := len(c.layers) - 1; i >= 0; i-- {
		l := c.layers[i]
		hw := float64(c.asset.Width()) * l.Scale / 2
		hh := float64(c.asset.Height()) * l.Scale / 2
		if x >= l.X-hw && x <= l.X+hw && y >= l.Y-hh && y <= l.Y+hh {
			return l.ID, true
		}
	}
	return 0, false
}

func (c *Compositor) MoveLayer(id LayerID, x, y float64) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	c.layers[i].X, c.layers[i].Y = x, y
	return nil
}

func (c *Compositor) ScaleLayer(id LayerID, scale float64) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	if scale <= 0 {
		return fmt.Errorf("compose: invalid scale %v", scale)
	}
	c.layers[i].Scale = scale
	return nil
}

// DuplicateLayer 复制图层变换，位置偏移 (+50, +50)，新图层在最上面
func (c *Compositor) DuplicateLayer(id LayerID) (LayerID, error) {
	i := c.index(id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	l := c.layers[i]
	return c.AddLayer(l.X+DuplicateOffset, l.Y+DuplicateOffset, l.Scale), nil
}

func (c *Compositor) RemoveLayer(id LayerID) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	if len(c.layers) == 1 {
		return ErrCannotRemoveLastLayer
	}
	c.layers = slices.Delete(c.layers, i, i+1)
	return nil
}

func (c *Compositor) index(id LayerID) int {
	return slices.IndexFunc(c.layers, func(l Layer) bool { return l.ID == id })
}
