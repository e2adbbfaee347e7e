package compose

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/chaos-io/cutout/pixel"
)

// ExportTarget 最终导出的固定分辨率
type ExportTarget struct {
	Width  int
	Height int
}

// DefaultExportTarget 印刷用的 2500x2500
var DefaultExportTarget = ExportTarget{Width: 2500, Height: 2500}

// Ratio returns targetWidth/workingWidth and targetHeight/workingHeight.
func (t ExportTarget) Ratio(workingW, workingH int) (float64, float64) {
	return float64(t.Width) / float64(workingW), float64(t.Height) / float64(workingH)
}

func (t ExportTarget) Valid() bool { return t.Width > 0 && t.Height > 0 }

// Placement 是图层在导出分辨率下的位置
type Placement struct {
	CenterX, CenterY float64
	ScaleX, ScaleY   float64
	// Rect is the destination box, rounded outwards.
	Rect image.Rectangle
}

// Placement 把工作分辨率下的图层变换线性换算到 target
func (c *Compositor) Placement(l Layer, target ExportTarget) Placement {
	rx, ry := target.Ratio(c.WorkingSize())
	p := Placement{
		CenterX: l.X * rx,
		CenterY: l.Y * ry,
		ScaleX:  l.Scale * rx,
		ScaleY:  l.Scale * ry,
	}
	w := float64(c.asset.Width()) * p.ScaleX
	h := float64(c.asset.Height()) * p.ScaleY
	p.Rect = image.Rect(
		int(math.Floor(p.CenterX-w/2)), int(math.Floor(p.CenterY-h/2)),
		int(math.Ceil(p.CenterX+w/2)), int(math.Ceil(p.CenterY+h/2)),
	)
	return p
}

// Render 在 target 分辨率下合成：背景拉伸铺满，再按插入顺序画每个图层
// 素材不会被重新分割，也不会先在低分辨率下栅格化
func (c *Compositor) Render(target ExportTarget) (*pixel.Buffer, error) {
	if len(c.layers) == 0 {
		return nil, ErrEmptyComposition
	}
	if !target.Valid() {
		return nil, fmt.Errorf("compose: invalid export target %dx%d", target.Width, target.Height)
	}
	if c.background.Len() == 0 {
		return nil, fmt.Errorf("compose: empty background")
	}

	out := pixel.Resize(c.background, target.Width, target.Height).ToNRGBA()
	src := c.asset.ToNRGBA()

	for _, l := range c.layers {
		p := c.Placement(l, target)
		tx := p.CenterX - float64(c.asset.Width())*p.ScaleX/2
		ty := p.CenterY - float64(c.asset.Height())*p.ScaleY/2
		m := f64.Aff3{
			p.ScaleX, 0, tx,
			0, p.ScaleY, ty,
		}
		draw.CatmullRom.Transform(out, m, src, src.Bounds(), draw.Over, nil)

		slog.Debug("render layer", "layer", l.ID, "rect", p.Rect, "scale_x", p.ScaleX, "scale_y", p.ScaleY)
	}

	return pixel.FromNRGBA(out), nil
}
