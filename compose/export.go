package compose

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/chaos-io/cutout/pixel"
)

// ExportAsset 单独导出透明素材：
//
//	按 alpha 计算主体 bounding box
//	以长边为边长做正方形，主体居中
//	等比缩放到 target 内并居中，其余部分透明
func ExportAsset(asset *pixel.Buffer, target ExportTarget) (*pixel.Buffer, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("compose: invalid export target %dx%d", target.Width, target.Height)
	}
	bbox, ok := asset.AlphaBounds(0)
	if !ok {
		return nil, ErrEmptyAsset
	}

	square := cropSquare(asset, bbox)

	side := float64(square.Width())
	scale := math.Min(float64(target.Width)/side, float64(target.Height)/side)
	size := max(1, int(math.Round(side*scale)))
	scaled := pixel.Resize(square, size, size)

	out := image.NewNRGBA(image.Rect(0, 0, target.Width, target.Height))
	off := image.Pt((target.Width-size)/2, (target.Height-size)/2)
	draw.Draw(out, image.Rectangle{Min: off, Max: off.Add(image.Pt(size, size))}, scaled.ToNRGBA(), image.Point{}, draw.Src)
	return pixel.FromNRGBA(out), nil
}

// cropSquare 正方形裁剪（中心对齐），超出原图的部分保持透明
func cropSquare(b *pixel.Buffer, bbox image.Rectangle) *pixel.Buffer {
	side := max(bbox.Dx(), bbox.Dy())
	dst := image.NewNRGBA(image.Rect(0, 0, side, side))
	off := image.Pt((side-bbox.Dx())/2, (side-bbox.Dy())/2)
	draw.Draw(dst, image.Rectangle{Min: off, Max: off.Add(bbox.Size())}, b.ToNRGBA(), bbox.Min, draw.Src)
	return pixel.FromNRGBA(dst)
}
