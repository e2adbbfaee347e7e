package compose

import (
	"errors"
	"fmt"
)

var (
	ErrLayerNotFound         = errors.New("compose: layer not found")
	ErrCannotRemoveLastLayer = errors.New("compose: cannot remove the last layer")
	ErrEmptyComposition      = errors.New("compose: composition has no layers")
	ErrEmptyAsset            = errors.New("compose: asset has no opaque pixels")
)

// LayerID 在同一个 Compositor 内唯一
type LayerID int

func (id LayerID) String() string { return fmt.Sprintf("layer-%d", int(id)) }

// Layer 是共享素材的一次摆放：中心点（背景坐标）+ 缩放
type Layer struct {
	ID    LayerID
	X, Y  float64
	Scale float64
}

const (
	// DefaultCoverage 默认缩放让素材长边占背景对应边的 40%
	DefaultCoverage = 0.4
	// DuplicateOffset 复制图层时的位移（像素）
	DuplicateOffset = 50
)
