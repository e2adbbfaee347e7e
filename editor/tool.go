package editor

import "fmt"

// Tool 当前激活的工具
type Tool int

const (
	ToolPan Tool = iota
	ToolBrush
	ToolMagicWand
)

func (t Tool) String() string {
	switch t {
	case ToolPan:
		return "pan"
	case ToolBrush:
		return "brush"
	case ToolMagicWand:
		return "magic_wand"
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

const (
	MinZoom = 0.1
	MaxZoom = 5.0

	DefaultBrushDiameter = 20
	DefaultTolerance     = 30
)

// ToolState 会话私有的工具与视图状态，不参与撤销，也不持久化
type ToolState struct {
	Tool          Tool
	BrushDiameter float64
	Tolerance     uint8
	Zoom          float64
	PanX, PanY    float64
}

// DefaultToolState brush active, zoom 1, no pan.
func DefaultToolState() ToolState {
	return ToolState{
		Tool:          ToolBrush,
		BrushDiameter: DefaultBrushDiameter,
		Tolerance:     DefaultTolerance,
		Zoom:          1,
	}
}

// Point 是一个二维坐标（屏幕或缓冲区空间，取决于调用处）
type Point struct {
	X, Y float64
}

func clampZoom(z float64) float64 {
	return min(max(z, MinZoom), MaxZoom)
}
