package server

// CreateSessionResponse 创建会话响应
type CreateSessionResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// CommandResponse 编辑命令响应
type CommandResponse struct {
	Success bool `json:"success"`
	Changed bool `json:"changed"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// EraseRequest 一次完整的笔画，坐标为 [x, y]
type EraseRequest struct {
	Points   [][2]float64 `json:"points" binding:"required,min=1"`
	Diameter float64      `json:"diameter"`
}

type WandRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Tolerance 为空时用会话当前的容差
	Tolerance *uint8 `json:"tolerance"`
}

type EditRequest struct {
	Instruction string `json:"instruction" binding:"required"`
}

// LayerSpec 合成时的一个图层，坐标是背景图上的中心点
type LayerSpec struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}
