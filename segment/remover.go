package segment

import (
	"context"
	"image"
)

// Remover 去背景的统一接口，本地分割和远程服务都实现它
type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

var _ Remover = (*Segmenter)(nil)
