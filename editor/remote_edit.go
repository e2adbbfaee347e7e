package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chaos-io/cutout/pixel"
)

var ErrNoEditor = errors.New("editor: no image editor configured")

// ImageEditor 外部的图像编辑服务（比如远程生成式模型）
// 失败不在这里重试，重试/退避/换凭证由调用方决定
type ImageEditor interface {
	EditImage(ctx context.Context, img *pixel.Buffer, instruction string) (*pixel.Buffer, error)
}

// ApplyEdit sends the working buffer with instruction to ed and commits the
// result as one history entry. A result of a different size is resized to
// the session size.
func (s *Session) ApplyEdit(ctx context.Context, ed ImageEditor, instruction string) error {
	if ed == nil {
		return ErrNoEditor
	}

	cur := s.Export()
	out, err := ed.EditImage(ctx, cur.Clone(), instruction)
	if err != nil {
		return fmt.Errorf("edit image: %w", err)
	}
	if out == nil || out.Len() == 0 {
		return errors.New("edit image: empty result")
	}

	if out.SameSize(cur) {
		out = out.Clone()
	} else {
		slog.Debug("edit result resized",
			"got_width", out.Width(), "got_height", out.Height(),
			"width", cur.Width(), "height", cur.Height())
		out = pixel.Resize(out, cur.Width(), cur.Height())
	}

	s.cancelStroke()
	s.commit("edit", out)
	return nil
}
