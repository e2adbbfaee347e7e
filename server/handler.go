package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/cutout/compose"
	"github.com/chaos-io/cutout/editor"
	"github.com/chaos-io/cutout/pixel"
	"github.com/chaos-io/cutout/segment"
)

var errBadRequest = errors.New("bad request")

// statusOf 把领域错误映射成 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, pixel.ErrDecode), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, compose.ErrLayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, compose.ErrEmptyComposition),
		errors.Is(err, compose.ErrCannotRemoveLastLayer),
		errors.Is(err, compose.ErrEmptyAsset):
		return http.StatusUnprocessableEntity
	case errors.Is(err, editor.ErrNoEditor):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, status int, msg string, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error(msg, "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Message: msg, Error: err.Error()})
}

func failErr(c *gin.Context, msg string, err error) {
	fail(c, statusOf(err), msg, err)
}

func writePNG(c *gin.Context, b *pixel.Buffer) {
	data, err := pixel.EncodePNGBytes(b)
	if err != nil {
		fail(c, http.StatusInternalServerError, "encode image failed", err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// formImage 读取 multipart 里的 PNG 字段
func formImage(c *gin.Context, field string) (*pixel.Buffer, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: missing form file %q: %v", errBadRequest, field, err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return pixel.DecodePNG(f)
}

func (s *Server) segmenterFor(c *gin.Context) (*segment.Segmenter, error) {
	mode := c.Query("mode")
	if mode == "" {
		return s.segmenter, nil
	}
	m, ok := segment.ParseMode(mode)
	if !ok {
		return nil, fmt.Errorf("%w: unknown mode %q", errBadRequest, mode)
	}
	opts := s.segmenter.Options()
	opts.Mode = m
	return segment.New(opts), nil
}

func (s *Server) despeckleRatio(c *gin.Context) (float64, error) {
	v := c.Query("despeckle")
	if v == "" {
		return s.cfg.Segment.Despeckle, nil
	}
	r, err := strconv.ParseFloat(v, 64)
	if err != nil || r < 0 || r >= 1 {
		return 0, fmt.Errorf("%w: despeckle %q not in [0,1)", errBadRequest, v)
	}
	return r, nil
}

// cutout 抠图 + 可选去噪点
func (s *Server) cutout(c *gin.Context, src *pixel.Buffer) (*pixel.Buffer, error) {
	seg, err := s.segmenterFor(c)
	if err != nil {
		return nil, err
	}
	ratio, err := s.despeckleRatio(c)
	if err != nil {
		return nil, err
	}
	out := seg.Segment(src)
	if ratio > 0 {
		out = seg.Despeckle(out, ratio)
	}
	return out, nil
}

func (s *Server) handleSegment(c *gin.Context) {
	src, err := formImage(c, "image")
	if err != nil {
		failErr(c, "invalid image", err)
		return
	}
	out, err := s.cutout(c, src)
	if err != nil {
		failErr(c, "segment failed", err)
		return
	}
	writePNG(c, out)
}

// handleCreateSession 上传图片创建编辑会话
// ?segment=true 先抠图再编辑，mode/despeckle 同 /v1/segment
func (s *Server) handleCreateSession(c *gin.Context) {
	src, err := formImage(c, "image")
	if err != nil {
		failErr(c, "invalid image", err)
		return
	}
	if s.cfg.WorkingMax > 0 {
		src = pixel.FitWithin(src, s.cfg.WorkingMax)
	}
	if ok, _ := strconv.ParseBool(c.Query("segment")); ok {
		if src, err = s.cutout(c, src); err != nil {
			failErr(c, "segment failed", err)
			return
		}
	}

	sess := editor.NewSession(src, s.cfg.SessionOptions()...)
	id := s.store.Create(sess)
	slog.Info("session created", "id", id, "width", sess.Width(), "height", sess.Height())

	c.JSON(http.StatusCreated, CreateSessionResponse{
		Success: true,
		ID:      id,
		Width:   sess.Width(),
		Height:  sess.Height(),
	})
}

func (s *Server) handleImage(c *gin.Context) {
	var img *pixel.Buffer
	err := s.store.With(c.Param("id"), func(sess *editor.Session) error {
		img = sess.Export()
		return nil
	})
	if err != nil {
		failErr(c, "get image failed", err)
		return
	}
	writePNG(c, img)
}

// handleExport 单独导出透明素材（裁剪 + 居中到导出尺寸）
func (s *Server) handleExport(c *gin.Context) {
	var img *pixel.Buffer
	err := s.store.With(c.Param("id"), func(sess *editor.Session) error {
		img = sess.Export()
		return nil
	})
	if err != nil {
		failErr(c, "export failed", err)
		return
	}
	out, err := compose.ExportAsset(img, s.cfg.ExportTarget())
	if err != nil {
		failErr(c, "export failed", err)
		return
	}
	writePNG(c, out)
}

// command 执行一个编辑命令并返回撤销/重做状态
func (s *Server) command(c *gin.Context, fn func(*editor.Session) (bool, error)) {
	var resp CommandResponse
	err := s.store.With(c.Param("id"), func(sess *editor.Session) error {
		changed, err := fn(sess)
		if err != nil {
			return err
		}
		resp = CommandResponse{
			Success: true,
			Changed: changed,
			CanUndo: sess.CanUndo(),
			CanRedo: sess.CanRedo(),
		}
		return nil
	})
	if err != nil {
		failErr(c, "command failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleErase(c *gin.Context) {
	var req EraseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	points := make([]editor.Point, len(req.Points))
	for i, p := range req.Points {
		points[i] = editor.Point{X: p[0], Y: p[1]}
	}
	s.command(c, func(sess *editor.Session) (bool, error) {
		return sess.EraseStroke(points, req.Diameter), nil
	})
}

func (s *Server) handleWand(c *gin.Context) {
	var req WandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	s.command(c, func(sess *editor.Session) (bool, error) {
		tol := sess.ToolState().Tolerance
		if req.Tolerance != nil {
			tol = *req.Tolerance
		}
		return sess.MagicWand(editor.Point{X: req.X, Y: req.Y}, tol), nil
	})
}

func (s *Server) handlePolish(c *gin.Context) {
	s.command(c, func(sess *editor.Session) (bool, error) {
		return sess.AutoPolish(), nil
	})
}

func (s *Server) handleUndo(c *gin.Context) {
	s.command(c, func(sess *editor.Session) (bool, error) {
		return sess.Undo(), nil
	})
}

func (s *Server) handleRedo(c *gin.Context) {
	s.command(c, func(sess *editor.Session) (bool, error) {
		return sess.Redo(), nil
	})
}

func (s *Server) handleEdit(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	if s.editor == nil {
		failErr(c, "edit unavailable", editor.ErrNoEditor)
		return
	}

	var resp CommandResponse
	err := s.store.With(c.Param("id"), func(sess *editor.Session) error {
		if err := sess.ApplyEdit(c.Request.Context(), s.editor, req.Instruction); err != nil {
			return err
		}
		resp = CommandResponse{Success: true, Changed: true, CanUndo: sess.CanUndo(), CanRedo: sess.CanRedo()}
		return nil
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, ErrSessionNotFound):
		failErr(c, "edit failed", err)
	default:
		// 外部服务的错误（限流、权限等）原样透出，由客户端决定是否重试
		fail(c, http.StatusBadGateway, "edit failed", err)
	}
}

// handleRender 把当前素材按图层摆放到上传的背景上，输出导出尺寸的 PNG
func (s *Server) handleRender(c *gin.Context) {
	bg, err := formImage(c, "background")
	if err != nil {
		failErr(c, "invalid background", err)
		return
	}
	var specs []LayerSpec
	if raw := c.PostForm("layers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &specs); err != nil {
			fail(c, http.StatusBadRequest, "invalid layers", err)
			return
		}
	}

	var asset *pixel.Buffer
	if err := s.store.With(c.Param("id"), func(sess *editor.Session) error {
		asset = sess.Export()
		return nil
	}); err != nil {
		failErr(c, "render failed", err)
		return
	}

	comp := compose.New(bg, asset)
	for _, l := range specs {
		comp.AddLayer(l.X, l.Y, l.Scale)
	}
	out, err := comp.Render(s.cfg.ExportTarget())
	if err != nil {
		failErr(c, "render failed", err)
		return
	}
	writePNG(c, out)
}

func (s *Server) handleDelete(c *gin.Context) {
	if !s.store.Delete(c.Param("id")) {
		failErr(c, "delete failed", ErrSessionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
