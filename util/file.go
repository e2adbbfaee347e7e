package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chaos-io/cutout/pixel"
)

const maxDownloadSize = 64 << 20

// IsURL 判断是不是 http(s) 地址
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// DownloadImage 下载图片
func DownloadImage(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	imgData, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(imgData))
	return img, err
}

// OpenImage 打开本地图片（png/jpeg）
func OpenImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	img, _, err := image.Decode(file)
	return img, err
}

// LoadBuffer 从本地路径或 URL 读取图片，统一转成 pixel.Buffer
func LoadBuffer(ctx context.Context, pathOrURL string) (*pixel.Buffer, error) {
	var (
		img image.Image
		err error
	)
	if IsURL(pathOrURL) {
		img, err = DownloadImage(ctx, pathOrURL)
	} else {
		img, err = OpenImage(pathOrURL)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pathOrURL, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("load %s: %w: zero dimension", pathOrURL, pixel.ErrDecode)
	}
	return pixel.FromImage(img), nil
}

// SavePNG 写出 PNG，目录不存在时会自动创建
func SavePNG(path string, b *pixel.Buffer) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pixel.EncodePNG(f, b); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Trace 记录耗时，用法: defer util.Trace("segment")()
func Trace(msg string) func() {
	start := time.Now()
	return func() {
		slog.Info(msg, "elapsed", time.Since(start))
	}
}
