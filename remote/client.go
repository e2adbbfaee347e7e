package remote

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/chaos-io/cutout/editor"
	"github.com/chaos-io/cutout/pixel"
	"github.com/chaos-io/cutout/segment"
	nhttp "github.com/chaos-io/cutout/util/http"
)

const (
	editPath = "/v1/images/edit"

	// RemoveBackgroundInstruction 远程去背景时使用的指令
	RemoveBackgroundInstruction = "Remove the background and keep only the main subject on a transparent background."
)

// Client 通过 HTTP 调用外部图像编辑服务
// 不做重试，限流/权限错误原样返回给调用方
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	cli     nhttp.IClient
}

type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(cli nhttp.IClient) Option {
	return func(c *Client) { c.cli = cli }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		cli:     nhttp.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ editor.ImageEditor = (*Client)(nil)
	_ segment.Remover    = (*Client)(nil)
)

type editReq struct {
	Instruction string `json:"instruction"`
	Image       string `json:"image"` // data:image/png;base64,...
}

type editResp struct {
	Image string `json:"image"`
	Error string `json:"error,omitempty"`
}

/*
	curl -X POST "$BASE_URL/v1/images/edit" \
	  -H "Content-Type: application/json" \
	  -d '{"instruction": "remove the hanging wire", "image": "data:image/png;base64,..."}'

{"image": "data:image/png;base64,..."}
*/
func (c *Client) EditImage(ctx context.Context, img *pixel.Buffer, instruction string) (*pixel.Buffer, error) {
	data, err := pixel.EncodePNGBytes(img)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	header := map[string]string{"Content-Type": "application/json"}
	if c.apiKey != "" {
		header["Authorization"] = "Bearer " + c.apiKey
	}

	resp := &editResp{}
	reqParam := &nhttp.RequestParam{
		RequestURI: c.baseURL + editPath,
		Method:     "POST",
		Header:     header,
		Body: &editReq{
			Instruction: instruction,
			Image:       "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		},
		Response: resp,
		Timeout:  c.timeout,
	}
	if err := c.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("remote edit: %s", resp.Error)
	}
	if resp.Image == "" {
		return nil, errors.New("remote edit: response has no image")
	}

	raw, err := base64.StdEncoding.DecodeString(stripDataURL(resp.Image))
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	out, err := pixel.DecodePNGBytes(raw)
	if err != nil {
		return nil, err
	}

	slog.Debug("remote edit done", "instruction", instruction, "width", out.Width(), "height", out.Height())
	return out, nil
}

func stripDataURL(s string) string {
	if i := strings.Index(s, ","); strings.HasPrefix(s, "data:") && i >= 0 {
		return s[i+1:]
	}
	return s
}

// Remove 用远程编辑服务去背景，可以替换本地的 segment.Segmenter
func (c *Client) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	out, err := c.EditImage(ctx, pixel.FromImage(img), RemoveBackgroundInstruction)
	if err != nil {
		return nil, err
	}
	return out.ToNRGBA(), nil
}
