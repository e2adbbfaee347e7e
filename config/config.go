package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chaos-io/cutout/compose"
	"github.com/chaos-io/cutout/editor"
	"github.com/chaos-io/cutout/pixel"
	"github.com/chaos-io/cutout/segment"
)

type Config struct {
	Segment SegmentConfig `yaml:"segment"`
	Editor  EditorConfig  `yaml:"editor"`
	Export  ExportConfig  `yaml:"export"`
	// WorkingMax 预览/编辑时的最长边，超过就先缩小，0 表示不缩
	WorkingMax int          `yaml:"working_max"`
	Server     ServerConfig `yaml:"server"`
	Remote     RemoteConfig `yaml:"remote"`
	Log        LogConfig    `yaml:"log"`
}

type SegmentConfig struct {
	Mode           string `yaml:"mode"`
	FlatThreshold  uint8  `yaml:"flat_threshold"`
	LooseThreshold uint8  `yaml:"loose_threshold"`
	GrayDelta      uint8  `yaml:"gray_delta"`
	KeyTolerance   uint8  `yaml:"key_tolerance"`
	WhiteThreshold uint8  `yaml:"white_threshold"`
	SliceSize      int    `yaml:"slice_size"`
	// Despeckle 小于主体像素数这个比例的孤岛会被去掉，0 关闭
	Despeckle float64 `yaml:"despeckle"`
}

type EditorConfig struct {
	HistoryLimit    int     `yaml:"history_limit"`
	BrushDiameter   float64 `yaml:"brush_diameter"`
	Tolerance       uint8   `yaml:"tolerance"`
	PolishThreshold uint8   `yaml:"polish_threshold"`
	Metric          string  `yaml:"metric"`
}

type ExportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type ServerConfig struct {
	Addr       string        `yaml:"addr"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	SweepSpec  string        `yaml:"sweep_spec"`
	// MaxUploadMB multipart 上传大小限制
	MaxUploadMB int64 `yaml:"max_upload_mb"`
}

type RemoteConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Segment: SegmentConfig{
			Mode:           segment.ModeFlood.String(),
			FlatThreshold:  segment.DefaultFlatThreshold,
			LooseThreshold: segment.DefaultLooseThreshold,
			GrayDelta:      segment.DefaultGrayDelta,
			KeyTolerance:   segment.DefaultKeyTolerance,
			WhiteThreshold: segment.DefaultWhiteThreshold,
		},
		Editor: EditorConfig{
			HistoryLimit:    editor.DefaultHistoryLimit,
			BrushDiameter:   editor.DefaultBrushDiameter,
			Tolerance:       editor.DefaultTolerance,
			PolishThreshold: editor.DefaultPolishThreshold,
			Metric:          pixel.MetricManhattan.String(),
		},
		Export: ExportConfig{
			Width:  compose.DefaultExportTarget.Width,
			Height: compose.DefaultExportTarget.Height,
		},
		WorkingMax: 1024,
		Server: ServerConfig{
			Addr:        ":8080",
			SessionTTL:  30 * time.Minute,
			SweepSpec:   "@every 1m",
			MaxUploadMB: 32,
		},
		Remote: RemoteConfig{
			Timeout: 60 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load 读取 YAML 文件覆盖默认值，path 为空时直接返回默认配置
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if _, ok := segment.ParseMode(c.Segment.Mode); !ok {
		errs = append(errs, fmt.Errorf("segment.mode: unknown mode %q", c.Segment.Mode))
	}
	if c.Segment.Despeckle < 0 || c.Segment.Despeckle >= 1 {
		errs = append(errs, fmt.Errorf("segment.despeckle: %v not in [0,1)", c.Segment.Despeckle))
	}
	if c.Editor.HistoryLimit < 2 {
		errs = append(errs, fmt.Errorf("editor.history_limit: %d, need at least 2", c.Editor.HistoryLimit))
	}
	if c.Editor.BrushDiameter < 1 {
		errs = append(errs, fmt.Errorf("editor.brush_diameter: %v, need at least 1", c.Editor.BrushDiameter))
	}
	if _, ok := pixel.ParseMetric(c.Editor.Metric); !ok {
		errs = append(errs, fmt.Errorf("editor.metric: unknown metric %q", c.Editor.Metric))
	}
	if !c.ExportTarget().Valid() {
		errs = append(errs, fmt.Errorf("export: invalid size %dx%d", c.Export.Width, c.Export.Height))
	}
	if c.WorkingMax < 0 {
		errs = append(errs, fmt.Errorf("working_max: %d is negative", c.WorkingMax))
	}
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, errors.New("server.session_ttl: must be positive"))
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

func (c *Config) SegmentOptions() segment.Options {
	mode, _ := segment.ParseMode(c.Segment.Mode)
	return segment.Options{
		Mode:           mode,
		FlatThreshold:  c.Segment.FlatThreshold,
		LooseThreshold: c.Segment.LooseThreshold,
		GrayDelta:      c.Segment.GrayDelta,
		KeyTolerance:   c.Segment.KeyTolerance,
		WhiteThreshold: c.Segment.WhiteThreshold,
		SliceSize:      c.Segment.SliceSize,
	}
}

func (c *Config) SessionOptions() []editor.Option {
	metric, _ := pixel.ParseMetric(c.Editor.Metric)
	ts := editor.DefaultToolState()
	ts.BrushDiameter = c.Editor.BrushDiameter
	ts.Tolerance = c.Editor.Tolerance
	opts := []editor.Option{
		editor.WithHistoryLimit(c.Editor.HistoryLimit),
		editor.WithPolishThreshold(c.Editor.PolishThreshold),
		editor.WithGrayDelta(c.Segment.GrayDelta),
		editor.WithMetric(metric),
		editor.WithToolState(ts),
	}
	if c.Segment.SliceSize > 0 {
		opts = append(opts, editor.WithSliceSize(c.Segment.SliceSize, runtime.Gosched))
	}
	return opts
}

func (c *Config) ExportTarget() compose.ExportTarget {
	return compose.ExportTarget{Width: c.Export.Width, Height: c.Export.Height}
}

func (c *Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
