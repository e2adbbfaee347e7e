package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/segmentio/ksuid"

	"github.com/chaos-io/cutout/compose"
	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/editor"
	"github.com/chaos-io/cutout/pixel"
	"github.com/chaos-io/cutout/remote"
	"github.com/chaos-io/cutout/segment"
	"github.com/chaos-io/cutout/server"
	"github.com/chaos-io/cutout/util"
)

type options struct {
	configPath string
	input      string
	outputDir  string
	mockup     string
	mode       string
	despeckle  float64
	polish     bool
	edit       string
	serve      bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML config file")
	flag.StringVar(&o.input, "in", "", "input image, local path or http(s) URL")
	flag.StringVar(&o.outputDir, "out", "./output", "output directory")
	flag.StringVar(&o.mockup, "mockup", "", "background image; when set the cutout is also composed onto it")
	flag.StringVar(&o.mode, "mode", "", "segmentation mode: flood, keyed or white (overrides config)")
	flag.Float64Var(&o.despeckle, "despeckle", -1, "drop islands smaller than this share of the subject (overrides config)")
	flag.BoolVar(&o.polish, "polish", false, "run edge polish after segmentation")
	flag.StringVar(&o.edit, "edit", "", "instruction sent to the remote image editor after segmentation")
	flag.BoolVar(&o.serve, "serve", false, "run the HTTP server instead of the one-shot pipeline")
	flag.Parse()

	cfg, err := config.Load(o.configPath)
	if err != nil {
		fatal("load config", err)
	}
	if o.mode != "" {
		cfg.Segment.Mode = o.mode
	}
	if o.despeckle >= 0 {
		cfg.Segment.Despeckle = o.despeckle
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid config", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.serve {
		err = serve(ctx, cfg)
	} else {
		err = run(ctx, cfg, o)
	}
	if err != nil {
		fatal("failed", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func newEditor(cfg *config.Config) editor.ImageEditor {
	if cfg.Remote.Endpoint == "" {
		return nil
	}
	return remote.NewClient(cfg.Remote.Endpoint,
		remote.WithAPIKey(cfg.Remote.APIKey),
		remote.WithTimeout(cfg.Remote.Timeout))
}

func serve(ctx context.Context, cfg *config.Config) error {
	var opts []server.Option
	if ed := newEditor(cfg); ed != nil {
		opts = append(opts, server.WithEditor(ed))
	}
	srv, err := server.New(cfg, opts...)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// run 一次性流程：抠图 -> （精修/远程编辑）-> 导出素材 -> （合成效果图）
func run(ctx context.Context, cfg *config.Config, o options) error {
	if o.input == "" {
		return errors.New("-in is required")
	}
	defer util.Trace("cutout")()

	src, err := util.LoadBuffer(ctx, o.input)
	if err != nil {
		return err
	}

	seg := segment.New(cfg.SegmentOptions())
	cut := seg.Segment(src)
	if cfg.Segment.Despeckle > 0 {
		cut = seg.Despeckle(cut, cfg.Segment.Despeckle)
	}
	slog.Info("segmented", "width", cut.Width(), "height", cut.Height(),
		"transparent", cut.CountTransparent(), "mode", cfg.Segment.Mode)

	if o.polish || o.edit != "" {
		cut, err = refine(ctx, cfg, cut, o)
		if err != nil {
			return err
		}
	}

	name := ksuid.New().String()
	target := cfg.ExportTarget()

	asset, err := compose.ExportAsset(cut, target)
	if err != nil {
		return err
	}
	assetPath := filepath.Join(o.outputDir, name+"_cutout.png")
	if err := util.SavePNG(assetPath, asset); err != nil {
		return err
	}

	if o.mockup == "" {
		slog.Info("done", "cutout", assetPath)
		return nil
	}

	bg, err := util.LoadBuffer(ctx, o.mockup)
	if err != nil {
		return err
	}
	comp := compose.New(bg, cut)
	comp.AddDefaultLayer()
	out, err := comp.Render(target)
	if err != nil {
		return err
	}
	mockupPath := filepath.Join(o.outputDir, name+"_mockup.png")
	if err := util.SavePNG(mockupPath, out); err != nil {
		return err
	}
	slog.Info("done", "cutout", assetPath, "mockup", mockupPath)
	return nil
}

func refine(ctx context.Context, cfg *config.Config, cut *pixel.Buffer, o options) (*pixel.Buffer, error) {
	sess := editor.NewSession(cut, cfg.SessionOptions()...)
	if o.edit != "" {
		ed := newEditor(cfg)
		if ed == nil {
			return nil, fmt.Errorf("-edit: %w (set remote.endpoint)", editor.ErrNoEditor)
		}
		if err := sess.ApplyEdit(ctx, ed, o.edit); err != nil {
			return nil, err
		}
	}
	if o.polish {
		sess.AutoPolish()
	}
	return sess.Export(), nil
}
