package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"seehuhn.de/go/geom/rect"

	"github.com/ByLCY/isdframe/config"
	"github.com/ByLCY/isdframe/fonts"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/isd"
	"github.com/ByLCY/isdframe/layout"
	"github.com/ByLCY/isdframe/presentation"
	"github.com/ByLCY/isdframe/renderer"
)

// indexEntry 是 frames.json 中的一项。
type indexEntry struct {
	File    string      `json:"file"`
	Begin   float64     `json:"begin"`
	End     float64     `json:"end"`
	Extent  geom.Extent `json:"extent"`
	Regions []rect.Rect `json:"regions"`
}

// resolveConfig 合并配置文件与显式给出的命令行参数。
func resolveConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return config.Config{}, err
	}
	changed := cmd.Flags().Changed
	if changed("layout") {
		cfg.Layout = f.layout
	}
	if changed("renderer") {
		cfg.Renderer = f.renderer
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("out") || cfg.Output == "" {
		cfg.Output = f.out
	}
	cfg.Fonts = append(cfg.Fonts, f.fonts...)
	cfg.FontDirectories = append(cfg.FontDirectories, f.fontDirs...)
	return cfg, nil
}

// run 串联读取、排版、渲染与输出。
func run(cmd *cobra.Command, input string, f flags, stdout io.Writer) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}
	seq, err := readSequence(input)
	if err != nil {
		return err
	}

	cache, err := fonts.NewCache(fonts.Options{
		Files:           cfg.Fonts,
		Directories:     cfg.FontDirectories,
		DefaultFamilies: cfg.DefaultFontFamilies,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}
	ext, err := cfg.ExternalExtent()
	if err != nil {
		return err
	}

	newEngine, err := layout.Lookup(cfg.Layout)
	if err != nil {
		return err
	}
	engine, err := newEngine(layout.Options{Fonts: cache, Logger: logger, External: ext, Background: &bg})
	if err != nil {
		return fmt.Errorf("创建布局引擎失败: %w", err)
	}
	newRenderer, err := renderer.Lookup(cfg.Renderer)
	if err != nil {
		return err
	}
	r, err := newRenderer(renderer.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("创建渲染器失败: %w", err)
	}

	p, err := presentation.New(presentation.Options{Layout: engine, Renderer: r, Workers: cfg.Workers, Logger: logger})
	if err != nil {
		return err
	}
	res, err := p.Run(ctx, seq)
	if err != nil {
		return err
	}

	if f.debug != "" {
		if err := writeDebug(layout.NewResult(res.Layouts), f.debug); err != nil {
			return err
		}
		logger.Debug("wrote debug JSON", "path", f.debug)
	}
	if f.debugDOT != "" && len(res.Layouts) > 0 {
		first := res.Layouts[0]
		if err := writeDOT(ctx, first.Tree.DOT(first.Root), f.debugDOT); err != nil {
			return err
		}
		logger.Debug("wrote area tree graph", "path", f.debugDOT)
	}

	files, err := writeFrames(cfg.Output, res.Frames)
	if err != nil {
		return err
	}
	printSummary(stdout, len(res.Frames), res.Omitted, cfg.Output, files)
	return nil
}

func readSequence(path string) (*isd.Sequence, error) {
	var in io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("无法打开 ISD 文件 %s: %w", path, err)
		}
		defer file.Close()
		in = file
	}
	seq, err := isd.ReadSequence(in)
	if err != nil {
		return nil, fmt.Errorf("解析 ISD 失败: %w", err)
	}
	return seq, nil
}

// writeFrames 写出 frame-NNNN.<ext> 与 frames.json 索引，返回帧文件名。
func writeFrames(dir string, frames []*renderer.Frame) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	files := make([]string, 0, len(frames))
	index := make([]indexEntry, 0, len(frames))
	for i, f := range frames {
		name := fmt.Sprintf("frame-%04d.%s", i, f.Format)
		if err := os.WriteFile(filepath.Join(dir, name), f.Content, 0o644); err != nil {
			return nil, fmt.Errorf("写入帧 %s 失败: %w", name, err)
		}
		files = append(files, name)
		index = append(index, indexEntry{
			File:    name,
			Begin:   layout.Seconds(f.Begin),
			End:     layout.Seconds(f.End),
			Extent:  f.Extent,
			Regions: f.Regions,
		})
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, "frames.json"), data, 0o644); err != nil {
		return nil, fmt.Errorf("写入帧索引失败: %w", err)
	}
	return files, nil
}

func writeDebug(res *layout.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
	}
	if err := layout.WriteDebugJSON(res, path); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
