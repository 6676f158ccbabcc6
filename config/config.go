// Package config 读取 TOML 配置文件。命令行参数优先于文件中的值。
package config

import (
	"fmt"
	"image/color"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/layout"
	"github.com/ByLCY/isdframe/renderer"
	"github.com/ByLCY/isdframe/style"
)

// Config 是配置文件的内容。零值字段使用内置默认值。
type Config struct {
	Layout              string   `toml:"layout"`
	Renderer            string   `toml:"renderer"`
	Fonts               []string `toml:"fonts"`
	FontDirectories     []string `toml:"font_directories"`
	Background          string   `toml:"background"`
	DefaultFontFamilies []string `toml:"default_font_families"`
	Workers             int      `toml:"workers"`
	Output              string   `toml:"output"`
	// Extent 覆盖文档声明的画布尺寸，例如 "1280px 720px"。
	Extent string `toml:"extent"`
}

// Default 返回内置默认配置。
func Default() Config {
	return Config{
		Layout:     layout.DefaultName,
		Renderer:   renderer.DefaultName,
		Background: "black",
		Workers:    1,
	}
}

// Load 读取 path 指定的配置文件；path 为空时返回默认配置。
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
		}
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("配置文件 %s 含有未知字段: %v", path, undecoded)
		}
	}
	cfg.fill()
	return cfg, cfg.Validate()
}

func (c *Config) fill() {
	d := Default()
	if c.Layout == "" {
		c.Layout = d.Layout
	}
	if c.Renderer == "" {
		c.Renderer = d.Renderer
	}
	if c.Background == "" {
		c.Background = d.Background
	}
	if c.Workers < 1 {
		c.Workers = d.Workers
	}
}

// Validate 检查颜色与尺寸字段能否解析。
func (c Config) Validate() error {
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	if _, err := c.ExternalExtent(); err != nil {
		return err
	}
	return nil
}

// BackgroundColor 解析根背景色。
func (c Config) BackgroundColor() (color.NRGBA, error) {
	bg, err := style.ParseColor(c.Background)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("背景色 %q 无效: %w", c.Background, err)
	}
	return bg, nil
}

// ExternalExtent 解析画布尺寸覆盖值，未设置时返回零值。
func (c Config) ExternalExtent() (geom.Extent, error) {
	if c.Extent == "" {
		return geom.Extent{}, nil
	}
	e, err := style.ParseExtent(c.Extent)
	if err != nil {
		return geom.Extent{}, fmt.Errorf("画布尺寸 %q 无效: %w", c.Extent, err)
	}
	return e, nil
}
