// Package presentation 把一个 ISD 序列逐帧排版并渲染为文档帧。
//
// 单帧失败（实例时间非法、布局不支持、渲染错误）只会使该帧被记录并略过，
// 不会中断整个序列；输出顺序与实例顺序一致。
package presentation

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/isdframe/isd"
	"github.com/ByLCY/isdframe/layout"
	"github.com/ByLCY/isdframe/renderer"
)

// Options 配置流水线。
type Options struct {
	Layout   layout.Engine
	Renderer renderer.Renderer
	// Workers 是并行处理的最大帧数，小于 1 时按 1 处理。
	Workers int
	Logger  *log.Logger
}

// Result 是一次运行的输出。Frames 与 Layouts 一一对应。
type Result struct {
	Frames  []*renderer.Frame
	Layouts []*layout.Frame
	Omitted int
}

// Presentation 持有布局引擎与渲染器。
type Presentation struct {
	engine   layout.Engine
	renderer renderer.Renderer
	workers  int
	logger   *log.Logger
}

// New 创建流水线。
func New(opts Options) (*Presentation, error) {
	if opts.Layout == nil {
		return nil, errors.New("presentation: 缺少布局引擎")
	}
	if opts.Renderer == nil {
		return nil, errors.New("presentation: 缺少渲染器")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Presentation{
		engine:   opts.Layout,
		renderer: opts.Renderer,
		workers:  opts.Workers,
		logger:   opts.Logger,
	}, nil
}

type slot struct {
	layout *layout.Frame
	frame  *renderer.Frame
}

// Run 处理序列中的全部实例。只有 ctx 被取消时才返回错误。
func (p *Presentation) Run(ctx context.Context, seq *isd.Sequence) (*Result, error) {
	if seq == nil {
		return nil, errors.New("presentation: 序列为空")
	}
	slots := make([]slot, len(seq.Instances))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, inst := range seq.Instances {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lf, f, err := p.frame(seq, inst)
			if err != nil {
				p.logger.Warn("frame omitted", "begin", inst.Begin, "end", inst.End, "err", err)
				return nil
			}
			slots[i] = slot{layout: lf, frame: f}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	for _, s := range slots {
		if s.frame == nil {
			res.Omitted++
			continue
		}
		res.Frames = append(res.Frames, s.frame)
		res.Layouts = append(res.Layouts, s.layout)
	}
	p.logger.Info("presentation done", "frames", len(res.Frames), "omitted", res.Omitted)
	return res, nil
}

func (p *Presentation) frame(seq *isd.Sequence, inst *isd.Instance) (*layout.Frame, *renderer.Frame, error) {
	lf, err := p.engine.Layout(seq, inst)
	if err != nil {
		return nil, nil, fmt.Errorf("布局失败: %w", err)
	}
	f, err := p.renderer.Render(lf)
	if err != nil {
		return nil, nil, fmt.Errorf("渲染失败: %w", err)
	}
	return lf, f, nil
}
