// Package renderer 定义把帧布局输出为文档帧的渲染器接口与注册表。
// 具体后端（renderer/svg、renderer/canvas）在 init 中注册自己。
package renderer

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"seehuhn.de/go/geom/rect"

	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/layout"
)

// Frame 是渲染后的文档帧：时间区间、像素尺寸、渲染内容与生效的区域矩形。
type Frame struct {
	Begin   time.Duration
	End     time.Duration
	Extent  geom.Extent
	Format  string
	Content []byte
	Regions []rect.Rect
}

// Renderer 将帧布局输出为最终文档，例如 SVG 或 PDF。
// 实现必须可以被多个 goroutine 同时调用。
type Renderer interface {
	Render(f *layout.Frame) (*Frame, error)
	// Format 是输出文件的扩展名。
	Format() string
}

// Options 配置渲染器。
type Options struct {
	Logger *log.Logger
}

// Factory 创建渲染器。
type Factory func(Options) (Renderer, error)

// DefaultName 是默认的渲染器名。
const DefaultName = "svg"

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register 注册渲染器，重名时覆盖。
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Lookup 按名称查找渲染器。
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("未知的渲染器 %q（可用：%v）", name, namesLocked())
	}
	return f, nil
}

// Names 返回已注册的渲染器名，按字母排序。
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// NewFrame 复制帧布局的时间、尺寸与区域，Content 由渲染器填写。
func NewFrame(f *layout.Frame, format string) *Frame {
	out := &Frame{
		Begin:   f.Begin,
		End:     f.End,
		Extent:  f.Extent,
		Format:  format,
		Regions: make([]rect.Rect, 0, len(f.Regions)),
	}
	for _, r := range f.Regions {
		out.Regions = append(out.Regions, r.Rect.Bounds())
	}
	return out
}
