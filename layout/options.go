package layout

import (
	"image/color"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/isdframe/fonts"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/linebreak"
	"github.com/ByLCY/isdframe/style"
)

// Options 配置布局阶段所需的协作者，例如字体缓存与断行分类器。
type Options struct {
	Fonts FontCache
	// NewBreaker 为每一帧创建断行分类器；为空时使用 linebreak.New。
	NewBreaker func() Breaker
	Logger     *log.Logger

	// External 覆盖序列声明的外部尺寸；为零时使用序列的 extent（缺省 1920x1080）。
	External geom.Extent
	// CellResolution 覆盖序列声明的 cellResolution。
	CellResolution style.CellResolution
	// Background 是根参考区域的背景色，nil 时为黑色。
	Background *color.NRGBA
}

// FontCache 按字体描述返回可测量的字体。实现必须可被并发调用。
type FontCache interface {
	MapFont(key fonts.Key) (fonts.Font, error)
	DefaultFont(axis geom.Axis, size geom.Extent) (fonts.Font, error)
}

// Breaker 是断行分类器：SetText 之后依次调用 First 与 Next，Next 用尽时返回 linebreak.Done。
type Breaker interface {
	SetText(text string)
	First() int
	Next() int
	// Hard 报告最近一次 Next 返回的位置是否为强制断行。
	Hard() bool
}

// DefaultExtent 是序列未声明 extent 时的外部尺寸。
var DefaultExtent = geom.Extent{W: 1920, H: 1080}

var defaultBackground = color.NRGBA{A: 255}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.NewBreaker == nil {
		o.NewBreaker = func() Breaker { return linebreak.New() }
	}
	if o.Background == nil {
		bg := defaultBackground
		o.Background = &bg
	}
	return o
}
