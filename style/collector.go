package style

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/isdframe/fonts"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/isd"
)

// property 描述 Collector 读取的一个 tts 样式属性。
type property struct {
	name    string
	inherit bool
}

var properties = []property{
	{"color", true},
	{"fontFamily", true},
	{"fontSize", true},
	{"fontStyle", true},
	{"fontWeight", true},
	{"fontVariant", true},
	{"lineHeight", true},
	{"textAlign", true},
	{"displayAlign", false},
	{"wrapOption", true},
	{"rubyAlign", true},
	{"rubyOffset", true},
	{"rubyPosition", true},
	{"textEmphasis", true},
	{"ruby", false},
	{"textCombine", false},
	{"direction", true},
	{"unicodeBidi", false},
	{"backgroundColor", false},
}

var keywords = map[string][]string{
	"textAlign":    {"left", "center", "right", "start", "end", "justify"},
	"displayAlign": {"before", "center", "after", "justify"},
	"wrapOption":   {"wrap", "noWrap"},
	"rubyAlign":    {"start", "center", "end", "spaceAround", "spaceBetween", "withBase"},
	"rubyPosition": {"before", "after", "outside"},
	"ruby":         {"none", "container", "base", "baseContainer", "text", "textContainer", "delimiter"},
	"textCombine":  {"none", "all"},
	"direction":    {"ltr", "rtl"},
	"unicodeBidi":  {"normal", "embed", "bidiOverride", "isolate"},
	"fontStyle":    {"normal", "italic", "oblique"},
	"fontWeight":   {"normal", "bold"},
}

// DefaultLineHeightFactor 是 lineHeight 为 normal 时相对字号的倍数。
const DefaultLineHeightFactor = 1.25

// Collector 把元素的计算样式解析为字符区间上的样式属性区间。
// 它只持有当前打开元素的样式表与累积的区间缓冲，段落之间用 Clear 或 Extract 清空。
type Collector struct {
	ctx      Context
	wm       geom.WritingMode
	language string
	logger   *log.Logger

	element   *isd.Element
	styles    map[string]string
	intervals []Interval
}

// NewCollector 以给定长度上下文创建收集器。
func NewCollector(ctx Context, logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.Default()
	}
	if ctx.CellResolution.Columns <= 0 || ctx.CellResolution.Rows <= 0 {
		ctx.CellResolution = DefaultCellResolution
	}
	if ctx.FontSize == (geom.Extent{}) {
		ctx.FontSize = DefaultFontSize(ctx)
	}
	return &Collector{ctx: ctx, logger: logger, styles: map[string]string{}}
}

// DefaultFontSize 返回 1c 对应的字号（以单元格高度作为两个方向的字号）。
func DefaultFontSize(ctx Context) geom.Extent {
	h, _ := Length{Value: 1, Unit: UnitCell}.Resolve(ctx, geom.Vertical)
	return geom.Extent{W: h, H: h}
}

// SetWritingMode 设置后续字体键使用的书写模式。
func (c *Collector) SetWritingMode(wm geom.WritingMode) { c.wm = wm }

// SetLanguage 设置没有 xml:lang 时使用的语言。
func (c *Collector) SetLanguage(lang string) { c.language = lang }

// Context 返回长度上下文。
func (c *Collector) Context() Context { return c.ctx }

// Clear 丢弃已收集的区间与当前元素。
func (c *Collector) Clear() {
	c.intervals = c.intervals[:0]
	c.element = nil
	clear(c.styles)
}

// Extract 取出并清空已收集的区间。
func (c *Collector) Extract() []Interval {
	out := append([]Interval(nil), c.intervals...)
	c.Clear()
	return out
}

func (c *Collector) open(el *isd.Element) {
	c.element = el
	clear(c.styles)
	for _, p := range properties {
		if v, ok := el.Style(p.name, p.inherit); ok {
			c.styles[p.name] = v
		}
	}
}

// CollectParagraphStyles 收集段落级属性（块方向对齐），区间作用于整个元素。
func (c *Collector) CollectParagraphStyles(el *isd.Element) {
	c.open(el)
	if v, ok := c.keyword("displayAlign"); ok {
		c.add(KindBlockAlign, v, -1, -1)
	}
}

// CollectSpanStyles 收集作用于字符区间 [begin, end) 的属性。
func (c *Collector) CollectSpanStyles(el *isd.Element, begin, end int) error {
	if begin >= 0 && end < begin {
		return fmt.Errorf("%w: interval [%d, %d) on %s", ErrInvalidValue, begin, end, el)
	}
	c.open(el)
	c.collectCommonStyles(begin, end)
	return nil
}

func (c *Collector) collectCommonStyles(begin, end int) {
	if v, ok := c.styles["color"]; ok {
		if col, err := ParseColor(v); err == nil {
			c.add(KindColor, col, begin, end)
		} else {
			c.degraded("color", v, err)
		}
	}
	if v, ok := c.styles["backgroundColor"]; ok {
		if col, err := ParseColor(v); err == nil {
			c.add(KindBackgroundColor, col, begin, end)
		} else {
			c.degraded("backgroundColor", v, err)
		}
	}
	key := c.resolveFont()
	c.add(KindFont, key, begin, end)
	if lh, ok := c.resolveLineHeight(key.Size); ok {
		c.add(KindLineHeight, lh, begin, end)
	}
	for _, kv := range []struct {
		name string
		kind Kind
	}{
		{"textAlign", KindInlineAlign},
		{"wrapOption", KindWrap},
		{"rubyAlign", KindAnnotationAlign},
		{"rubyPosition", KindAnnotationPosition},
		{"ruby", KindRuby},
		{"textCombine", KindCombine},
	} {
		if v, ok := c.keyword(kv.name); ok {
			c.add(kv.kind, v, begin, end)
		}
	}
	if v, ok := c.styles["rubyOffset"]; ok {
		if off, err := c.resolveLength(v, c.wm.Axis(geom.BPD), key.Size); err == nil {
			c.add(KindAnnotationOffset, off, begin, end)
		} else {
			c.degraded("rubyOffset", v, err)
		}
	}
	if v, ok := c.styles["textEmphasis"]; ok {
		if val, err := ParseValue(v); err == nil {
			parts := make([]string, 0, 4)
			for _, g := range val.Groups {
				for _, t := range g.Terms {
					parts = append(parts, t.Text())
				}
			}
			c.add(KindEmphasis, strings.Join(parts, " "), begin, end)
		} else {
			c.degraded("textEmphasis", v, err)
		}
	}
	if dir, ok := c.direction(); ok {
		c.add(KindDirection, dir, begin, end)
	}
}

// direction 合并 direction 与 unicodeBidi，例如 "rtl" 或 "rtl bidiOverride"。
func (c *Collector) direction() (string, bool) {
	dir, hasDir := c.keyword("direction")
	bidi, hasBidi := c.keyword("unicodeBidi")
	switch {
	case !hasDir && !hasBidi:
		return "", false
	case !hasBidi || bidi == "normal":
		if !hasDir {
			return "", false
		}
		return dir, true
	case !hasDir:
		return "ltr " + bidi, true
	default:
		return dir + " " + bidi, true
	}
}

func (c *Collector) add(kind Kind, v any, begin, end int) {
	c.intervals = append(c.intervals, Interval{Kind: kind, Value: v, Begin: begin, End: end, Element: c.element})
}

// keyword 读取并校验关键字属性；非法值回退为未设置。
func (c *Collector) keyword(name string) (string, bool) {
	v, ok := c.styles[name]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	for _, allowed := range keywords[name] {
		if v == allowed {
			return v, true
		}
	}
	c.degraded(name, v, fmt.Errorf("%w: unknown keyword", ErrInvalidValue))
	return "", false
}

func (c *Collector) degraded(name, value string, err error) {
	c.logger.Debug("ignoring style value", "element", c.element.String(), "property", name, "value", value, "err", err)
}

// resolveLength 以 fontSize 为 em 与百分比基准解析单个长度。
func (c *Collector) resolveLength(v string, axis geom.Axis, fontSize geom.Extent) (float64, error) {
	l, err := ParseLength(v)
	if err != nil {
		return 0, err
	}
	ctx := c.ctx
	ctx.FontSize = fontSize
	ctx.Reference = fontSize
	return l.Resolve(ctx, axis)
}

func (c *Collector) resolveLineHeight(fontSize geom.Extent) (float64, bool) {
	v, ok := c.styles["lineHeight"]
	if !ok || strings.TrimSpace(v) == "normal" {
		return 0, false
	}
	lh, err := c.resolveLength(v, c.wm.Axis(geom.BPD), fontSize)
	if err != nil || lh <= 0 {
		c.degraded("lineHeight", v, err)
		return 0, false
	}
	return lh, true
}

// Resolved 返回当前打开元素的某个样式属性的原始值。
func (c *Collector) Resolved(name string) (string, bool) {
	v, ok := c.styles[name]
	return v, ok
}

// backgroundOf 解析元素自身的背景色，未声明或非法时返回 nil。
func backgroundOf(el *isd.Element) *color.NRGBA {
	v, ok := el.Style("backgroundColor", false)
	if !ok {
		return nil
	}
	col, err := ParseColor(v)
	if err != nil || col.A == 0 {
		return nil
	}
	return &col
}

// FontKey 解析元素 el 的字体键，不产生区间。
func (c *Collector) FontKey(el *isd.Element) fonts.Key {
	c.open(el)
	defer func() { c.element = nil; clear(c.styles) }()
	return c.resolveFont()
}
