package style

import (
	"image/color"

	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/isd"
)

// Region 是已解析的区域几何与区域级样式。
type Region struct {
	ID           string
	Rect         geom.Rect
	WritingMode  geom.WritingMode
	Background   *color.NRGBA
	DisplayAlign string
}

// ResolveRegion 解析区域元素的 origin、extent、writingMode、backgroundColor 与 displayAlign。
// 百分比以外部渲染尺寸为参考；非法值回退为默认值（原点 0 0，尺寸为整个外部尺寸）。
func (c *Collector) ResolveRegion(el *isd.Element) Region {
	c.open(el)
	defer func() { c.element = nil; clear(c.styles) }()

	ctx := c.ctx
	ctx.Reference = ctx.External
	r := Region{
		ID:           el.ID(),
		Rect:         geom.Rect{W: ctx.External.W, H: ctx.External.H},
		WritingMode:  geom.DefaultWritingMode,
		DisplayAlign: "before",
	}
	if v, ok := el.Style("origin", false); ok {
		if x, y, err := resolvePair(v, ctx); err == nil {
			r.Rect.X, r.Rect.Y = x, y
		} else {
			c.degraded("origin", v, err)
		}
	}
	if v, ok := el.Style("extent", false); ok {
		if w, h, err := resolvePair(v, ctx); err == nil {
			r.Rect.W, r.Rect.H = w, h
		} else {
			c.degraded("extent", v, err)
		}
	}
	if v, ok := el.Style("writingMode", false); ok {
		if wm, ok := geom.ParseWritingMode(v); ok {
			r.WritingMode = wm
		} else {
			c.degraded("writingMode", v, ErrInvalidValue)
		}
	}
	if v, ok := c.keyword("displayAlign"); ok {
		r.DisplayAlign = v
	}
	r.Background = backgroundOf(el)
	return r
}

func resolvePair(v string, ctx Context) (float64, float64, error) {
	ls, err := ParseLengths(v)
	if err != nil {
		return 0, 0, err
	}
	if len(ls) != 2 {
		return 0, 0, ErrInvalidValue
	}
	x, err := ls[0].Resolve(ctx, geom.Horizontal)
	if err != nil {
		return 0, 0, err
	}
	y, err := ls[1].Resolve(ctx, geom.Vertical)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// ResolveRegionLength 以外部尺寸为百分比参考解析区域元素上的长度。
func ResolveRegionLength(ctx Context, value string, axis geom.Axis) (float64, error) {
	l, err := ParseLength(value)
	if err != nil {
		return 0, err
	}
	ctx.Reference = ctx.External
	return l.Resolve(ctx, axis)
}
