package style

import (
	"strings"

	"github.com/ByLCY/isdframe/fonts"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/isd"
)

var variantFeatures = map[string]string{
	"super": "sups",
	"sub":   "subs",
	"full":  "fwid",
	"half":  "hwid",
	"ruby":  "ruby",
}

// resolveFont 由当前元素的 fontFamily/fontStyle/fontWeight/fontSize/fontVariant 构造字体键。
func (c *Collector) resolveFont() fonts.Key {
	families := c.fontFamilies()

	style, ok := c.keyword("fontStyle")
	if !ok {
		style = "normal"
	}
	weight, ok := c.keyword("fontWeight")
	if !ok {
		weight = "normal"
	}

	size := c.ctx.FontSize
	if v, ok := c.styles["fontSize"]; ok {
		if s, err := c.resolveFontSize(v); err == nil {
			size = s
		} else {
			c.degraded("fontSize", v, err)
		}
	}

	var features []string
	if v, ok := c.styles["fontVariant"]; ok {
		for _, f := range strings.Fields(v) {
			if feat, ok := variantFeatures[f]; ok {
				features = append(features, feat)
			}
		}
	}

	lang := language(c.element)
	if lang == "" {
		lang = c.language
	}
	return fonts.NewKey(families, style, weight, lang, c.wm.Axis(geom.IPD), size, features)
}

// fontFamilies 返回声明的族列表；未声明或无法解析时返回 nil，由字体缓存代入默认族列表。
func (c *Collector) fontFamilies() []string {
	v, ok := c.styles["fontFamily"]
	if !ok {
		return nil
	}
	val, err := ParseValue(v)
	if err != nil {
		c.degraded("fontFamily", v, err)
		return nil
	}
	out := make([]string, 0, len(val.Groups))
	for _, g := range val.Groups {
		parts := make([]string, len(g.Terms))
		for i, t := range g.Terms {
			parts[i] = t.Text()
		}
		out = append(out, strings.Join(parts, " "))
	}
	return out
}

// resolveFontSize 解析一个或两个长度；只有一个时按垂直方向解析并用于两个方向。
func (c *Collector) resolveFontSize(v string) (geom.Extent, error) {
	ls, err := ParseLengths(v)
	if err != nil {
		return geom.Extent{}, err
	}
	ctx := c.ctx
	ctx.Reference = c.ctx.FontSize
	switch len(ls) {
	case 1:
		h, err := ls[0].Resolve(ctx, geom.Vertical)
		if err != nil {
			return geom.Extent{}, err
		}
		return geom.Extent{W: h, H: h}, nil
	case 2:
		w, err := ls[0].Resolve(ctx, geom.Horizontal)
		if err != nil {
			return geom.Extent{}, err
		}
		h, err := ls[1].Resolve(ctx, geom.Vertical)
		if err != nil {
			return geom.Extent{}, err
		}
		return geom.Extent{W: w, H: h}, nil
	}
	return geom.Extent{}, ErrInvalidValue
}

// language 沿祖先链查找 xml:lang。
func language(el *isd.Element) string {
	for cur := el; cur != nil; cur = cur.Parent {
		if v, ok := cur.Attr(isd.NamespaceXML, "lang"); ok {
			return v
		}
	}
	return ""
}
