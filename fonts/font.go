// Package fonts 提供字体缓存：按规范化的字体描述映射到可测量字形前进量的字体。
//
// 字体文件在首次使用时加载，同一描述的并发请求只加载一次。
package fonts

import (
	"slices"
	"strings"

	"github.com/ByLCY/isdframe/geom"
)

// Key 是规范化的字体描述，可直接作为缓存键比较。
type Key struct {
	Families string // 以逗号连接的字体族列表
	Style    string // normal | italic | oblique
	Weight   string // normal | bold
	Language string
	Axis     geom.Axis
	Size     geom.Extent // 字号，单位 px；W 与 H 不同表示各向异性
	Features string      // 排序后以逗号连接的 OpenType 特性
}

// NewKey 规范化各字段并构造 Key。
func NewKey(families []string, style, weight, language string, axis geom.Axis, size geom.Extent, features []string) Key {
	fams := make([]string, 0, len(families))
	for _, f := range families {
		if f = strings.TrimSpace(f); f != "" {
			fams = append(fams, f)
		}
	}
	feats := slices.Clone(features)
	slices.Sort(feats)
	feats = slices.Compact(feats)
	return Key{
		Families: strings.Join(fams, ","),
		Style:    normalizeKeyword(style),
		Weight:   normalizeKeyword(weight),
		Language: strings.ToLower(strings.TrimSpace(language)),
		Axis:     axis,
		Size:     size,
		Features: strings.Join(feats, ","),
	}
}

func normalizeKeyword(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "normal"
	}
	return v
}

// FamilyList 返回字体族列表。
func (k Key) FamilyList() []string {
	if k.Families == "" {
		return nil
	}
	return strings.Split(k.Families, ",")
}

// Bold 报告字重是否为粗体。
func (k Key) Bold() bool { return k.Weight == "bold" }

// Italic 报告字形是否倾斜。
func (k Key) Italic() bool { return k.Style == "italic" || k.Style == "oblique" }

// Font 是可测量的字体。实现必须可被多个 goroutine 同时使用。
type Font interface {
	Key() Key
	// Family 是实际使用的字体族名。
	Family() string
	// Advance 返回 text 沿 Key().Axis 的前进量（px）。
	Advance(text string) float64
	Ascent() float64
	Descent() float64
}
