package style

import "github.com/ByLCY/isdframe/isd"

// Kind 是样式属性区间的属性种类。
type Kind int

const (
	KindColor Kind = iota
	KindFont
	KindLineHeight
	KindInlineAlign
	KindBlockAlign
	KindWrap
	KindAnnotationAlign
	KindAnnotationOffset
	KindAnnotationPosition
	KindEmphasis
	KindRuby
	KindCombine
	KindDirection
	KindBackgroundColor
)

var kindNames = map[Kind]string{
	KindColor:              "color",
	KindFont:               "font",
	KindLineHeight:         "lineHeight",
	KindInlineAlign:        "inlineAlign",
	KindBlockAlign:         "blockAlign",
	KindWrap:               "wrap",
	KindAnnotationAlign:    "annotationAlign",
	KindAnnotationOffset:   "annotationOffset",
	KindAnnotationPosition: "annotationPosition",
	KindEmphasis:           "emphasis",
	KindRuby:               "ruby",
	KindCombine:            "combine",
	KindDirection:          "direction",
	KindBackgroundColor:    "backgroundColor",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Interval 是作用于段落字符区间 [Begin, End) 的已解析样式值。
// Begin < 0 表示作用于整个元素，与字符位置无关。
//
// Value 的类型随 Kind 而定：颜色为 color.NRGBA，字体为 fonts.Key，
// 行高与注音偏移为 float64（px），其余为关键字 string。
type Interval struct {
	Kind    Kind
	Value   any
	Begin   int
	End     int
	Element *isd.Element
}

// Outer 报告区间是否作用于整个元素。
func (iv Interval) Outer() bool { return iv.Begin < 0 }

// Covers 报告字符偏移 offset 是否落在区间内。
func (iv Interval) Covers(offset int) bool {
	return iv.Outer() || (offset >= iv.Begin && offset < iv.End)
}

// Lookup 返回覆盖 offset 的最后一个 kind 区间。区间按外层到内层的顺序收集，
// 因此后出现的区间优先。
func Lookup(intervals []Interval, kind Kind, offset int) (Interval, bool) {
	for i := len(intervals) - 1; i >= 0; i-- {
		iv := intervals[i]
		if iv.Kind == kind && iv.Covers(offset) {
			return iv, true
		}
	}
	return Interval{}, false
}
