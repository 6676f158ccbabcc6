package layout

import (
	"strings"
	"unicode"

	"github.com/ByLCY/isdframe/fonts"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/isd"
	"github.com/ByLCY/isdframe/style"
)

// BreakKind 是断行机会的种类。
type BreakKind int

const (
	BreakUnknown BreakKind = iota
	BreakHard
	BreakSoftIdeograph
	BreakSoftHyphenationPoint
	BreakSoftWhitespace
)

func (k BreakKind) String() string {
	switch k {
	case BreakHard:
		return "hard"
	case BreakSoftIdeograph:
		return "soft-ideograph"
	case BreakSoftHyphenationPoint:
		return "soft-hyphenation-point"
	case BreakSoftWhitespace:
		return "soft-whitespace"
	default:
		return "unknown"
	}
}

// Paragraph 是带样式区间的段落文本。区间的偏移以 rune 计。
type Paragraph struct {
	Element     *isd.Element
	WritingMode geom.WritingMode
	Text        []rune
	Intervals   []style.Interval
	// FontSize 是没有字体区间时默认字体的字号。
	FontSize geom.Extent
}

// Run 是段落中全为可断空白或全不为可断空白的最大片段，[Begin, End) 为 rune 偏移。
type Run struct {
	Begin      int
	End        int
	Whitespace bool
}

// Opportunity 是一次断行机会。Start 与 Index 是在所属片段内的 rune 下标，
// Advance 是 [Start, Index) 这一段的行内前进量。
type Opportunity struct {
	Run     int
	Kind    BreakKind
	Start   int
	Index   int
	Advance float64
}

// isBreakingSpace 报告 r 是否为可断空白；不换行空格不算。
func isBreakingSpace(r rune) bool {
	switch r {
	case '\u00a0', '\u2007', '\u202f', '\ufeff':
		return false
	}
	return unicode.IsSpace(r)
}

// Runs 把段落切分为交替的空白与非空白片段。
func (p *Paragraph) Runs() []Run {
	var runs []Run
	for i, r := range p.Text {
		ws := isBreakingSpace(r)
		if n := len(runs); n > 0 && runs[n-1].Whitespace == ws {
			runs[n-1].End = i + 1
			continue
		}
		runs = append(runs, Run{Begin: i, End: i + 1, Whitespace: ws})
	}
	return runs
}

// Slice 返回段落 [begin, end) 的文本。
func (p *Paragraph) Slice(begin, end int) string {
	return string(p.Text[begin:end])
}

// breakKind 按断行位置前一个字符分类软断行。
func breakKind(run Run, text []rune, index int, hard bool) BreakKind {
	switch {
	case hard:
		return BreakHard
	case run.Whitespace:
		return BreakSoftWhitespace
	case run.Begin+index >= run.End:
		return BreakUnknown
	}
	prev := text[run.Begin+index-1]
	switch {
	case prev == '-' || prev == '\u00ad' || prev == '\u2010':
		return BreakSoftHyphenationPoint
	case unicode.In(prev, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul):
		return BreakSoftIdeograph
	}
	return BreakUnknown
}

// fontAt 返回字符偏移 offset 处生效的字体。
func (p *Paragraph) fontAt(st *State, offset int) (fonts.Font, error) {
	if iv, ok := style.Lookup(p.Intervals, style.KindFont, offset); ok {
		if key, ok := iv.Value.(fonts.Key); ok {
			return st.Fonts().MapFont(key)
		}
	}
	return st.Fonts().DefaultFont(p.WritingMode.Axis(geom.IPD), p.FontSize)
}

func (p *Paragraph) keyword(kind style.Kind, offset int) string {
	if iv, ok := style.Lookup(p.Intervals, kind, offset); ok {
		if s, ok := iv.Value.(string); ok {
			return s
		}
	}
	return ""
}

// attachmentKinds 是附着在字符上、不参与断行的属性。
var attachmentKinds = []style.Kind{
	style.KindEmphasis,
	style.KindRuby,
	style.KindCombine,
	style.KindDirection,
	style.KindBackgroundColor,
}

// Attachments 返回字符偏移 offset 处生效的附着属性（强调、注音、组合、方向、背景），
// 每种属性至多一项，取最内层。
func (p *Paragraph) Attachments(offset int) []style.Interval {
	var out []style.Interval
	for _, kind := range attachmentKinds {
		if iv, ok := style.Lookup(p.Intervals, kind, offset); ok {
			out = append(out, iv)
		}
	}
	return out
}

// opportunities 依次列出所有片段的断行机会；分类器对每个片段重新设置文本。
func (p *Paragraph) opportunities(st *State) ([]Opportunity, []Run, error) {
	runs := p.Runs()
	br := st.Breaker()
	var out []Opportunity
	for ri, run := range runs {
		br.SetText(p.Slice(run.Begin, run.End))
		prev := br.First()
		for idx := br.Next(); idx >= 0; idx = br.Next() {
			if idx <= prev {
				continue
			}
			font, err := p.fontAt(st, run.Begin+prev)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, Opportunity{
				Run:     ri,
				Kind:    breakKind(run, p.Text, idx, br.Hard()),
				Start:   prev,
				Index:   idx,
				Advance: font.Advance(p.Slice(run.Begin+prev, run.Begin+idx)),
			})
			prev = idx
		}
		// 分类器没有报告片段末尾时补上，保证每个字符都属于某个机会
		if prev < run.End-run.Begin {
			font, err := p.fontAt(st, run.Begin+prev)
			if err != nil {
				return nil, nil, err
			}
			idx := run.End - run.Begin
			out = append(out, Opportunity{
				Run:     ri,
				Kind:    breakKind(run, p.Text, idx, false),
				Start:   prev,
				Index:   idx,
				Advance: font.Advance(p.Slice(run.Begin+prev, run.Begin+idx)),
			})
		}
	}
	return out, runs, nil
}

// collapseSpace 按 xml:space="default" 规则把换行与制表符视为空格并合并连续空格。
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case '\n', '\r', '\t':
			r = ' '
		}
		if r == ' ' {
			if space {
				continue
			}
			space = true
		} else {
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
