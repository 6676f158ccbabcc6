package layout

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/ByLCY/isdframe/area"
	"github.com/ByLCY/isdframe/fonts"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/linebreak"
	"github.com/ByLCY/isdframe/style"
)

// fixedFont 每个字符前进固定宽度，用于测试，不依赖真实字体文件。
type fixedFont struct {
	key fonts.Key
	per float64
}

func (f fixedFont) Key() fonts.Key   { return f.key }
func (f fixedFont) Family() string   { return "fixed" }
func (f fixedFont) Ascent() float64  { return f.key.Size.H * 0.8 }
func (f fixedFont) Descent() float64 { return f.key.Size.H * 0.2 }
func (f fixedFont) Advance(text string) float64 {
	return float64(utf8.RuneCountInString(text)) * f.per
}

type stubCache struct{ per float64 }

func (c stubCache) MapFont(key fonts.Key) (fonts.Font, error) {
	return fixedFont{key: key, per: c.per}, nil
}

func (c stubCache) DefaultFont(axis geom.Axis, size geom.Extent) (fonts.Font, error) {
	return fixedFont{key: fonts.NewKey(nil, "", "", "", axis, size, nil), per: c.per}, nil
}

// runBreaker 只在片段末尾给出断行位置，片段以换行符结尾时为强制断行。
type runBreaker struct {
	n    int
	hard bool
	done bool
}

func (b *runBreaker) SetText(text string) {
	b.n = utf8.RuneCountInString(text)
	b.hard = strings.HasSuffix(text, "\n")
	b.done = false
}

func (b *runBreaker) First() int {
	b.done = false
	return 0
}

func (b *runBreaker) Next() int {
	if b.done {
		return linebreak.Done
	}
	b.done = true
	return b.n
}

func (b *runBreaker) Hard() bool { return b.done && b.hard }

func newTestState(t *testing.T, wm geom.WritingMode, available float64) (*State, area.ID) {
	t.Helper()
	tree := area.New()
	st := NewState(tree, stubCache{per: 10}, &runBreaker{})
	e := wm.Extent(available, 0)
	block, err := st.PushBlock(nil, wm, geom.Rect{W: e.W, H: e.H})
	if err != nil {
		t.Fatalf("PushBlock 失败: %v", err)
	}
	tree.SetAvailable(block, e)
	return st, block
}

func paragraph(text string, ivs ...style.Interval) *Paragraph {
	return &Paragraph{
		WritingMode: geom.LRTB,
		Text:        []rune(text),
		Intervals:   ivs,
		FontSize:    geom.Extent{W: 20, H: 20},
	}
}

func layoutText(t *testing.T, text string, available float64, ivs ...style.Interval) (*area.Tree, area.ID, []area.ID) {
	t.Helper()
	st, block := newTestState(t, geom.LRTB, available)
	lines, err := LayoutParagraph(st, paragraph(text, ivs...))
	if err != nil {
		t.Fatalf("LayoutParagraph 失败: %v", err)
	}
	return st.Tree(), block, lines
}

func lineText(tree *area.Tree, line area.ID) string {
	for _, c := range tree.Children(line) {
		if n := tree.Node(c); n.Kind == area.Glyph {
			return n.Text
		}
	}
	return ""
}

func TestGreedyFirstFit(t *testing.T) {
	tree, block, lines := layoutText(t, "The quick brown fox", 100)
	if len(lines) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(lines))
	}
	if got := lineText(tree, lines[0]); got != "The quick" {
		t.Fatalf("第一行错误: %q", got)
	}
	if got := lineText(tree, lines[1]); got != "brown fox" {
		t.Fatalf("第二行错误: %q", got)
	}
	l0, l1 := tree.Node(lines[0]), tree.Node(lines[1])
	if l0.Rect.Y != 0 || l1.Rect.Y != 25 || l0.Rect.W != 100 || l0.Rect.H != 25 {
		t.Fatalf("行几何错误: %+v %+v", l0.Rect, l1.Rect)
	}
	if got := tree.Node(block).BPD(); got != 50 {
		t.Fatalf("块高度应累加行高，实际 %v", got)
	}
	if l0.Overflow != 0 || l1.Overflow != 0 {
		t.Fatalf("不应溢出")
	}
}

func TestBreakLinesContainmentAndCompleteness(t *testing.T) {
	st, _ := newTestState(t, geom.LRTB, 0)
	text := "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt"
	p := paragraph(text)
	ops, runs, err := p.opportunities(st)
	if err != nil {
		t.Fatal(err)
	}
	span := func(line []Opportunity) string {
		if len(line) == 0 {
			return ""
		}
		first, last := line[0], line[len(line)-1]
		return p.Slice(runs[first.Run].Begin+first.Start, runs[last.Run].Begin+last.Index)
	}
	for _, available := range []float64{30, 55, 60, 80, 90, 95, 120, 200, 1000} {
		lines := breakLines(ops, runs, available)
		var flat []Opportunity
		var full strings.Builder
		for i, line := range lines {
			trimmed := trimTrailing(line, runs)
			sum := 0.0
			for _, op := range trimmed {
				sum += op.Advance
			}
			if len(trimmed) > 1 && sum > available {
				t.Fatalf("available=%v: 多个机会的行超出可用宽度 (%v)", available, sum)
			}
			visible := span(trimmed)
			if visible != strings.TrimRightFunc(span(line), unicode.IsSpace) {
				t.Fatalf("available=%v: 行 %d 只应去掉行尾空白: %q -> %q", available, i, span(line), visible)
			}
			if i > 0 && visible != strings.TrimLeftFunc(visible, unicode.IsSpace) {
				t.Fatalf("available=%v: 续行不应以空白开头: %q", available, visible)
			}
			full.WriteString(span(line))
			flat = append(flat, line...)
		}
		if !reflect.DeepEqual(flat, ops) {
			t.Fatalf("available=%v: 断行机会丢失或重复", available)
		}
		if full.String() != text {
			t.Fatalf("available=%v: 行文本顺序错误: %q", available, full.String())
		}
	}
}

func TestWhitespaceBreakStaysOnFinishedLine(t *testing.T) {
	for _, available := range []float64{90, 95, 100, 140} {
		tree, _, lines := layoutText(t, "The quick brown fox", available)
		var got []string
		for _, l := range lines {
			got = append(got, lineText(tree, l))
		}
		if strings.Join(got, "|") != "The quick|brown fox" {
			t.Fatalf("available=%v: 期望 [The quick brown fox] 两行，实际 %q", available, got)
		}
	}
}

func TestOverlongRunOverflows(t *testing.T) {
	tree, _, lines := layoutText(t, "ab Supercalifragilistic cd", 100)
	if len(lines) != 3 {
		t.Fatalf("期望 3 行，实际 %d", len(lines))
	}
	long := tree.Node(lines[1])
	if lineText(tree, lines[1]) != "Supercalifragilistic" {
		t.Fatalf("超长片段应独占一行: %q", lineText(tree, lines[1]))
	}
	if long.Overflow != 100 {
		t.Fatalf("溢出量应为 100，实际 %v", long.Overflow)
	}
	if tree.Node(lines[0]).Overflow != 0 {
		t.Fatalf("普通行不应记录溢出")
	}
}

func TestWhitespaceOnlyLineAdvancesCursor(t *testing.T) {
	tree, block, lines := layoutText(t, "  \nab", 20)
	if len(lines) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(lines))
	}
	if len(tree.Children(lines[0])) != 0 {
		t.Fatalf("只有空白的行不应有可见内容")
	}
	if lineText(tree, lines[1]) != "ab" || tree.Node(lines[1]).Rect.Y != 25 || tree.Node(block).BPD() != 50 {
		t.Fatalf("空白行仍应推进行游标")
	}
}

func TestOverflowingTrailingSpaceJoinsLine(t *testing.T) {
	tree, _, lines := layoutText(t, "ab   ", 20)
	if len(lines) != 1 || lineText(tree, lines[0]) != "ab" {
		t.Fatalf("行尾空白应留在当前行并被去掉，实际 %d 行", len(lines))
	}
}

func TestHardBreak(t *testing.T) {
	tree, _, lines := layoutText(t, "one\ntwo", 1000)
	if len(lines) != 2 || lineText(tree, lines[0]) != "one" || lineText(tree, lines[1]) != "two" {
		t.Fatalf("强制断行错误: %d 行", len(lines))
	}
}

func TestNoWrap(t *testing.T) {
	wrap := style.Interval{Kind: style.KindWrap, Value: "noWrap", Begin: 0, End: 19}
	tree, _, lines := layoutText(t, "The quick brown fox", 100, wrap)
	if len(lines) != 1 {
		t.Fatalf("noWrap 应只有一行，实际 %d", len(lines))
	}
	if tree.Node(lines[0]).Overflow != 90 {
		t.Fatalf("noWrap 行应记录溢出，实际 %v", tree.Node(lines[0]).Overflow)
	}
}

func TestInlineAlignFiller(t *testing.T) {
	center := style.Interval{Kind: style.KindInlineAlign, Value: "center", Begin: 0, End: 2}
	tree, _, lines := layoutText(t, "ab", 100, center)
	kids := tree.Children(lines[0])
	if len(kids) != 2 {
		t.Fatalf("居中行应有填充与字形两个子节点，实际 %d", len(kids))
	}
	filler, glyph := tree.Node(kids[0]), tree.Node(kids[1])
	if filler.Kind != area.InlineFiller || filler.IPD() != 40 {
		t.Fatalf("填充错误: %s %v", filler.Kind, filler.IPD())
	}
	if glyph.Kind != area.Glyph || glyph.Rect.X != 0 || glyph.IPD() != 20 {
		t.Fatalf("字形错误: %+v", glyph.Rect)
	}
	if tree.Node(lines[0]).Style.Align != "center" {
		t.Fatalf("行对齐未记录")
	}
}

func TestLineStyleFromIntervals(t *testing.T) {
	key := fonts.NewKey([]string{"x"}, "", "", "", geom.Horizontal, geom.Extent{W: 40, H: 40}, nil)
	ivs := []style.Interval{
		{Kind: style.KindFont, Value: key, Begin: 0, End: 5},
		{Kind: style.KindLineHeight, Value: 60.0, Begin: 0, End: 5},
	}
	tree, _, lines := layoutText(t, "hello", 1000, ivs...)
	n := tree.Node(lines[0])
	if n.Rect.H != 60 {
		t.Fatalf("行高应取 lineHeight 区间，实际 %v", n.Rect.H)
	}
	if n.Style.Font.Key() != key {
		t.Fatalf("行字体应取字体区间")
	}
	if n.Style.Color != defaultColor {
		t.Fatalf("未设置颜色时应为默认色")
	}
}

func TestIdempotentLayout(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog"
	t1, b1, _ := layoutText(t, text, 120)
	t2, b2, _ := layoutText(t, text, 120)
	if !reflect.DeepEqual(t1.Snapshot(b1), t2.Snapshot(b2)) {
		t.Fatalf("相同输入应得到相同的区域树")
	}
}

func TestVerticalLineEmissionUnsupported(t *testing.T) {
	st, _ := newTestState(t, geom.TBRL, 100)
	p := paragraph("縦書き")
	p.WritingMode = geom.TBRL
	if _, err := LayoutParagraph(st, p); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("竖排应返回 ErrUnsupported，实际 %v", err)
	}
}

func TestStateDefaultsAndScopes(t *testing.T) {
	tree := area.New()
	st := NewState(tree, stubCache{per: 1}, linebreak.New())
	if st.Peek() != area.None || st.Pop() != area.None {
		t.Fatalf("空栈应返回 None")
	}
	if st.WritingMode() != geom.DefaultWritingMode {
		t.Fatalf("空栈应使用默认书写模式")
	}
	if v, err := st.Available(geom.Horizontal); err != nil || v != 0 {
		t.Fatalf("空栈可用长度应为 0: %v %v", v, err)
	}
	if _, err := st.Available(geom.AxisNone); !errors.Is(err, area.ErrInvalidArgument) {
		t.Fatalf("无轴查询应失败: %v", err)
	}

	outer, err := st.PushBlock(nil, geom.RLTB, geom.Rect{W: 300})
	if err != nil {
		t.Fatal(err)
	}
	inner, err := st.PushBlock(nil, geom.RLTB, geom.Rect{W: 200, H: 40})
	if err != nil {
		t.Fatal(err)
	}
	if tree.Parent(inner) != outer || st.WritingMode() != geom.RLTB {
		t.Fatalf("PushBlock 应挂接到栈顶")
	}
	if st.Pop() != inner || st.Peek() != outer {
		t.Fatalf("Pop 顺序错误")
	}
	if r := tree.Node(outer).Rect; r.W != 300 || r.H != 40 {
		t.Fatalf("弹出内层块后外层块应扩展: %+v", r)
	}
}

func TestBreakKinds(t *testing.T) {
	st := NewState(area.New(), stubCache{per: 10}, linebreak.New())
	p := paragraph("well-known 漢字 x\ny")
	ops, _, err := p.opportunities(st)
	if err != nil {
		t.Fatal(err)
	}
	var kinds []BreakKind
	for _, op := range ops {
		kinds = append(kinds, op.Kind)
	}
	want := []BreakKind{
		BreakSoftHyphenationPoint, BreakUnknown, // "well-" "known"
		BreakSoftWhitespace,
		BreakSoftIdeograph, BreakUnknown, // "漢" "字"
		BreakSoftWhitespace,
		BreakUnknown,
		BreakHard,
		BreakUnknown,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("断行种类错误: %v", kinds)
	}
}

func TestParagraphAttachments(t *testing.T) {
	p := &Paragraph{
		Text: []rune("abc def"),
		Intervals: []style.Interval{
			{Kind: style.KindColor, Value: "ignored", Begin: 0, End: 7},
			{Kind: style.KindDirection, Value: "ltr", Begin: -1, End: -1},
			{Kind: style.KindEmphasis, Value: "dot", Begin: 4, End: 7},
			{Kind: style.KindDirection, Value: "rtl", Begin: 4, End: 7},
		},
	}
	got := p.Attachments(1)
	if len(got) != 1 || got[0].Value != "ltr" {
		t.Fatalf("偏移 1 处应只有外层方向: %+v", got)
	}
	got = p.Attachments(5)
	if len(got) != 2 || got[0].Kind != style.KindEmphasis || got[1].Value != "rtl" {
		t.Fatalf("偏移 5 处应取内层强调与方向: %+v", got)
	}
}
