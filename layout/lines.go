package layout

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/ByLCY/isdframe/area"
	"github.com/ByLCY/isdframe/fonts"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/style"
)

// ErrUnsupported 表示尚未实现的排版路径，例如竖排行的生成。
var ErrUnsupported = errors.New("layout: unsupported")

var defaultColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// breakLines 以贪心首次适配把断行机会分配到各行：
// 当前行放不下某个机会时先结束当前行，再把它放到新行上；空行上的机会总是放下。
// 放不下的空白机会留在当前行的行尾，由 trimTrailing 去掉，不会成为下一行的行首。
// 强制断行的机会放入当前行后立即结束该行。
func breakLines(ops []Opportunity, runs []Run, available float64) [][]Opportunity {
	var lines [][]Opportunity
	var buf []Opportunity
	consumed := 0.0
	for _, op := range ops {
		if len(buf) > 0 && consumed+op.Advance > available {
			if runs[op.Run].Whitespace {
				lines = append(lines, append(buf, op))
				buf, consumed = nil, 0
				continue
			}
			lines = append(lines, buf)
			buf, consumed = nil, 0
		}
		buf = append(buf, op)
		consumed += op.Advance
		if op.Kind == BreakHard {
			lines = append(lines, buf)
			buf, consumed = nil, 0
		}
	}
	if len(buf) > 0 {
		lines = append(lines, buf)
	}
	return lines
}

// trimTrailing 去掉行尾属于空白片段的机会。
func trimTrailing(ops []Opportunity, runs []Run) []Opportunity {
	n := len(ops)
	for n > 0 && runs[ops[n-1].Run].Whitespace {
		n--
	}
	return ops[:n]
}

// paragraphLayout 保存一个段落在行生成过程中的游标。
type paragraphLayout struct {
	st        *State
	p         *Paragraph
	runs      []Run
	block     area.ID
	available float64
	xCurrent  float64
	yCurrent  float64
}

// LayoutParagraph 把段落排成行区域并挂到栈顶块之下，返回生成的行。
func LayoutParagraph(st *State, p *Paragraph) ([]area.ID, error) {
	block := st.Peek()
	if block == area.None {
		return nil, fmt.Errorf("%w: no open block for paragraph %s", area.ErrInvalidArgument, p.Element)
	}
	available, err := st.AvailableIPD()
	if err != nil {
		return nil, err
	}
	ops, runs, err := p.opportunities(st)
	if err != nil {
		return nil, err
	}
	limit := available
	if p.keyword(style.KindWrap, 0) == "noWrap" {
		limit = math.Inf(1)
	}

	pl := &paragraphLayout{st: st, p: p, runs: runs, block: block, available: available}
	var lines []area.ID
	for _, line := range breakLines(ops, runs, limit) {
		id, err := pl.emit(line)
		if err != nil {
			return nil, err
		}
		lines = append(lines, id)
	}
	return lines, nil
}

// emit 生成一行：行区域位于当前游标，宽为可用行内长度，高为行高。
// 只含空白的行没有字形，但仍然推进游标。
func (pl *paragraphLayout) emit(ops []Opportunity) (area.ID, error) {
	wm := pl.p.WritingMode
	if wm.IsVertical() {
		return area.None, fmt.Errorf("%w: line emission in %s writing mode", ErrUnsupported, wm)
	}
	tree := pl.st.Tree()
	first := pl.runs[ops[0].Run].Begin + ops[0].Start

	font, err := pl.p.fontAt(pl.st, first)
	if err != nil {
		return area.None, err
	}
	lineHeight := pl.lineHeight(font, first)

	line := tree.NewArea(area.Line, pl.p.Element, wm, geom.Rect{
		X: pl.xCurrent,
		Y: pl.yCurrent,
		W: pl.available,
		H: lineHeight,
	})
	n := tree.Node(line)
	n.Style = area.LineStyle{
		Align: pl.align(first),
		Color: pl.color(first),
		Font:  font,
	}

	if trimmed := trimTrailing(ops, pl.runs); len(trimmed) > 0 {
		last := trimmed[len(trimmed)-1]
		text := pl.p.Slice(first, pl.runs[last.Run].Begin+last.Index)
		advance := font.Advance(text)
		if advance > pl.available {
			n.Overflow = advance - pl.available
		}
		if offset := alignOffset(pl.available, advance, n.Style.Align); offset > 0 {
			filler := tree.NewArea(area.InlineFiller, pl.p.Element, wm, geom.Rect{W: offset, H: lineHeight})
			if err := tree.AddChild(line, filler); err != nil {
				return area.None, err
			}
		}
		glyph := tree.NewGlyph(pl.p.Element, wm, text, geom.Rect{W: advance, H: lineHeight})
		if err := tree.AddChild(line, glyph); err != nil {
			return area.None, err
		}
	}

	if err := tree.AddChild(pl.block, line, area.ExpandBPD); err != nil {
		return area.None, err
	}
	pl.yCurrent += lineHeight
	return line, nil
}

func (pl *paragraphLayout) lineHeight(font fonts.Font, offset int) float64 {
	if iv, ok := style.Lookup(pl.p.Intervals, style.KindLineHeight, offset); ok {
		if v, ok := iv.Value.(float64); ok && v > 0 {
			return v
		}
	}
	size := font.Key().Size
	if pl.p.WritingMode.Axis(geom.BPD) == geom.Horizontal {
		return size.W * style.DefaultLineHeightFactor
	}
	return size.H * style.DefaultLineHeightFactor
}

func (pl *paragraphLayout) color(offset int) color.NRGBA {
	if iv, ok := style.Lookup(pl.p.Intervals, style.KindColor, offset); ok {
		if c, ok := iv.Value.(color.NRGBA); ok {
			return c
		}
	}
	return defaultColor
}

// align 把 textAlign 映射到物理对齐：left、center 或 right。
func (pl *paragraphLayout) align(offset int) string {
	v := pl.p.keyword(style.KindInlineAlign, offset)
	rtl := pl.p.WritingMode == geom.RLTB
	if dir := pl.p.keyword(style.KindDirection, offset); len(dir) >= 3 && dir[:3] == "rtl" {
		rtl = true
	}
	switch v {
	case "center":
		return "center"
	case "left", "right":
		return v
	case "end":
		if rtl {
			return "left"
		}
		return "right"
	default: // start、justify 与未设置
		if rtl {
			return "right"
		}
		return "left"
	}
}

func alignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch align {
	case "center":
		return (container - width) / 2
	case "right":
		return container - width
	default:
		return 0
	}
}
