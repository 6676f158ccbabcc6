package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/isdframe/area"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/isd"
	"github.com/ByLCY/isdframe/style"
)

// Processor 把 ISD 实例按 sequence → isd → region → body → div → p 的结构排成区域树。
// Processor 本身不保存遍历状态，可以被多个 goroutine 同时用于不同的实例。
type Processor struct {
	opts Options
}

var _ Engine = (*Processor)(nil)

// NewProcessor 校验依赖并返回处理器。
func NewProcessor(opts Options) (*Processor, error) {
	if opts.Fonts == nil {
		return nil, fmt.Errorf("layout: 缺少字体缓存")
	}
	return &Processor{opts: opts.withDefaults()}, nil
}

// walk 保存一次实例遍历的状态。
type walk struct {
	opts      *Options
	state     *State
	collector *style.Collector
	regions   []Region
}

// Document 解析序列级参数：外部尺寸与单元格网格。
func (p *Processor) Document(seq *isd.Sequence) (geom.Extent, style.CellResolution) {
	ext := p.opts.External
	if ext == (geom.Extent{}) {
		ext = DefaultExtent
		if seq.ExtentSpec != "" {
			if e, err := style.ParseExtent(seq.ExtentSpec); err == nil {
				ext = e
			} else {
				p.opts.Logger.Warn("ignoring sequence extent", "value", seq.ExtentSpec, "err", err)
			}
		}
	}
	cr := p.opts.CellResolution
	if cr.Columns <= 0 || cr.Rows <= 0 {
		cr = style.DefaultCellResolution
		if seq.CellResolutionSpec != "" {
			if c, err := style.ParseCellResolution(seq.CellResolutionSpec); err == nil {
				cr = c
			} else {
				p.opts.Logger.Warn("ignoring sequence cellResolution", "value", seq.CellResolutionSpec, "err", err)
			}
		}
	}
	return ext, cr
}

// Layout 排版一个实例，返回包含区域树的帧布局。
func (p *Processor) Layout(seq *isd.Sequence, inst *isd.Instance) (*Frame, error) {
	if inst.Err != nil {
		return nil, inst.Err
	}
	ext, cr := p.Document(seq)
	ctx := style.Context{External: ext, CellResolution: cr}

	tree := area.New()
	canvas := tree.NewCanvas(inst.Element, ext)
	root := tree.NewReference(inst.Element, geom.DefaultWritingMode, geom.Rect{W: ext.W, H: ext.H})
	bg := *p.opts.Background
	tree.Node(root).Background = &bg
	if err := tree.AddChild(canvas, root); err != nil {
		return nil, err
	}

	w := &walk{
		opts:      &p.opts,
		state:     NewState(tree, p.opts.Fonts, p.opts.NewBreaker()),
		collector: style.NewCollector(ctx, p.opts.Logger),
	}
	w.collector.SetLanguage(seq.Lang)
	w.state.Push(root)
	areas, err := w.instance(inst.Element)
	if err != nil {
		return nil, err
	}
	w.state.Pop()

	return &Frame{
		Begin:   inst.Begin,
		End:     inst.End,
		Extent:  ext,
		Tree:    tree,
		Root:    canvas,
		Regions: w.regions,
		Lines:   areas,
	}, nil
}

func (w *walk) instance(el *isd.Element) ([]area.ID, error) {
	var out []area.ID
	for _, c := range el.Elements() {
		if !c.Is(isd.NameRegion) {
			continue
		}
		areas, err := w.region(c)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", c, err)
		}
		out = append(out, areas...)
	}
	return out, nil
}

// region 生成 视口 → 参考区域，并按 displayAlign 在块方向上放置 body。
func (w *walk) region(el *isd.Element) ([]area.ID, error) {
	tree := w.state.Tree()
	reg := w.collector.ResolveRegion(el)
	w.regions = append(w.regions, Region{ID: reg.ID, Rect: reg.Rect})

	vp := tree.NewArea(area.Viewport, el, reg.WritingMode, reg.Rect)
	tree.Node(vp).Background = reg.Background
	if err := tree.AddChild(w.state.Peek(), vp); err != nil {
		return nil, err
	}
	ref := tree.NewReference(el, reg.WritingMode, reg.Rect)
	if err := tree.AddChild(vp, ref); err != nil {
		return nil, err
	}
	tree.SetAvailable(ref, reg.Rect.Extent())

	w.state.Push(vp)
	w.state.Push(ref)
	defer func() {
		w.state.Pop()
		w.state.Pop()
	}()

	var out []area.ID
	for _, c := range el.Elements() {
		if !c.Is(isd.NameBody) {
			continue
		}
		body, areas, err := w.body(c, reg.WritingMode)
		if err != nil {
			return nil, err
		}
		alignBlock(tree, ref, body, reg.DisplayAlign)
		out = append(out, areas...)
	}
	return out, nil
}

// alignBlock 在参考区域的块方向上按 displayAlign 偏移内容块。
func alignBlock(tree *area.Tree, ref, block area.ID, displayAlign string) {
	rn, bn := tree.Node(ref), tree.Node(block)
	free := rn.BPD() - bn.BPD()
	var offset float64
	switch displayAlign {
	case "center":
		offset = free / 2
	case "after":
		offset = free
	default:
		return
	}
	if rn.WritingMode.Axis(geom.BPD) == geom.Horizontal {
		bn.Rect.X += offset
		return
	}
	bn.Rect.Y += offset
}

func (w *walk) body(el *isd.Element, wm geom.WritingMode) (area.ID, []area.ID, error) {
	block, err := w.openBlock(el, wm)
	if err != nil {
		return area.None, nil, err
	}
	defer w.state.Pop()
	areas, err := w.children(el)
	return block, areas, err
}

func (w *walk) division(el *isd.Element) ([]area.ID, error) {
	if _, err := w.openBlock(el, w.state.WritingMode()); err != nil {
		return nil, err
	}
	defer w.state.Pop()
	return w.children(el)
}

// children 处理 body 或 div 的子元素：嵌套的 div 与 p。
func (w *walk) children(el *isd.Element) ([]area.ID, error) {
	var out []area.ID
	for _, c := range el.Elements() {
		var areas []area.ID
		var err error
		switch {
		case c.Is(isd.NameDiv):
			areas, err = w.division(c)
		case c.Is(isd.NameP):
			areas, err = w.paragraph(c)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, areas...)
	}
	return out, nil
}

// openBlock 在栈顶区域中当前块方向游标处打开一个块，行内长度取可用长度。
func (w *walk) openBlock(el *isd.Element, wm geom.WritingMode) (area.ID, error) {
	tree := w.state.Tree()
	ipd, err := w.state.AvailableIPD()
	if err != nil {
		return area.None, err
	}
	r := geom.Rect{}
	e := wm.Extent(ipd, 0)
	r.W, r.H = e.W, e.H
	if top := w.state.Peek(); top != area.None && tree.Node(top).Kind == area.Block {
		if wm.IsVertical() {
			r.X = tree.Node(top).BPD()
		} else {
			r.Y = tree.Node(top).BPD()
		}
	}
	id, err := w.state.PushBlock(el, wm, r)
	if err != nil {
		return area.None, err
	}
	tree.SetAvailable(id, e)
	return id, nil
}

// span 记录段落文本中一个 span 覆盖的字符区间。
type span struct {
	el         *isd.Element
	begin, end int
}

func (w *walk) paragraph(el *isd.Element) ([]area.ID, error) {
	var b textBuilder
	var gather func(e *isd.Element, preserve bool)
	gather = func(e *isd.Element, preserve bool) {
		for _, c := range e.Children {
			switch {
			case c.IsText():
				b.appendText(c.Text, preserve)
			case c.Is(isd.NameBr):
				b.appendBreak()
			case c.Is(isd.NameSpan):
				i := b.openSpan(c)
				gather(c, preserveSpace(c, preserve))
				b.closeSpan(i)
			}
		}
	}
	gather(el, preserveSpace(el, false))
	text := b.finish()
	spans := b.spans

	c := w.collector
	c.Clear()
	c.SetWritingMode(w.state.WritingMode())
	c.CollectParagraphStyles(el)
	if err := c.CollectSpanStyles(el, 0, len(text)); err != nil {
		return nil, err
	}
	for _, s := range spans {
		if err := c.CollectSpanStyles(s.el, s.begin, s.end); err != nil {
			return nil, err
		}
	}
	par := &Paragraph{
		Element:     el,
		WritingMode: w.state.WritingMode(),
		Text:        text,
		Intervals:   c.Extract(),
		FontSize:    style.DefaultFontSize(c.Context()),
	}

	if _, err := w.openBlock(el, par.WritingMode); err != nil {
		return nil, err
	}
	defer w.state.Pop()
	return LayoutParagraph(w.state, par)
}

func preserveSpace(el *isd.Element, inherited bool) bool {
	if v, ok := el.Attr(isd.NamespaceXML, "space"); ok {
		return strings.TrimSpace(v) == "preserve"
	}
	return inherited
}

// textBuilder 拼接段落文本并记录 span 区间。非保留空白按 xml:space="default" 合并，
// 并去掉段首、段尾与强制换行两侧的空格；去掉空格时已记录的区间随之收缩。
type textBuilder struct {
	text  []rune
	spans []span
	// soft 标记末尾的空格来自合并，可以在换行或段尾去掉
	soft bool
}

func (b *textBuilder) openSpan(el *isd.Element) int {
	b.spans = append(b.spans, span{el: el, begin: len(b.text), end: -1})
	return len(b.spans) - 1
}

func (b *textBuilder) closeSpan(i int) { b.spans[i].end = len(b.text) }

func (b *textBuilder) appendText(s string, preserve bool) {
	if preserve {
		b.text = append(b.text, []rune(s)...)
		b.soft = false
		return
	}
	for _, r := range collapseSpace(s) {
		if r == ' ' {
			n := len(b.text)
			if n == 0 || b.text[n-1] == '\n' || (b.soft && b.text[n-1] == ' ') {
				continue
			}
			b.text = append(b.text, r)
			b.soft = true
			continue
		}
		b.text = append(b.text, r)
		b.soft = false
	}
}

func (b *textBuilder) appendBreak() {
	b.trimSoft()
	b.text = append(b.text, '\n')
}

func (b *textBuilder) trimSoft() {
	if n := len(b.text); b.soft && n > 0 && b.text[n-1] == ' ' {
		b.text = b.text[:n-1]
		for i := range b.spans {
			b.spans[i].begin = min(b.spans[i].begin, n-1)
			if b.spans[i].end > n-1 {
				b.spans[i].end = n - 1
			}
		}
	}
	b.soft = false
}

func (b *textBuilder) finish() []rune {
	b.trimSoft()
	return b.text
}
