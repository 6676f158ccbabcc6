// Package area 实现排版输出的几何区域树。
//
// 区域节点保存在 Tree 的数组（arena）中，通过 ID 引用；父节点字段只是一个句柄，
// 节点的唯一所有者是 Tree。子节点的插入顺序即文档与渲染顺序。
package area

import (
	"errors"
	"fmt"
	"image/color"

	"seehuhn.de/go/geom/matrix"

	"github.com/ByLCY/isdframe/fonts"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/isd"
)

// ErrInvalidArgument 表示违反区域树契约的调用（程序错误）。
var ErrInvalidArgument = errors.New("area: invalid argument")

// Kind 是区域变体的封闭枚举。
type Kind uint8

const (
	KindInvalid Kind = iota
	Canvas
	Viewport
	Reference
	Block
	Line
	Glyph
	Space
	InlineFiller
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	Canvas:       "canvas",
	Viewport:     "viewport",
	Reference:    "reference",
	Block:        "block",
	Line:         "line",
	Glyph:        "glyph",
	Space:        "space",
	InlineFiller: "filler",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsLeaf 报告该变体是否为叶子区域（不能拥有子节点）。
func (k Kind) IsLeaf() bool { return k == Glyph || k == Space || k == InlineFiller }

// IsInline 报告该变体能否作为行区域的子节点。
func (k Kind) IsInline() bool { return k.IsLeaf() }

// ID 是区域在 Tree 中的句柄。
type ID int32

// None 表示不存在的区域。
const None ID = -1

// Expansion 控制添加子节点时容器尺寸的更新方式。
type Expansion uint8

const (
	EncloseIPD Expansion = 1 << iota // 取当前与子节点 IPD 的较大值
	EncloseBPD
	ExpandIPD // 累加子节点 IPD
	ExpandBPD
)

// LineStyle 是行区域上生效的对齐、颜色与字体。
type LineStyle struct {
	Align string
	Color color.NRGBA
	Font  fonts.Font
}

// Node 是区域树中的一个节点。几何信息以物理坐标保存，位置相对父节点。
// IPD/BPD 总是由 Rect 按书写模式投影得出，不单独存储。
type Node struct {
	Kind        Kind
	Element     *isd.Element
	WritingMode geom.WritingMode
	Rect        geom.Rect

	// 非叶子节点
	parent    ID
	children  []ID
	available *geom.Extent

	// Line
	Style    LineStyle
	Overflow float64

	// Glyph
	Text string

	// Reference
	Transform matrix.Matrix

	// Viewport / Reference 背景，nil 表示透明
	Background *color.NRGBA
}

// IPD 返回节点在自身书写模式下的行内长度。
func (n *Node) IPD() float64 { return n.WritingMode.IPD(n.Rect.Extent()) }

// BPD 返回节点在自身书写模式下的块方向长度。
func (n *Node) BPD() float64 { return n.WritingMode.BPD(n.Rect.Extent()) }

// Tree 拥有全部区域节点。单个 Tree 不支持并发写入。
type Tree struct {
	nodes []Node
}

// New 创建空的区域树。
func New() *Tree { return &Tree{} }

// Len 返回已分配的节点数。
func (t *Tree) Len() int { return len(t.nodes) }

// NewArea 分配一个未挂接的节点并返回其句柄。
func (t *Tree) NewArea(kind Kind, el *isd.Element, wm geom.WritingMode, r geom.Rect) ID {
	if kind == KindInvalid || int(kind) >= len(kindNames) {
		panic(fmt.Sprintf("area: cannot allocate %s", kind))
	}
	t.nodes = append(t.nodes, Node{
		Kind:        kind,
		Element:     el,
		WritingMode: wm,
		Rect:        r,
		parent:      None,
		Transform:   matrix.Identity,
	})
	return ID(len(t.nodes) - 1)
}

// NewCanvas 分配画布区域，位于原点。
func (t *Tree) NewCanvas(el *isd.Element, extent geom.Extent) ID {
	return t.NewArea(Canvas, el, geom.DefaultWritingMode, geom.Rect{W: extent.W, H: extent.H})
}

// NewReference 分配参考区域，变换矩阵为到 r 原点的平移。
func (t *Tree) NewReference(el *isd.Element, wm geom.WritingMode, r geom.Rect) ID {
	id := t.NewArea(Reference, el, wm, r)
	t.nodes[id].Transform = geom.Translation(r.X, r.Y)
	return id
}

// NewGlyph 分配字形叶子区域。
func (t *Tree) NewGlyph(el *isd.Element, wm geom.WritingMode, text string, r geom.Rect) ID {
	id := t.NewArea(Glyph, el, wm, r)
	t.nodes[id].Text = text
	return id
}

// Node 返回节点指针。指针在下一次分配前有效。
func (t *Tree) Node(id ID) *Node {
	if !t.valid(id) {
		panic(fmt.Sprintf("area: unknown id %d", id))
	}
	return &t.nodes[id]
}

func (t *Tree) valid(id ID) bool { return id >= 0 && int(id) < len(t.nodes) }

// Parent 返回父节点句柄，根节点返回 None。
func (t *Tree) Parent(id ID) ID { return t.Node(id).parent }

// Children 返回子节点句柄的副本。
func (t *Tree) Children(id ID) []ID {
	return append([]ID(nil), t.Node(id).children...)
}

// FirstChild 返回第一个子节点，没有时返回 None。
func (t *Tree) FirstChild(id ID) ID {
	c := t.Node(id).children
	if len(c) == 0 {
		return None
	}
	return c[0]
}

// LastChild 返回最后一个子节点，没有时返回 None。
func (t *Tree) LastChild(id ID) ID {
	c := t.Node(id).children
	if len(c) == 0 {
		return None
	}
	return c[len(c)-1]
}

// AddChild 把 child 追加到 parent 的子节点末尾；给定 exps 时随后按其扩展 parent。
func (t *Tree) AddChild(parent, child ID, exps ...Expansion) error {
	if err := t.checkAttach(parent, child); err != nil {
		return err
	}
	t.detach(child)
	p := &t.nodes[parent]
	p.children = append(p.children, child)
	t.nodes[child].parent = parent
	if len(exps) > 0 {
		t.Expand(parent, child, exps...)
	}
	return nil
}

// InsertChild 把 child 插入到 parent 的子节点 before 之前。
func (t *Tree) InsertChild(parent, child, before ID, exps ...Expansion) error {
	if err := t.checkAttach(parent, child); err != nil {
		return err
	}
	if child == before {
		return fmt.Errorf("%w: cannot insert %d before itself", ErrInvalidArgument, child)
	}
	if indexOf(t.nodes[parent].children, before) < 0 {
		return fmt.Errorf("%w: %d is not a child of %d", ErrInvalidArgument, before, parent)
	}
	t.detach(child)
	p := &t.nodes[parent]
	idx := indexOf(p.children, before)
	p.children = append(p.children, None)
	copy(p.children[idx+1:], p.children[idx:])
	p.children[idx] = child
	t.nodes[child].parent = parent
	if len(exps) > 0 {
		t.Expand(parent, child, exps...)
	}
	return nil
}

func (t *Tree) checkAttach(parent, child ID) error {
	if !t.valid(parent) || !t.valid(child) {
		return fmt.Errorf("%w: unknown area (parent=%d child=%d)", ErrInvalidArgument, parent, child)
	}
	pk, ck := t.nodes[parent].Kind, t.nodes[child].Kind
	if pk.IsLeaf() {
		return fmt.Errorf("%w: %s area cannot have children", ErrInvalidArgument, pk)
	}
	if pk == Line && !ck.IsInline() {
		return fmt.Errorf("%w: %s area is not inline and cannot be added to a line", ErrInvalidArgument, ck)
	}
	for a := parent; a != None; a = t.nodes[a].parent {
		if a == child {
			return fmt.Errorf("%w: %d is an ancestor of %d", ErrInvalidArgument, child, parent)
		}
	}
	return nil
}

// detach 把节点从旧父节点移除，使两侧的父子关系保持一致。
func (t *Tree) detach(child ID) {
	old := t.nodes[child].parent
	if old == None {
		return
	}
	siblings := t.nodes[old].children
	if i := indexOf(siblings, child); i >= 0 {
		t.nodes[old].children = append(siblings[:i], siblings[i+1:]...)
	}
	t.nodes[child].parent = None
}

func indexOf(ids []ID, id ID) int {
	for i, c := range ids {
		if c == id {
			return i
		}
	}
	return -1
}

// Expand 按 exps 用 child 的尺寸更新 parent。子节点尺寸按 parent 的书写模式投影。
func (t *Tree) Expand(parent, child ID, exps ...Expansion) {
	var mask Expansion
	for _, e := range exps {
		mask |= e
	}
	p := &t.nodes[parent]
	wm := p.WritingMode
	ce := t.nodes[child].Rect.Extent()
	ipd, bpd := wm.IPD(p.Rect.Extent()), wm.BPD(p.Rect.Extent())
	cipd, cbpd := wm.IPD(ce), wm.BPD(ce)
	switch {
	case mask&ExpandIPD != 0:
		ipd += cipd
	case mask&EncloseIPD != 0:
		ipd = max(ipd, cipd)
	}
	switch {
	case mask&ExpandBPD != 0:
		bpd += cbpd
	case mask&EncloseBPD != 0:
		bpd = max(bpd, cbpd)
	}
	p.setLogical(ipd, bpd)
}

func (n *Node) setLogical(ipd, bpd float64) {
	e := n.WritingMode.Extent(ipd, bpd)
	n.Rect.W, n.Rect.H = e.W, e.H
}

// SetIPD 修改节点的行内长度。
func (t *Tree) SetIPD(id ID, ipd float64) {
	n := t.Node(id)
	n.setLogical(ipd, n.BPD())
}

// SetBPD 修改节点的块方向长度。
func (t *Tree) SetBPD(id ID, bpd float64) {
	n := t.Node(id)
	n.setLogical(n.IPD(), bpd)
}

// SetAvailable 为块类容器指定外部施加的可用尺寸，用于约束段落排版。
func (t *Tree) SetAvailable(id ID, e geom.Extent) {
	t.Node(id).available = &e
}

// Available 返回 id 在物理轴 axis 上的可用长度。
// 未指定外部可用尺寸时按当前几何计算。
func (t *Tree) Available(id ID, axis geom.Axis) (float64, error) {
	n := t.Node(id)
	e := n.Rect.Extent()
	if n.available != nil {
		e = *n.available
	}
	v, err := e.Along(axis)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return v, nil
}

// IsRootReference 报告 id 是否为没有参考区域祖先的参考区域。
func (t *Tree) IsRootReference(id ID) bool {
	if t.Node(id).Kind != Reference {
		return false
	}
	for a := t.nodes[id].parent; a != None; a = t.nodes[a].parent {
		if t.nodes[a].Kind == Reference {
			return false
		}
	}
	return true
}

// Walk 先序遍历以 id 为根的子树；fn 返回 false 时不再进入该节点的子节点。
func (t *Tree) Walk(id ID, fn func(id ID, depth int) bool) {
	t.walk(id, 0, fn)
}

func (t *Tree) walk(id ID, depth int, fn func(ID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id].children {
		t.walk(c, depth+1, fn)
	}
}
