package layout

import (
	"fmt"

	"github.com/ByLCY/isdframe/area"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/isd"
)

// State 是一次布局遍历的作用域栈：记录当前打开的非叶子区域，
// 并持有字体缓存与断行分类器。State 只属于一次遍历，不能并发使用。
type State struct {
	tree    *area.Tree
	stack   []area.ID
	fonts   FontCache
	breaker Breaker
}

// NewState 创建空栈的布局状态。
func NewState(tree *area.Tree, fonts FontCache, breaker Breaker) *State {
	return &State{tree: tree, fonts: fonts, breaker: breaker}
}

func (s *State) Tree() *area.Tree { return s.tree }
func (s *State) Fonts() FontCache { return s.fonts }
func (s *State) Breaker() Breaker { return s.breaker }
func (s *State) Depth() int       { return len(s.stack) }

// Push 打开一个已分配的非叶子区域作为新的作用域。
func (s *State) Push(id area.ID) {
	if s.tree.Node(id).Kind.IsLeaf() {
		panic(fmt.Sprintf("layout: cannot open leaf area %d", id))
	}
	s.stack = append(s.stack, id)
}

// PushBlock 分配块区域，挂接到栈顶区域之下并压栈。
func (s *State) PushBlock(el *isd.Element, wm geom.WritingMode, r geom.Rect) (area.ID, error) {
	id := s.tree.NewArea(area.Block, el, wm, r)
	if top := s.Peek(); top != area.None {
		if err := s.tree.AddChild(top, id); err != nil {
			return area.None, err
		}
	}
	s.stack = append(s.stack, id)
	return id, nil
}

// Pop 弹出并返回栈顶区域；栈为空时返回 area.None。
// 弹出的块若位于另一个块之中，父块的块方向长度累加其尺寸，行内长度取较大值。
func (s *State) Pop() area.ID {
	if len(s.stack) == 0 {
		return area.None
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	if parent := s.tree.Parent(top); parent != area.None && s.tree.Node(top).Kind == area.Block && s.tree.Node(parent).Kind == area.Block {
		s.tree.Expand(parent, top, area.ExpandBPD, area.EncloseIPD)
	}
	return top
}

// Peek 返回栈顶区域但不弹出；栈为空时返回 area.None。
func (s *State) Peek() area.ID {
	if len(s.stack) == 0 {
		return area.None
	}
	return s.stack[len(s.stack)-1]
}

// WritingMode 返回栈顶区域的书写模式，栈为空时为默认书写模式。
func (s *State) WritingMode() geom.WritingMode {
	if top := s.Peek(); top != area.None {
		return s.tree.Node(top).WritingMode
	}
	return geom.DefaultWritingMode
}

// Available 返回栈顶区域在物理轴 axis 上的可用长度，栈为空时为 0。
func (s *State) Available(axis geom.Axis) (float64, error) {
	top := s.Peek()
	if top == area.None {
		if _, err := (geom.Extent{}).Along(axis); err != nil {
			return 0, fmt.Errorf("%w: %v", area.ErrInvalidArgument, err)
		}
		return 0, nil
	}
	return s.tree.Available(top, axis)
}

// AvailableIPD 返回栈顶区域在自身书写模式下的可用行内长度。
func (s *State) AvailableIPD() (float64, error) {
	return s.Available(s.WritingMode().Axis(geom.IPD))
}
