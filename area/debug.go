package area

import (
	"fmt"
	"strings"

	"github.com/ByLCY/isdframe/geom"
)

// Snapshot 是区域子树的可序列化视图，供调试 JSON 使用。
type Snapshot struct {
	Kind        string      `json:"kind"`
	Element     string      `json:"element,omitempty"`
	WritingMode string      `json:"writingMode"`
	Rect        geom.Rect   `json:"rect"`
	Text        string      `json:"text,omitempty"`
	Overflow    float64     `json:"overflow,omitempty"`
	Align       string      `json:"align,omitempty"`
	Children    []*Snapshot `json:"children,omitempty"`
}

// Snapshot 复制以 id 为根的子树。
func (t *Tree) Snapshot(id ID) *Snapshot {
	n := t.Node(id)
	s := &Snapshot{
		Kind:        n.Kind.String(),
		WritingMode: n.WritingMode.String(),
		Rect:        n.Rect,
		Text:        n.Text,
		Overflow:    n.Overflow,
	}
	if n.Element != nil {
		s.Element = n.Element.Name.Local
	}
	if n.Kind == Line {
		s.Align = n.Style.Align
	}
	for _, c := range n.children {
		s.Children = append(s.Children, t.Snapshot(c))
	}
	return s
}

// DOT 把以 id 为根的子树写成 graphviz DOT 文本。
func (t *Tree) DOT(id ID) string {
	var b strings.Builder
	b.WriteString("digraph areas {\n  node [shape=box fontname=\"Helvetica\" fontsize=10];\n")
	t.Walk(id, func(cur ID, _ int) bool {
		n := &t.nodes[cur]
		label := fmt.Sprintf("%s #%d\\n%.1fx%.1f @ %.1f,%.1f", n.Kind, cur, n.Rect.W, n.Rect.H, n.Rect.X, n.Rect.Y)
		if n.Text != "" {
			label += "\\n" + strings.ReplaceAll(fmt.Sprintf("%q", n.Text), `\`, `\\`)
		}
		fmt.Fprintf(&b, "  a%d [label=\"%s\"];\n", cur, strings.ReplaceAll(label, `"`, `\"`))
		if cur != id && n.parent != None {
			fmt.Fprintf(&b, "  a%d -> a%d;\n", n.parent, cur)
		}
		return true
	})
	b.WriteString("}\n")
	return b.String()
}
