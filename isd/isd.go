// Package isd 读取中间同步文档（ISD）序列。
//
// 只保留排版需要的结构：限定名、属性、文本与对计算样式集（isd:css）的引用。
package isd

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// 命名空间。
const (
	NamespaceISD       = "http://www.w3.org/ns/ttml#isd"
	NamespaceTT        = "http://www.w3.org/ns/ttml"
	NamespaceStyling   = "http://www.w3.org/ns/ttml#styling"
	NamespaceParameter = "http://www.w3.org/ns/ttml#parameter"
	NamespaceXML       = "http://www.w3.org/XML/1998/namespace"
)

// 结构上有意义的元素名。
var (
	NameSequence = xml.Name{Space: NamespaceISD, Local: "sequence"}
	NameInstance = xml.Name{Space: NamespaceISD, Local: "isd"}
	NameCSS      = xml.Name{Space: NamespaceISD, Local: "css"}
	NameRegion   = xml.Name{Space: NamespaceISD, Local: "region"}
	NameBody     = xml.Name{Space: NamespaceTT, Local: "body"}
	NameDiv      = xml.Name{Space: NamespaceTT, Local: "div"}
	NameP        = xml.Name{Space: NamespaceTT, Local: "p"}
	NameSpan     = xml.Name{Space: NamespaceTT, Local: "span"}
	NameBr       = xml.Name{Space: NamespaceTT, Local: "br"}
)

// Element 是 ISD 元素或文本节点（Name 为空、Text 保存字符数据）。
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Text     string
	Children []*Element
	Parent   *Element

	// Styles 是通过 css 属性解析得到的计算样式集，可能为空。
	Styles *StyleSet
}

// IsText 报告该节点是否为文本节点。
func (e *Element) IsText() bool { return e.Name.Local == "" }

// Is 按限定名判断元素身份。
func (e *Element) Is(name xml.Name) bool { return e != nil && e.Name == name }

// Attr 返回限定名属性的值。
func (e *Element) Attr(space, local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// ID 返回 xml:id。
func (e *Element) ID() string {
	v, _ := e.Attr(NamespaceXML, "id")
	return v
}

// Elements 返回非文本子节点。
func (e *Element) Elements() []*Element {
	out := make([]*Element, 0, len(e.Children))
	for _, c := range e.Children {
		if !c.IsText() {
			out = append(out, c)
		}
	}
	return out
}

// Style 查找样式属性；inherit 为真时沿祖先链继续查找。
func (e *Element) Style(name string, inherit bool) (string, bool) {
	for cur := e; cur != nil; cur = cur.Parent {
		if cur.Styles != nil {
			if v, ok := cur.Styles.Get(name); ok {
				return v, true
			}
		}
		if !inherit {
			break
		}
	}
	return "", false
}

// String 返回便于日志输出的元素描述。
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.IsText() {
		return fmt.Sprintf("#text(%q)", e.Text)
	}
	if id := e.ID(); id != "" {
		return e.Name.Local + "#" + id
	}
	return e.Name.Local
}

// StyleSet 是 isd:css 中保存的计算样式，键为 tts 属性的本地名。
type StyleSet struct {
	ID    string
	props map[string]string
}

// NewStyleSet 以给定属性创建样式集。
func NewStyleSet(id string, props map[string]string) *StyleSet {
	cp := make(map[string]string, len(props))
	for k, v := range props {
		cp[k] = v
	}
	return &StyleSet{ID: id, props: cp}
}

// Get 返回样式属性值。
func (s *StyleSet) Get(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.props[name]
	return v, ok
}

// Len 返回属性个数。
func (s *StyleSet) Len() int { return len(s.props) }

// Decode 把 XML 读成元素树并返回根元素。
func Decode(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var root *Element
	var stack []*Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析 ISD XML 失败: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("ISD 文档包含多个根元素")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				el.Parent = parent
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			text := string(t)
			if n := len(parent.Children); n > 0 && parent.Children[n-1].IsText() {
				parent.Children[n-1].Text += text
				continue
			}
			parent.Children = append(parent.Children, &Element{Text: text, Parent: parent})
		}
	}
	if root == nil {
		return nil, fmt.Errorf("ISD 文档为空")
	}
	return root, nil
}

// ResolveStyles 为实例内所有带 css 属性的元素挂接对应的 isd:css 样式集。
// 未知的引用被忽略（元素按默认样式处理），返回未解析的引用名。
func ResolveStyles(instance *Element) []string {
	sets := map[string]*StyleSet{}
	for _, c := range instance.Elements() {
		if !c.Is(NameCSS) {
			continue
		}
		props := map[string]string{}
		for _, a := range c.Attrs {
			if a.Name.Space == NamespaceStyling {
				props[a.Name.Local] = a.Value
			}
		}
		id := c.ID()
		sets[id] = NewStyleSet(id, props)
	}
	var missing []string
	var visit func(e *Element)
	visit = func(e *Element) {
		if ref, ok := e.Attr("", "css"); ok {
			ref = strings.TrimSpace(ref)
			if set, ok := sets[ref]; ok {
				e.Styles = set
			} else {
				missing = append(missing, ref)
			}
		}
		for _, c := range e.Children {
			if !c.IsText() {
				visit(c)
			}
		}
	}
	visit(instance)
	return missing
}
