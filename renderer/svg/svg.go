// Package svg renders area trees as SVG markup.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/isdframe/area"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/layout"
	"github.com/ByLCY/isdframe/renderer"
	"github.com/ByLCY/isdframe/style"
)

// Name is the registry name of the SVG backend.
const Name = "svg"

func init() {
	renderer.Register(Name, func(opts renderer.Options) (renderer.Renderer, error) {
		return New(opts), nil
	})
}

// Renderer writes one standalone SVG document per frame.
type Renderer struct {
	logger *log.Logger
}

var _ renderer.Renderer = (*Renderer)(nil)

func New(opts renderer.Options) *Renderer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Renderer{logger: opts.Logger}
}

func (r *Renderer) Format() string { return Name }

// Render walks the frame's area tree starting at its canvas.
func (r *Renderer) Render(f *layout.Frame) (*renderer.Frame, error) {
	if f == nil || f.Tree == nil {
		return nil, fmt.Errorf("svg: empty frame")
	}
	var buf bytes.Buffer
	Write(&buf, f.Tree, f.Root)
	out := renderer.NewFrame(f, Name)
	out.Content = buf.Bytes()
	r.logger.Debug("rendered frame", "begin", f.Begin, "end", f.End, "bytes", buf.Len())
	return out, nil
}

// Write renders the subtree rooted at id. It panics on an unknown area kind.
func Write(buf *bytes.Buffer, tree *area.Tree, id area.ID) {
	w := &walker{buf: buf, tree: tree}
	w.render(id, 1)
}

type walker struct {
	buf  *bytes.Buffer
	tree *area.Tree
	x, y float64
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func (w *walker) indent(depth int) { w.buf.WriteString(strings.Repeat("  ", depth)) }

func (w *walker) children(id area.ID, depth int) {
	for _, c := range w.tree.Children(id) {
		w.render(c, depth)
	}
}

func (w *walker) render(id area.ID, depth int) {
	n := w.tree.Node(id)
	switch n.Kind {
	case area.Canvas:
		fmt.Fprintf(w.buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
			num(n.Rect.W), num(n.Rect.H), num(n.Rect.W), num(n.Rect.H))
		w.children(id, depth)
		w.buf.WriteString("</svg>\n")

	case area.Viewport:
		if n.Background != nil {
			w.indent(depth)
			w.rect(w.x+n.Rect.X, w.y+n.Rect.Y, n.Rect.Extent(), *n.Background)
		}
		w.children(id, depth)

	case area.Reference:
		if w.tree.IsRootReference(id) {
			w.indent(depth)
			bg := color.NRGBA{A: 255}
			if n.Background != nil {
				bg = *n.Background
			}
			w.rect(0, 0, n.Rect.Extent(), bg)
			w.children(id, depth)
			return
		}
		tx, ty := geom.Offset(n.Transform)
		w.indent(depth)
		fmt.Fprintf(w.buf, "<g transform=\"translate(%s,%s)\">\n", num(w.x+tx), num(w.y+ty))
		x, y := w.x, w.y
		w.x, w.y = 0, 0
		w.children(id, depth+1)
		w.x, w.y = x, y
		w.indent(depth)
		w.buf.WriteString("</g>\n")

	case area.Block:
		x, y := w.x, w.y
		w.x += n.Rect.X
		w.y += n.Rect.Y
		w.children(id, depth)
		w.x, w.y = x, y

	case area.Line:
		w.line(id, n, depth)

	case area.Glyph:
		w.indent(depth)
		w.text(w.x+n.Rect.X, w.y+n.Rect.Y, n.Text)

	case area.Space, area.InlineFiller:
		w.x += n.IPD()

	default:
		panic(fmt.Sprintf("svg: unknown area kind %s", n.Kind))
	}
}

// line renders a styled group offset by the font ascent; children advance a
// horizontal cursor by their IPD.
func (w *walker) line(id area.ID, n *area.Node, depth int) {
	fill, opacity := style.FormatColor(n.Style.Color)
	ascent := 0.0
	w.indent(depth)
	fmt.Fprintf(w.buf, `<g fill="%s"`, fill)
	if opacity < 1 {
		fmt.Fprintf(w.buf, ` fill-opacity="%s"`, num(opacity))
	}
	if f := n.Style.Font; f != nil {
		key := f.Key()
		ascent = f.Ascent()
		fmt.Fprintf(w.buf, ` font-family="%s" font-size="%s"`, attr(fontFamily(key.FamilyList(), f.Family())), num(key.Size.H))
		if key.Style != "normal" {
			fmt.Fprintf(w.buf, ` font-style="%s"`, key.Style)
		}
		if key.Weight != "normal" {
			fmt.Fprintf(w.buf, ` font-weight="%s"`, key.Weight)
		}
	}
	fmt.Fprintf(w.buf, " transform=\"translate(%s,%s)\">\n", num(w.x+n.Rect.X), num(w.y+n.Rect.Y+ascent))

	cursor := 0.0
	for _, c := range w.tree.Children(id) {
		cn := w.tree.Node(c)
		switch cn.Kind {
		case area.Glyph:
			w.indent(depth + 1)
			w.text(cursor, 0, cn.Text)
		case area.Space, area.InlineFiller:
		default:
			panic(fmt.Sprintf("svg: unknown inline area kind %s", cn.Kind))
		}
		cursor += cn.IPD()
	}
	w.indent(depth)
	w.buf.WriteString("</g>\n")
}

func (w *walker) rect(x, y float64, e geom.Extent, c color.NRGBA) {
	fill, opacity := style.FormatColor(c)
	fmt.Fprintf(w.buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"`, num(x), num(y), num(e.W), num(e.H), fill)
	if opacity < 1 {
		fmt.Fprintf(w.buf, ` fill-opacity="%s"`, num(opacity))
	}
	w.buf.WriteString("/>\n")
}

func (w *walker) text(x, y float64, s string) {
	fmt.Fprintf(w.buf, `<text x="%s" y="%s" xml:space="preserve">`, num(x), num(y))
	xml.EscapeText(w.buf, []byte(s))
	w.buf.WriteString("</text>\n")
}

var genericFamilies = map[string]string{
	"default":               "monospace",
	"monospace":             "monospace",
	"monospaceSansSerif":    "monospace",
	"monospaceSerif":        "monospace",
	"sansSerif":             "sans-serif",
	"serif":                 "serif",
	"proportionalSansSerif": "sans-serif",
	"proportionalSerif":     "serif",
}

// fontFamily maps TTML generic names to CSS generics and appends the family
// that was actually loaded.
func fontFamily(families []string, loaded string) string {
	out := make([]string, 0, len(families)+1)
	for _, f := range families {
		if g, ok := genericFamilies[f]; ok {
			f = g
		} else if strings.ContainsAny(f, " ,") {
			f = "'" + f + "'"
		}
		out = append(out, f)
	}
	if loaded != "" {
		out = append(out, "'"+loaded+"'")
	}
	return strings.Join(out, ", ")
}

func attr(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
