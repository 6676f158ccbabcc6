// Package canvasrenderer 通过 github.com/tdewolff/canvas 把区域树输出为 PDF。
package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/isdframe/area"
	"github.com/ByLCY/isdframe/fonts"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/layout"
	"github.com/ByLCY/isdframe/renderer"
)

// Name 是 PDF 后端的注册名，同时是输出扩展名。
const Name = "pdf"

// mmPerPx 把像素映射为 1pt，与 fonts.Face 的字号约定一致。
const mmPerPx = 25.4 / 72

func init() {
	renderer.Register(Name, func(opts renderer.Options) (renderer.Renderer, error) {
		return NewRenderer(opts), nil
	})
}

// Renderer 每帧输出一页 PDF。
type Renderer struct {
	logger *log.Logger
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 创建 PDF 渲染器。
func NewRenderer(opts renderer.Options) *Renderer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Renderer{logger: opts.Logger}
}

func (r *Renderer) Format() string { return Name }

// Render 将帧布局绘制为单页 PDF。
func (r *Renderer) Render(f *layout.Frame) (*renderer.Frame, error) {
	if f == nil || f.Tree == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	w, h := toMm(f.Extent.W), toMm(f.Extent.H)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %gx%g", f.Extent.W, f.Extent.H)
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, w, h, nil)
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	d := &drawer{ctx: ctx, tree: f.Tree}
	d.draw(f.Root)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}

	out := renderer.NewFrame(f, Name)
	out.Content = buf.Bytes()
	r.logger.Debug("rendered frame", "begin", f.Begin, "end", f.End, "bytes", buf.Len())
	return out, nil
}

// drawer 以像素游标遍历区域树，绘制时再换算为毫米。
type drawer struct {
	ctx  *canvas.Context
	tree *area.Tree
	x, y float64
}

func (d *drawer) children(id area.ID) {
	for _, c := range d.tree.Children(id) {
		d.draw(c)
	}
}

func (d *drawer) draw(id area.ID) {
	n := d.tree.Node(id)
	switch n.Kind {
	case area.Canvas:
		d.children(id)

	case area.Viewport:
		if n.Background != nil {
			d.rect(d.x+n.Rect.X, d.y+n.Rect.Y, n.Rect.Extent(), *n.Background)
		}
		d.children(id)

	case area.Reference:
		if d.tree.IsRootReference(id) {
			bg := color.NRGBA{A: 255}
			if n.Background != nil {
				bg = *n.Background
			}
			d.rect(0, 0, n.Rect.Extent(), bg)
			d.children(id)
			return
		}
		tx, ty := geom.Offset(n.Transform)
		x, y := d.x, d.y
		d.x += tx
		d.y += ty
		d.children(id)
		d.x, d.y = x, y

	case area.Block:
		x, y := d.x, d.y
		d.x += n.Rect.X
		d.y += n.Rect.Y
		d.children(id)
		d.x, d.y = x, y

	case area.Line:
		d.line(id, n)

	case area.Glyph, area.Space, area.InlineFiller:
		panic(fmt.Sprintf("pdf: inline area %s outside of a line", n.Kind))

	default:
		panic(fmt.Sprintf("pdf: unknown area kind %s", n.Kind))
	}
}

// placement 是一个字形在画布上的像素位置，y 为基线。
type placement struct {
	x, y float64
	text string
}

// place 计算行内字形的位置：子节点从行首依次排列，每个推进自身的 IPD。
func (d *drawer) place(id area.ID, n *area.Node, ascent float64) []placement {
	var out []placement
	x := d.x + n.Rect.X
	baseline := d.y + n.Rect.Y + ascent
	for _, c := range d.tree.Children(id) {
		cn := d.tree.Node(c)
		switch cn.Kind {
		case area.Glyph:
			if cn.Text != "" {
				out = append(out, placement{x: x, y: baseline, text: cn.Text})
			}
		case area.Space, area.InlineFiller:
		default:
			panic(fmt.Sprintf("pdf: unknown inline area kind %s", cn.Kind))
		}
		x += cn.IPD()
	}
	return out
}

// line 在基线处依次绘制字形，空白与填充只推进游标。
func (d *drawer) line(id area.ID, n *area.Node) {
	face, ascent := d.face(n.Style)
	for _, p := range d.place(id, n, ascent) {
		if face != nil {
			d.ctx.DrawText(toMm(p.x), toMm(p.y), canvas.NewTextLine(face, p.text, canvas.Left))
		}
	}
}

// face 返回行样式对应的着色字体面；非 canvas 字体无法绘制，返回 nil。
func (d *drawer) face(s area.LineStyle) (*canvas.FontFace, float64) {
	f, ok := s.Font.(*fonts.Face)
	if !ok || f == nil {
		return nil, 0
	}
	return f.Colored(s.Color), f.Ascent()
}

func (d *drawer) rect(x, y float64, e geom.Extent, c color.NRGBA) {
	d.ctx.SetFillColor(c)
	d.ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	d.ctx.DrawPath(toMm(x), toMm(y), canvas.Rectangle(toMm(e.W), toMm(e.H)))
}

func toMm(px float64) float64 { return px * mmPerPx }
