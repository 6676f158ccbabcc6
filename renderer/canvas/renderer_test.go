package canvasrenderer

import (
	"bytes"
	"image/color"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/isdframe/area"
	"github.com/ByLCY/isdframe/fonts"
	"github.com/ByLCY/isdframe/geom"
	"github.com/ByLCY/isdframe/isd"
	"github.com/ByLCY/isdframe/layout"
	"github.com/ByLCY/isdframe/renderer"
)

const sequence = `<isd:sequence xmlns:isd="http://www.w3.org/ns/ttml#isd"
  xmlns:tts="http://www.w3.org/ns/ttml#styling" xmlns="http://www.w3.org/ns/ttml"
  tts:extent="640px 480px">
  <isd:isd begin="2s" end="3s">
    <isd:css xml:id="r" tts:origin="10% 50%" tts:extent="80% 40%" tts:backgroundColor="navy"/>
    <isd:css xml:id="p" tts:fontSize="24px" tts:color="white"/>
    <isd:region xml:id="bottom" css="r"><body><div><p css="p">你好 world</p></div></body></isd:region>
  </isd:isd>
</isd:sequence>`

func layoutFrame(t *testing.T) *layout.Frame {
	t.Helper()
	quiet := log.New(io.Discard)
	cache, err := fonts.NewCache(fonts.Options{Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}
	seq, err := isd.ReadSequence(strings.NewReader(sequence))
	if err != nil {
		t.Fatal(err)
	}
	proc, err := layout.NewProcessor(layout.Options{Fonts: cache, Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}
	f, err := proc.Layout(seq, seq.Instances[0])
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	return f
}

func TestRenderProducesPDF(t *testing.T) {
	f := layoutFrame(t)
	factory, err := renderer.Lookup(Name)
	if err != nil {
		t.Fatal(err)
	}
	r, err := factory(renderer.Options{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	if r.Format() != "pdf" {
		t.Fatalf("扩展名应为 pdf，实际 %q", r.Format())
	}
	out, err := r.Render(f)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if !bytes.HasPrefix(out.Content, []byte("%PDF")) {
		t.Fatalf("输出不是 PDF: %q", out.Content[:min(16, len(out.Content))])
	}
	if out.Begin != f.Begin || out.End != f.End || out.Extent != f.Extent {
		t.Fatalf("帧元数据不一致: %+v", out)
	}
	if len(out.Regions) != 1 || out.Regions[0].LLx != 64 {
		t.Fatalf("区域矩形不正确: %+v", out.Regions)
	}
}

func TestRenderRejectsEmptyFrame(t *testing.T) {
	r := NewRenderer(renderer.Options{})
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("空帧应当报错")
	}
	if _, err := r.Render(&layout.Frame{Tree: area.New()}); err == nil {
		t.Fatalf("零尺寸画布应当报错")
	}
}

func TestInlineOutsideLinePanics(t *testing.T) {
	tree := area.New()
	root := tree.NewCanvas(nil, geom.Extent{W: 10, H: 10})
	if err := tree.AddChild(root, tree.NewArea(area.Block, nil, geom.LRTB, geom.Rect{})); err != nil {
		t.Fatal(err)
	}
	tree.Node(tree.FirstChild(root)).Kind = area.Glyph

	defer func() {
		if recover() == nil {
			t.Fatalf("行外的行内区域应当 panic")
		}
	}()
	r := NewRenderer(renderer.Options{Logger: log.New(io.Discard)})
	_, _ = r.Render(&layout.Frame{Tree: tree, Root: root, Extent: geom.Extent{W: 10, H: 10}})
}

func TestColoredFaceKeepsSize(t *testing.T) {
	cache, err := fonts.NewCache(fonts.Options{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	font, err := cache.DefaultFont(geom.Horizontal, geom.Extent{W: 36, H: 36})
	if err != nil {
		t.Fatal(err)
	}
	face := font.(*fonts.Face)
	colored := face.Colored(color.NRGBA{R: 255, A: 255})
	// 字体面以 pt 计，绘制单位为 mm，两者与像素度量相差同一比例。
	got := colored.TextWidth("abc") / mmPerPx
	if want := face.Advance("abc"); math.Abs(got-want) > 1e-6 {
		t.Fatalf("着色字体宽度 %v，期望 %v", got, want)
	}
}

func TestToMm(t *testing.T) {
	if got := toMm(72); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("72px 应为 25.4mm，实际 %v", got)
	}
}

func TestCenteredLinePlacement(t *testing.T) {
	tree := area.New()
	root := tree.NewCanvas(nil, geom.Extent{W: 400, H: 100})
	block := tree.NewArea(area.Block, nil, geom.LRTB, geom.Rect{X: 10, Y: 5, W: 400})
	line := tree.NewArea(area.Line, nil, geom.LRTB, geom.Rect{W: 400, H: 30})
	filler := tree.NewArea(area.InlineFiller, nil, geom.LRTB, geom.Rect{W: 188, H: 30})
	glyph := tree.NewGlyph(nil, geom.LRTB, "ab", geom.Rect{W: 24, H: 30})
	for _, step := range [][2]area.ID{{root, block}, {block, line}, {line, filler}, {line, glyph}} {
		if err := tree.AddChild(step[0], step[1]); err != nil {
			t.Fatal(err)
		}
	}
	d := &drawer{tree: tree, x: 10, y: 5}
	got := d.place(line, tree.Node(line), 20)
	if len(got) != 1 {
		t.Fatalf("应只有一个字形，实际 %d", len(got))
	}
	if got[0].x != 198 || got[0].y != 25 || got[0].text != "ab" {
		t.Fatalf("居中字形位置错误: %+v", got[0])
	}
}
