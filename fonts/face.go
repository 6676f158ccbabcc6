package fonts

import (
	"fmt"
	"image/color"
	"sync"
	"unicode/utf8"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/isdframe/geom"
)

// mmPerPt 与 canvas 内部使用的换算一致：字号以 pt 给出，度量以 mm 返回。
const mmPerPt = 25.4 / 72

// Face wraps a canvas font face sized so that measurements come back in px.
type Face struct {
	key    Key
	family string
	style  canvas.FontStyle
	fam    *canvas.FontFamily
	size   float64

	mu     sync.Mutex
	face   *canvas.FontFace
	scaleX float64
}

var _ Font = (*Face)(nil)

func newFace(key Key, family string, data []byte, v Variant) (*Face, error) {
	style := canvasStyle(v)
	fam := canvas.NewFontFamily(family)
	if err := fam.LoadFont(data, 0, style); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", family, err)
	}
	size := key.Size.H
	if size <= 0 {
		size = key.Size.W
	}
	if size <= 0 {
		return nil, fmt.Errorf("字号无效: %gx%g", key.Size.W, key.Size.H)
	}
	scaleX := 1.0
	if key.Size.W > 0 {
		scaleX = key.Size.W / size
	}
	return &Face{
		key:    key,
		family: family,
		style:  style,
		fam:    fam,
		size:   size,
		// 以 size pt 创建字体面，度量结果（mm）除以 mmPerPt 即为 size px 下的 px。
		face:   fam.Face(size, canvas.Black, style, canvas.FontNormal),
		scaleX: scaleX,
	}, nil
}

func canvasStyle(v Variant) canvas.FontStyle {
	style := canvas.FontRegular
	if v.Bold {
		style = canvas.FontBold
	}
	if v.Italic {
		style |= canvas.FontItalic
	}
	return style
}

func (f *Face) Key() Key       { return f.key }
func (f *Face) Family() string { return f.family }

// Canvas returns the underlying canvas face, for backends drawing with canvas.
func (f *Face) Canvas() *canvas.FontFace { return f.face }

// Style returns the canvas style the face was loaded with.
func (f *Face) Style() canvas.FontStyle { return f.style }

// Colored returns a canvas face of the same family and size that fills with c.
// One px of the key size maps to one pt of the returned face.
func (f *Face) Colored(c color.Color) *canvas.FontFace {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fam.Face(f.size, c, f.style, canvas.FontNormal)
}

// Advance measures text along the key axis. Vertical advances use one em per
// character since no vertical metrics are loaded.
func (f *Face) Advance(text string) float64 {
	if text == "" {
		return 0
	}
	if f.key.Axis == geom.Vertical {
		return float64(utf8.RuneCountInString(text)) * f.key.Size.H
	}
	f.mu.Lock()
	w := f.face.TextWidth(text)
	f.mu.Unlock()
	return w / mmPerPt * f.scaleX
}

func (f *Face) Ascent() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.face.Metrics().Ascent / mmPerPt
}

func (f *Face) Descent() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.face.Metrics().Descent / mmPerPt
}
