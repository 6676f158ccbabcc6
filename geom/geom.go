// Package geom 提供书写模式相关的轴映射（IPD/BPD）与基础几何类型。
package geom

import (
	"fmt"
	"strings"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// Axis 表示物理坐标轴。
type Axis int

const (
	AxisNone Axis = iota
	Horizontal
	Vertical
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "none"
	}
}

// Dimension 表示与书写模式相关的逻辑维度。
type Dimension int

const (
	IPD Dimension = iota // inline progression dimension
	BPD                  // block progression dimension
)

func (d Dimension) String() string {
	if d == BPD {
		return "bpd"
	}
	return "ipd"
}

// WritingMode 描述行内与块的推进方向。
type WritingMode int

const (
	LRTB WritingMode = iota // 默认：水平，从左到右、从上到下
	RLTB
	TBRL
	TBLR
)

// DefaultWritingMode 是未声明书写模式时使用的值。
const DefaultWritingMode = LRTB

var writingModeNames = map[string]WritingMode{
	"lrtb": LRTB,
	"lr":   LRTB,
	"rltb": RLTB,
	"rl":   RLTB,
	"tbrl": TBRL,
	"tb":   TBRL,
	"tblr": TBLR,
}

// ParseWritingMode 解析 tts:writingMode 关键字，不区分大小写。
func ParseWritingMode(s string) (WritingMode, bool) {
	wm, ok := writingModeNames[strings.ToLower(strings.TrimSpace(s))]
	return wm, ok
}

func (wm WritingMode) String() string {
	switch wm {
	case RLTB:
		return "rltb"
	case TBRL:
		return "tbrl"
	case TBLR:
		return "tblr"
	default:
		return "lrtb"
	}
}

// IsVertical 报告行内推进方向是否为竖直方向。
func (wm WritingMode) IsVertical() bool { return wm == TBRL || wm == TBLR }

// Axis 返回逻辑维度在该书写模式下对应的物理轴。
func (wm WritingMode) Axis(d Dimension) Axis {
	vertical := wm.IsVertical()
	if d == BPD {
		vertical = !vertical
	}
	if vertical {
		return Vertical
	}
	return Horizontal
}

// Extent 是物理宽高。
type Extent struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Along 返回给定物理轴上的长度；AxisNone 没有长度。
func (e Extent) Along(a Axis) (float64, error) {
	switch a {
	case Horizontal:
		return e.W, nil
	case Vertical:
		return e.H, nil
	default:
		return 0, fmt.Errorf("axis %s has no extent", a)
	}
}

// IPD 返回 e 在书写模式 wm 下的行内长度。
func (wm WritingMode) IPD(e Extent) float64 {
	if wm.IsVertical() {
		return e.H
	}
	return e.W
}

// BPD 返回 e 在书写模式 wm 下的块方向长度。
func (wm WritingMode) BPD(e Extent) float64 {
	if wm.IsVertical() {
		return e.W
	}
	return e.H
}

// Extent 由逻辑长度构造物理宽高。
func (wm WritingMode) Extent(ipd, bpd float64) Extent {
	if wm.IsVertical() {
		return Extent{W: bpd, H: ipd}
	}
	return Extent{W: ipd, H: bpd}
}

// Rect 是物理坐标中的位置与尺寸，原点在左上角。
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Extent() Extent { return Extent{W: r.W, H: r.H} }

// Bounds 转换为左下/右上形式的矩形。
func (r Rect) Bounds() rect.Rect {
	return rect.Rect{LLx: r.X, LLy: r.Y, URx: r.X + r.W, URy: r.Y + r.H}
}

// Translation 返回平移到 (x, y) 的变换矩阵。
func Translation(x, y float64) matrix.Matrix {
	return matrix.Identity.Translate(x, y)
}

// Offset 取出变换矩阵中的平移分量。
func Offset(m matrix.Matrix) (x, y float64) { return m[4], m[5] }
