package style

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/isdframe/geom"
)

// ErrInvalidValue 表示样式值无法解析或不在允许范围内。
var ErrInvalidValue = errors.New("style: invalid value")

// Unit 表示长度的原始单位。
type Unit int

const (
	UnitNone    Unit = iota // 无单位数字
	UnitPX                  // 像素
	UnitPercent             // 百分比
	UnitEM                  // 相对当前字号
	UnitCell                // 相对单元格网格
	UnitRW                  // 外部渲染宽度的 1%
	UnitRH                  // 外部渲染高度的 1%
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPercent:
		return "%"
	case UnitEM:
		return "em"
	case UnitCell:
		return "c"
	case UnitRW:
		return "rw"
	case UnitRH:
		return "rh"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'g', -1, 64) + UnitToString(l.Unit)
}

// CellResolution 是单元格网格的列数与行数。
type CellResolution struct {
	Columns int
	Rows    int
}

// DefaultCellResolution 是未声明时的网格。
var DefaultCellResolution = CellResolution{Columns: 32, Rows: 15}

// Context 提供长度解析所需的参考尺寸。
type Context struct {
	// External 是外部渲染尺寸（根容器），用于单元格与 rw/rh。
	External       geom.Extent
	CellResolution CellResolution
	// FontSize 是 em 的基准。
	FontSize geom.Extent
	// Reference 是百分比的参考尺寸；为零时每个百分点按 0.01 计算。
	Reference geom.Extent
}

// ParseLength parses a single length token such as "12px", "50%", "1.5c".
func ParseLength(value string) (Length, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Length{}, fmt.Errorf("%w: empty length", ErrInvalidValue)
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"em", UnitEM}, {"rw", UnitRW}, {"rh", UnitRH}, {"%", UnitPercent}, {"c", UnitCell}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSuffix(v, suf.s)
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("%w: length %q", ErrInvalidValue, value)
	}
	if unit == UnitNone && f != 0 {
		return Length{}, fmt.Errorf("%w: length %q has no unit", ErrInvalidValue, value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// ParseLengths 解析空白分隔的长度列表，例如 "1920px 1080px"。
func ParseLengths(value string) ([]Length, error) {
	v, err := ParseValue(value)
	if err != nil {
		return nil, err
	}
	terms, err := v.Terms()
	if err != nil {
		return nil, err
	}
	out := make([]Length, 0, len(terms))
	for _, t := range terms {
		if t.Number == nil {
			return nil, fmt.Errorf("%w: %q is not a length", ErrInvalidValue, t.Text())
		}
		l, err := ParseLength(*t.Number)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Resolve 把长度换算为 axis 方向上的像素值。
func (l Length) Resolve(ctx Context, axis geom.Axis) (float64, error) {
	if axis != geom.Horizontal && axis != geom.Vertical {
		return 0, fmt.Errorf("%w: cannot resolve %s on axis %s", ErrInvalidValue, l, axis)
	}
	pick := func(e geom.Extent) float64 {
		if axis == geom.Horizontal {
			return e.W
		}
		return e.H
	}
	switch l.Unit {
	case UnitPX, UnitNone:
		return l.Value, nil
	case UnitPercent:
		ref := pick(ctx.Reference)
		if ref == 0 {
			ref = 1
		}
		return l.Value / 100 * ref, nil
	case UnitEM:
		return l.Value * pick(ctx.FontSize), nil
	case UnitCell:
		cr := ctx.CellResolution
		if cr.Columns <= 0 || cr.Rows <= 0 {
			cr = DefaultCellResolution
		}
		if axis == geom.Horizontal {
			return l.Value * ctx.External.W / float64(cr.Columns), nil
		}
		return l.Value * ctx.External.H / float64(cr.Rows), nil
	case UnitRW:
		return l.Value / 100 * ctx.External.W, nil
	case UnitRH:
		return l.Value / 100 * ctx.External.H, nil
	}
	return 0, fmt.Errorf("%w: unknown unit in %s", ErrInvalidValue, l)
}

// ParseExtent 解析 "W H" 形式的像素尺寸。
func ParseExtent(value string) (geom.Extent, error) {
	ls, err := ParseLengths(value)
	if err != nil {
		return geom.Extent{}, err
	}
	if len(ls) != 2 || ls[0].Unit != UnitPX || ls[1].Unit != UnitPX {
		return geom.Extent{}, fmt.Errorf("%w: extent %q must be two px lengths", ErrInvalidValue, value)
	}
	return geom.Extent{W: ls[0].Value, H: ls[1].Value}, nil
}

// ParseCellResolution 解析 "columns rows"。
func ParseCellResolution(value string) (CellResolution, error) {
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return CellResolution{}, fmt.Errorf("%w: cell resolution %q", ErrInvalidValue, value)
	}
	c, err1 := strconv.Atoi(fields[0])
	r, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || c <= 0 || r <= 0 {
		return CellResolution{}, fmt.Errorf("%w: cell resolution %q", ErrInvalidValue, value)
	}
	return CellResolution{Columns: c, Rows: r}, nil
}
