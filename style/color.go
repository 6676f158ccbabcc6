package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"transparent": {0, 0, 0, 0},
	"black":       {0, 0, 0, 255},
	"silver":      {192, 192, 192, 255},
	"gray":        {128, 128, 128, 255},
	"white":       {255, 255, 255, 255},
	"maroon":      {128, 0, 0, 255},
	"red":         {255, 0, 0, 255},
	"purple":      {128, 0, 128, 255},
	"fuchsia":     {255, 0, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"green":       {0, 128, 0, 255},
	"lime":        {0, 255, 0, 255},
	"olive":       {128, 128, 0, 255},
	"yellow":      {255, 255, 0, 255},
	"navy":        {0, 0, 128, 255},
	"blue":        {0, 0, 255, 255},
	"teal":        {0, 128, 128, 255},
	"aqua":        {0, 255, 255, 255},
	"cyan":        {0, 255, 255, 255},
}

// ParseColor 解析 TTML 颜色：命名颜色、#rrggbb、#rrggbbaa、rgb()、rgba()。
func ParseColor(s string) (color.NRGBA, error) {
	v, err := ParseValue(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	terms, err := v.Terms()
	if err != nil || len(terms) != 1 {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidValue, s)
	}
	t := terms[0]
	switch {
	case t.Ident != nil:
		if c, ok := namedColors[strings.ToLower(*t.Ident)]; ok {
			return c, nil
		}
	case t.Color != nil:
		return parseHexColor(*t.Color)
	case t.Func != nil:
		return parseColorFunc(t.Func)
	}
	return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidValue, s)
}

func parseHexColor(h string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(h, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidValue, h)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidValue, h)
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

func parseColorFunc(f *Func) (color.NRGBA, error) {
	name := strings.ToLower(f.Name)
	want := 3
	if name == "rgba" {
		want = 4
	} else if name != "rgb" {
		return color.NRGBA{}, fmt.Errorf("%w: color function %s", ErrInvalidValue, f.Name)
	}
	if len(f.Args) != want {
		return color.NRGBA{}, fmt.Errorf("%w: %s expects %d components", ErrInvalidValue, f.Name, want)
	}
	comps := [4]uint8{255, 255, 255, 255}
	for i, a := range f.Args {
		if a.Number == nil {
			return color.NRGBA{}, fmt.Errorf("%w: %s component %q", ErrInvalidValue, f.Name, a.Text())
		}
		n, err := strconv.Atoi(*a.Number)
		if err != nil || n < 0 || n > 255 {
			return color.NRGBA{}, fmt.Errorf("%w: %s component %q", ErrInvalidValue, f.Name, *a.Number)
		}
		comps[i] = uint8(n)
	}
	return color.NRGBA{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
}

// FormatColor 返回 #rrggbb 形式与 0..1 的不透明度。
func FormatColor(c color.NRGBA) (string, float64) {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), float64(c.A) / 255
}
