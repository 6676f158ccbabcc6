package isd

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Sequence 是按时间排列的 ISD 实例集合。
type Sequence struct {
	Root      *Element
	Lang      string
	Instances []*Instance

	// 未解析的 tts:extent 与 ttp:cellResolution，缺省为空。
	ExtentSpec         string
	CellResolutionSpec string
}

// Instance 是一个时间片的 ISD；Err 非空表示该实例的时间属性无法解析。
type Instance struct {
	Element *Element
	Begin   time.Duration
	End     time.Duration
	Err     error
}

// ReadSequence 解析 isd:sequence 文档并为每个实例解析样式引用。
func ReadSequence(r io.Reader) (*Sequence, error) {
	root, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if !root.Is(NameSequence) {
		return nil, fmt.Errorf("根元素应为 isd:sequence，实际为 {%s}%s", root.Name.Space, root.Name.Local)
	}
	seq := &Sequence{Root: root}
	seq.Lang, _ = root.Attr(NamespaceXML, "lang")
	seq.ExtentSpec, _ = root.Attr(NamespaceStyling, "extent")
	seq.CellResolutionSpec, _ = root.Attr(NamespaceParameter, "cellResolution")
	for _, c := range root.Elements() {
		if !c.Is(NameInstance) {
			continue
		}
		seq.Instances = append(seq.Instances, newInstance(c))
	}
	return seq, nil
}

func newInstance(el *Element) *Instance {
	inst := &Instance{Element: el}
	ResolveStyles(el)
	if v, ok := el.Attr("", "begin"); ok {
		inst.Begin, inst.Err = ParseClock(v)
	}
	if v, ok := el.Attr("", "end"); ok && inst.Err == nil {
		inst.End, inst.Err = ParseClock(v)
	} else if !ok {
		inst.End = time.Duration(math.MaxInt64)
	}
	if inst.Err == nil && inst.End < inst.Begin {
		inst.Err = fmt.Errorf("实例结束时间 %s 早于开始时间 %s", inst.End, inst.Begin)
	}
	return inst
}

// ParseClock 解析时钟值：偏移形式（"1.5s"、"1500ms"、"2m"、"1h"）或
// 完整形式（"hh:mm:ss" 与 "hh:mm:ss.fff"）。帧与刻度单位不受支持。
func ParseClock(v string) (time.Duration, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, fmt.Errorf("时间值为空")
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return 0, fmt.Errorf("无法解析时间值 %q", v)
		}
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		sec, err3 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil || err3 != nil || m >= 60 || sec >= 60 {
			return 0, fmt.Errorf("无法解析时间值 %q", v)
		}
		total := float64(h)*3600 + float64(m)*60 + sec
		return time.Duration(math.Round(total * float64(time.Second))), nil
	}
	for _, u := range []struct {
		suffix string
		scale  time.Duration
	}{{"ms", time.Millisecond}, {"h", time.Hour}, {"m", time.Minute}, {"s", time.Second}} {
		if num, ok := strings.CutSuffix(s, u.suffix); ok {
			f, err := strconv.ParseFloat(num, 64)
			if err != nil || f < 0 {
				return 0, fmt.Errorf("无法解析时间值 %q", v)
			}
			return time.Duration(math.Round(f * float64(u.scale))), nil
		}
	}
	return 0, fmt.Errorf("不支持的时间单位 %q", v)
}
