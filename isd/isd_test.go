package isd

import (
	"strings"
	"testing"
	"time"
)

const sampleSequence = `<?xml version="1.0" encoding="UTF-8"?>
<isd:sequence xmlns:isd="http://www.w3.org/ns/ttml#isd"
  xmlns:tts="http://www.w3.org/ns/ttml#styling"
  xmlns:ttp="http://www.w3.org/ns/ttml#parameter"
  xmlns="http://www.w3.org/ns/ttml"
  ttp:cellResolution="32 15" tts:extent="1920px 1080px" xml:lang="en">
  <isd:isd begin="0s" end="00:00:02.500">
    <isd:css xml:id="c1" tts:color="white" tts:fontSize="40px"/>
    <isd:css xml:id="c2" tts:origin="10% 80%" tts:extent="80% 15%"/>
    <isd:region xml:id="r1" css="c2">
      <body><div><p css="c1">Hello <span>big</span><br/>world</p></div></body>
    </isd:region>
  </isd:isd>
  <isd:isd begin="3x" end="4s"/>
</isd:sequence>`

func TestReadSequence(t *testing.T) {
	seq, err := ReadSequence(strings.NewReader(sampleSequence))
	if err != nil {
		t.Fatalf("ReadSequence 失败: %v", err)
	}
	if seq.Lang != "en" {
		t.Fatalf("xml:lang 错误: %q", seq.Lang)
	}
	if seq.ExtentSpec != "1920px 1080px" || seq.CellResolutionSpec != "32 15" {
		t.Fatalf("sequence 参数错误: %q %q", seq.ExtentSpec, seq.CellResolutionSpec)
	}
	if len(seq.Instances) != 2 {
		t.Fatalf("实例数错误: %d", len(seq.Instances))
	}
	first := seq.Instances[0]
	if first.Err != nil || first.Begin != 0 || first.End != 2500*time.Millisecond {
		t.Fatalf("实例时间错误: %+v", first)
	}
	if seq.Instances[1].Err == nil {
		t.Fatalf("不支持的时间单位应记录在实例上")
	}

	region := first.Element.Elements()[2]
	if !region.Is(NameRegion) || region.ID() != "r1" {
		t.Fatalf("region 解析错误: %s", region)
	}
	if v, ok := region.Style("extent", false); !ok || v != "80% 15%" {
		t.Fatalf("region 样式未挂接: %q %v", v, ok)
	}
	p := region.Elements()[0].Elements()[0].Elements()[0]
	if !p.Is(NameP) {
		t.Fatalf("期望 p，实际 %s", p)
	}
	if len(p.Children) != 4 {
		t.Fatalf("p 子节点数错误: %d", len(p.Children))
	}
	span := p.Children[1]
	if v, ok := span.Style("color", true); !ok || v != "white" {
		t.Fatalf("span 应继承 p 的颜色: %q %v", v, ok)
	}
	if _, ok := span.Style("color", false); ok {
		t.Fatalf("不继承时 span 不应有颜色")
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string]time.Duration{
		"1.5s":         1500 * time.Millisecond,
		"1500ms":       1500 * time.Millisecond,
		"2m":           2 * time.Minute,
		"1h":           time.Hour,
		"00:01:02":     62 * time.Second,
		"01:00:00.250": time.Hour + 250*time.Millisecond,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		if err != nil || got != want {
			t.Fatalf("ParseClock(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "abc", "12f", "00:61:00", "-1s"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q) 应失败", bad)
		}
	}
}

func TestDecodeRejectsEmpty(t *testing.T) {
	if _, err := Decode(strings.NewReader("")); err == nil {
		t.Fatalf("空文档应失败")
	}
	if _, err := ReadSequence(strings.NewReader(`<tt xmlns="http://www.w3.org/ns/ttml"/>`)); err == nil {
		t.Fatalf("非 sequence 根应失败")
	}
}
