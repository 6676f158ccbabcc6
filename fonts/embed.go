package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体族名。
const (
	FamilyGo     = "Go"
	FamilyGoMono = "Go Mono"
)

var embedded = map[string]map[Variant][]byte{
	FamilyGo: {
		{}:                         goregular.TTF,
		{Bold: true}:               gobold.TTF,
		{Italic: true}:             goitalic.TTF,
		{Bold: true, Italic: true}: gobolditalic.TTF,
	},
	FamilyGoMono: {
		{}:                         gomono.TTF,
		{Bold: true}:               gomonobold.TTF,
		{Italic: true}:             gomonoitalic.TTF,
		{Bold: true, Italic: true}: gomonobolditalic.TTF,
	},
}

// genericFamilies 把 TTML 通用族名映射到内置字体。
var genericFamilies = map[string]string{
	"default":               FamilyGoMono,
	"monospace":             FamilyGoMono,
	"monospaceserif":        FamilyGoMono,
	"monospacesansserif":    FamilyGoMono,
	"sansserif":             FamilyGo,
	"serif":                 FamilyGo,
	"proportionalsansserif": FamilyGo,
	"proportionalserif":     FamilyGo,
	"go":                    FamilyGo,
	"go mono":               FamilyGoMono,
}

// Variant 是字体文件层面的样式变体。
type Variant struct {
	Bold   bool
	Italic bool
}

// Load 返回内置字体的字节数据，name 可写为 "embed:Go" 或直接 "Go Mono"。
func Load(name string, v Variant) ([]byte, error) {
	name = strings.TrimPrefix(name, "embed:")
	family, ok := embedded[name]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体族", name)
	}
	if data, ok := family[v]; ok {
		return data, nil
	}
	return family[Variant{}], nil
}

// embeddedFamily 返回通用族名或内置族名对应的内置字体族。
func embeddedFamily(name string) (string, bool) {
	f, ok := genericFamilies[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}
