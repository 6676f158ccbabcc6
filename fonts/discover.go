package fonts

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

var fontExtensions = map[string]bool{".ttf": true, ".otf": true, ".woff": true, ".woff2": true}

// discover 递归收集目录下的字体文件。
func discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && fontExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("扫描字体目录 %s 失败: %w", dir, err)
	}
	return files, nil
}

// describeFile 从文件名推断字体族与变体，例如 "Inter-BoldItalic.ttf" -> ("Inter", bold+italic)。
func describeFile(path string) (string, Variant) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	family, suffix := stem, ""
	if i := strings.LastIndexAny(stem, "-_"); i > 0 {
		family, suffix = stem[:i], stem[i+1:]
	}
	v := parseVariant(suffix)
	if suffix != "" && v == (Variant{}) && !isRegularName(suffix) {
		// 后缀不是样式名，整个文件名即族名
		family = stem
	}
	return family, v
}

func parseVariant(style string) Variant {
	s := strings.ToLower(style)
	var v Variant
	if strings.Contains(s, "bold") || strings.Contains(s, "black") || strings.Contains(s, "heavy") {
		v.Bold = true
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		v.Italic = true
	}
	return v
}

func isRegularName(s string) bool {
	switch strings.ToLower(s) {
	case "regular", "normal", "book", "roman", "medium", "light", "thin":
		return true
	}
	return false
}
