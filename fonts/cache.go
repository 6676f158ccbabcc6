package fonts

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/ByLCY/isdframe/geom"
)

// DefaultFamilies 是未声明字体族时使用的列表。
var DefaultFamilies = []string{"default"}

// Options 配置字体缓存。
type Options struct {
	Files           []string // 额外字体文件（--font）
	Directories     []string // 扫描的字体目录（--font-directory）
	DefaultFamilies []string
	Logger          *log.Logger
}

// Cache 是按 Key 读穿的字体缓存，可并发使用。
type Cache struct {
	logger   *log.Logger
	defaults []string

	mu      sync.Mutex
	faces   map[Key]*Face
	sources map[string]map[Variant]string // 小写族名 -> 变体 -> 文件路径
	names   map[string]string             // 小写族名 -> 原始族名

	group singleflight.Group
}

// NewCache 创建缓存并登记给定字体文件与目录中的字体；此处只记录路径，不读取文件。
func NewCache(opts Options) (*Cache, error) {
	c := &Cache{
		logger:   opts.Logger,
		defaults: opts.DefaultFamilies,
		faces:    map[Key]*Face{},
		sources:  map[string]map[Variant]string{},
		names:    map[string]string{},
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if len(c.defaults) == 0 {
		c.defaults = DefaultFamilies
	}
	for _, f := range opts.Files {
		if _, err := os.Stat(f); err != nil {
			return nil, fmt.Errorf("字体文件 %s 不可用: %w", f, err)
		}
		c.register(f)
	}
	for _, dir := range opts.Directories {
		files, err := discover(dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			c.register(f)
		}
	}
	return c, nil
}

func (c *Cache) register(path string) {
	family, v := describeFile(path)
	lower := strings.ToLower(family)
	if c.sources[lower] == nil {
		c.sources[lower] = map[Variant]string{}
		c.names[lower] = family
	}
	if _, dup := c.sources[lower][v]; !dup {
		c.sources[lower][v] = path
	}
	c.logger.Debug("registered font", "family", family, "bold", v.Bold, "italic", v.Italic, "path", path)
}

// Families 返回已登记的外部字体族与内置字体族，按名称排序。
func (c *Cache) Families() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []string{FamilyGo, FamilyGoMono}
	for _, name := range c.names {
		out = append(out, name)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// MapFont 返回与 key 匹配的字体。族列表按顺序尝试，都不可用时退回内置字体。
func (c *Cache) MapFont(key Key) (Font, error) {
	if key.Families == "" {
		key.Families = strings.Join(c.defaults, ",")
	}
	c.mu.Lock()
	if f, ok := c.faces[key]; ok {
		c.mu.Unlock()
		return f, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(fmt.Sprintf("%+v", key), func() (any, error) {
		f, err := c.load(key)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if cached, ok := c.faces[key]; ok {
			return cached, nil
		}
		c.faces[key] = f
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Face), nil
}

// DefaultFont 返回默认族列表在给定轴与字号下的字体。
func (c *Cache) DefaultFont(axis geom.Axis, size geom.Extent) (Font, error) {
	return c.MapFont(NewKey(c.defaults, "", "", "", axis, size, nil))
}

func (c *Cache) load(key Key) (*Face, error) {
	want := Variant{Bold: key.Bold(), Italic: key.Italic()}
	for _, family := range key.FamilyList() {
		data, name, err := c.resolve(family, want)
		if err != nil {
			c.logger.Warn("font unavailable", "family", family, "err", err)
			continue
		}
		if data == nil {
			continue
		}
		return newFace(key, name, data, want)
	}
	c.logger.Debug("no requested family available, using built-in", "families", key.Families)
	data, err := Load(FamilyGoMono, want)
	if err != nil {
		return nil, err
	}
	return newFace(key, FamilyGoMono, data, want)
}

// resolve 查找族名对应的字体数据；外部字体优先于内置字体。未知族名返回 nil 数据。
func (c *Cache) resolve(family string, want Variant) ([]byte, string, error) {
	lower := strings.ToLower(strings.TrimSpace(family))
	c.mu.Lock()
	variants, ok := c.sources[lower]
	name := c.names[lower]
	c.mu.Unlock()
	if ok {
		path, ok := variants[want]
		if !ok {
			path = variants[Variant{}]
		}
		if path == "" {
			for _, p := range variants {
				path = p
				break
			}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("读取字体 %s 失败: %w", path, err)
		}
		return data, name, nil
	}
	if builtin, ok := embeddedFamily(lower); ok {
		data, err := Load(builtin, want)
		return data, builtin, err
	}
	return nil, "", nil
}
