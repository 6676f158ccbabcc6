package layout

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ByLCY/isdframe/isd"
)

// Engine 把一个 ISD 实例排成帧布局。
type Engine interface {
	Layout(seq *isd.Sequence, inst *isd.Instance) (*Frame, error)
}

// Factory 以给定选项创建布局引擎。
type Factory func(Options) (Engine, error)

// DefaultName 是默认的布局引擎名。
const DefaultName = "basic"

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		DefaultName: func(opts Options) (Engine, error) {
			p, err := NewProcessor(opts)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
	}
)

// Register 注册布局引擎，重名时覆盖。
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Lookup 按名称查找布局引擎。
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("未知的布局 %q（可用：%v）", name, namesLocked())
	}
	return f, nil
}

// Names 返回已注册的布局名，按字母排序。
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
