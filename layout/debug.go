package layout

import (
	"encoding/json"
	"math"
	"os"
	"time"
)

// Seconds 把时间换算为秒，无结束时间（math.MaxInt64）返回 -1。
func Seconds(d time.Duration) float64 {
	if d == time.Duration(math.MaxInt64) {
		return -1
	}
	return d.Seconds()
}

// NewResult 汇总各帧的区域树快照。
func NewResult(frames []*Frame) *Result {
	res := &Result{Frames: make([]FrameDebug, 0, len(frames))}
	for _, f := range frames {
		if f == nil {
			continue
		}
		res.Extent = f.Extent
		res.Frames = append(res.Frames, FrameDebug{
			Begin:   Seconds(f.Begin),
			End:     Seconds(f.End),
			Regions: f.Regions,
			Areas:   f.Tree.Snapshot(f.Root),
		})
	}
	return res
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
