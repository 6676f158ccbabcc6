package layout

// 该文件定义布局结果，供渲染、调试 JSON 与帧索引共用。

import (
	"time"

	"github.com/ByLCY/isdframe/area"
	"github.com/ByLCY/isdframe/geom"
)

// Frame 是一个 ISD 实例的布局结果。
type Frame struct {
	Begin  time.Duration
	End    time.Duration
	Extent geom.Extent
	Tree   *area.Tree
	// Root 是画布区域。
	Root    area.ID
	Regions []Region
	// Lines 按阅读顺序列出生成的行区域。
	Lines []area.ID
}

// Region 记录帧中生效的区域矩形（像素，相对根容器）。
type Region struct {
	ID   string    `json:"id"`
	Rect geom.Rect `json:"rect"`
}

// Result 是整个序列的布局结果，只用于调试输出。
type Result struct {
	Extent geom.Extent  `json:"extent"`
	Frames []FrameDebug `json:"frames"`
}

// FrameDebug 是帧布局的可序列化视图。
type FrameDebug struct {
	Begin   float64        `json:"begin"` // 秒
	End     float64        `json:"end"`   // 秒，无结束时间时为 -1
	Regions []Region       `json:"regions"`
	Areas   *area.Snapshot `json:"areas"`
}
