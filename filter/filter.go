// Package filter 在排序前对候选库做规则过滤。
// 过滤器返回 true 表示该候选应被剔除（与保留语义相反，配置时注意）。
package filter

import (
	"github.com/chrisJoyceDS/SongSuggest/core"
)

// Filter 是过滤器的抽象接口，用于判断一条候选曲目是否应该被剔除。
// 返回 true 表示剔除，false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 track 是否应该被剔除
	ShouldFilter(track *core.Track) (bool, error)
}

// Apply 依次应用过滤器，返回保留行组成的新表（原表不变）。
// 单个过滤器出错时放过该候选（过滤是调优手段，不应让请求失败）。
func Apply(table *core.TrackTable, filters ...Filter) *core.TrackTable {
	if len(filters) == 0 || table.Len() == 0 {
		return table
	}

	out := core.NewTrackTable(table.Len())
	rows := table.Rows()
	for i := range rows {
		drop := false
		for _, f := range filters {
			ok, err := f.ShouldFilter(&rows[i])
			if err != nil {
				continue
			}
			if ok {
				drop = true
				break
			}
		}
		if !drop {
			out.Append(rows[i])
		}
	}
	return out
}
