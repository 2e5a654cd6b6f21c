package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// QualityFilter 是质量过滤器：过滤掉无海报的电影，
// 可选地要求年份不早于 MinYear。
//
// 目录查询通常已带这些条件；本过滤器用于候选来源不可控的场景
// （例如多路 fanout 合并后的兜底检查）。
type QualityFilter struct {
	// MinYear 大于 0 时要求 Year >= MinYear。
	MinYear int
}

func (f *QualityFilter) Name() string {
	return "filter.quality"
}

func (f *QualityFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || item.Movie == nil {
		return true, nil
	}
	if !item.Movie.HasPoster() {
		return true, nil
	}
	if f.MinYear > 0 && item.Movie.Year < f.MinYear {
		return true, nil
	}
	return false, nil
}
