package core

import "github.com/rushteam/movierec/pkg/utils"

// Item 是推荐链路中的统一承载结构：候选电影、分数、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID     string
	Score  float64
	Movie  *Movie
	Labels map[string]utils.Label
}

// NewItem 从目录电影构造一个候选 Item。
func NewItem(movie *Movie) *Item {
	it := &Item{
		Movie:  movie,
		Labels: make(map[string]utils.Label),
	}
	if movie != nil {
		it.ID = movie.ID
	}
	return it
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// GetLabel 读取 Label。
func (it *Item) GetLabel(key string) (utils.Label, bool) {
	if it.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := it.Labels[key]
	return lbl, ok
}

// Movies 把 Item 列表还原为电影列表（保序），供对外接口返回。
func Movies(items []*Item) []*Movie {
	out := make([]*Movie, 0, len(items))
	for _, it := range items {
		if it == nil || it.Movie == nil {
			continue
		}
		out = append(out, it.Movie)
	}
	return out
}
