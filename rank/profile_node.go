// Package rank 提供排序 Node：对候选集打分并排序。
package rank

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
)

// Weights 是内容打分的权重配置。
// 类型命中的权重是关键词的 2 倍：类型是比单个关键词更强的口味信号。
// 热度只是很小的加成项，用于近似同分时的排序倾向，不能主导结果。
type Weights struct {
	Genre      float64
	Keyword    float64
	Popularity float64
}

// DefaultWeights 返回默认权重。
func DefaultWeights() Weights {
	return Weights{
		Genre:      2.0,
		Keyword:    1.0,
		Popularity: 0.01,
	}
}

// Score 计算电影相对用户画像的内容匹配分：
//
//	score = Σ genreWeight[g] × Genre（g 命中画像类型）
//	      + Σ keywordWeight[k] × Keyword（k 命中画像关键词）
//	      + popularity × Popularity
//
// 画像中没有的类型/关键词不参与计分（权重表无零填充）。
// 画像为空时只剩热度项。
func (w Weights) Score(movie *core.Movie, p *core.UserProfile) float64 {
	if movie == nil {
		return 0
	}
	var score float64
	if p != nil {
		for _, g := range movie.Genres {
			if wt, ok := p.GenreWeights[g]; ok {
				score += wt * w.Genre
			}
		}
		for _, k := range movie.Keywords {
			if wt, ok := p.KeywordWeights[k]; ok {
				score += wt * w.Keyword
			}
		}
	}
	score += movie.Popularity * w.Popularity
	return score
}

// ProfileRank 按用户画像对候选电影打分并降序排序。
//
// 排序是确定性的：分数降序，同分按热度降序，再同按电影 ID 升序。
// 次级排序刻意固定，保证同样的评分状态下两次请求输出一致。
type ProfileRank struct {
	// Weights 为零值时使用 DefaultWeights。
	Weights Weights
}

func (n *ProfileRank) Name() string        { return "rank.profile" }
func (n *ProfileRank) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ProfileRank) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	w := n.Weights
	if w == (Weights{}) {
		w = DefaultWeights()
	}

	var p *core.UserProfile
	if rctx != nil {
		p = rctx.Profile
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.Score = w.Score(it.Movie, p)
		it.PutLabel("rank_model", utils.Label{
			Value:  "profile",
			Source: "rank",
		})
		it.PutLabel("rank_score", utils.Label{
			Value:  strconv.FormatFloat(it.Score, 'f', 4, 64),
			Source: "rank",
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		pa, pb := popularity(a), popularity(b)
		if pa != pb {
			return pa > pb
		}
		return a.ID < b.ID
	})

	return items, nil
}

func popularity(it *core.Item) float64 {
	if it == nil || it.Movie == nil {
		return 0
	}
	return it.Movie.Popularity
}
