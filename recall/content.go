package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
)

// DefaultLimit 是 rctx 未指定条数时召回源的默认条数，
// 保证配置驱动的 Pipeline 不设 Limit 时查询仍然有界。
const DefaultLimit = 20

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户喜欢具有某些类型/关键词的电影，推荐具有相似内容特征的其他电影"。
//
// 召回条件：
//   - 类型命中画像的 Top-N 类型（权重降序，同权重按字典序，保证可复现）
//   - 排除画像中已"喜欢"的电影
//   - 必须有海报（质量门槛）
//   - 超额拉取 Limit × OverFetch 个候选，留给打分后截断
//
// 画像为空时返回空结果，由上层降级为冷启动。
type ContentRecall struct {
	Catalog core.MovieCatalog

	// TopGenreCount 是参与召回的画像 Top 类型数；<= 0 时默认 3。
	TopGenreCount int

	// OverFetch 是超额拉取倍数；<= 0 时默认 3。
	OverFetch int
}

func (r *ContentRecall) Name() string        { return "recall.content" }
func (r *ContentRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *ContentRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || rctx == nil || rctx.Profile.Empty() {
		return nil, nil
	}

	topGenreCount := r.TopGenreCount
	if topGenreCount <= 0 {
		topGenreCount = 3
	}
	overFetch := r.OverFetch
	if overFetch <= 0 {
		overFetch = 3
	}

	topGenres := rctx.Profile.TopGenres(topGenreCount)
	if len(topGenres) == 0 {
		return nil, nil
	}

	limit := rctx.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	candidates, err := r.Catalog.FindMovies(ctx, core.MovieQuery{
		ExcludeIDs:    rctx.Profile.LikedMovieIDs,
		AnyGenre:      topGenres,
		RequirePoster: true,
		Limit:         limit * overFetch,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, m := range candidates {
		if m == nil {
			continue
		}
		it := core.NewItem(m)
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
