package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
)

// DefaultMinYear 是冷启动的时效下限：只推荐相对较新的电影。
const DefaultMinYear = 2015

// PopularRecall 是热门召回源，冷启动（cold-start）路径的实现。
//
// 返回用户未评分过的热门新片：
//   - 排除用户评分过的全部电影（任意分值，比画像的"喜欢"集合更宽）
//   - 必须有海报
//   - 年份 >= MinYear
//   - 按热度降序，热度相同按年份降序
//
// Ratings 为空或用户无评分时退化为纯热门榜。
type PopularRecall struct {
	Catalog core.MovieCatalog
	Ratings core.RatingStore

	// MinYear 是年份下限；<= 0 时默认 DefaultMinYear。
	MinYear int
}

func (r *PopularRecall) Name() string        { return "recall.popular" }
func (r *PopularRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *PopularRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *PopularRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	n := rctx.Limit
	if n <= 0 {
		n = DefaultLimit
	}
	return r.Fetch(ctx, rctx.UserID, n, nil)
}

// Fetch 返回最多 n 部热门候选，排除用户已评分的电影与 extraExclude 中的 ID。
// extraExclude 供补位场景使用：内容召回已产出的结果不应在补位中重复出现。
func (r *PopularRecall) Fetch(
	ctx context.Context,
	userID core.UserID,
	n int,
	extraExclude map[string]struct{},
) ([]*core.Item, error) {
	if r.Catalog == nil || n <= 0 {
		return nil, nil
	}

	exclude := make(map[string]struct{}, len(extraExclude))
	for id := range extraExclude {
		exclude[id] = struct{}{}
	}

	// 已评分的电影一律排除（任意分值）
	if r.Ratings != nil && userID != "" {
		rated, err := r.Ratings.FindRatings(ctx, userID, 0)
		if err != nil {
			return nil, err
		}
		for _, rt := range rated {
			if rt != nil {
				exclude[rt.MovieID] = struct{}{}
			}
		}
	}

	minYear := r.MinYear
	if minYear <= 0 {
		minYear = DefaultMinYear
	}

	movies, err := r.Catalog.FindMovies(ctx, core.MovieQuery{
		ExcludeIDs:    exclude,
		RequirePoster: true,
		MinYear:       minYear,
		Sort:          core.SortPopularity,
		Limit:         n,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(movies))
	for _, m := range movies {
		if m == nil {
			continue
		}
		it := core.NewItem(m)
		it.Score = m.Popularity
		it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
