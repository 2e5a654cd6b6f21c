package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// ratedSnapshotKey 是评分快照在 RecommendContext.Params 中的缓存键。
const ratedSnapshotKey = "filter.rated.snapshot"

// RatedFilter 是已评分过滤器，过滤掉用户评分过的电影（任意分值）。
//
// 它的排除范围比画像的 LikedMovieIDs 更宽：用户打过低分的电影
// 同样不应再次出现在推荐结果里。
//
// 过滤器自身无状态，可放进长期存活的 Pipeline 并发复用：
// 评分快照缓存在请求级的 RecommendContext.Params 上，
// 同一请求内只加载一次，跨请求自然失效，始终读到最新评分。
type RatedFilter struct {
	Ratings core.RatingStore
}

// NewRatedFilter 创建一个已评分过滤器。
func NewRatedFilter(ratings core.RatingStore) *RatedFilter {
	return &RatedFilter{Ratings: ratings}
}

func (f *RatedFilter) Name() string {
	return "filter.rated"
}

func (f *RatedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" || f.Ratings == nil {
		return false, nil
	}

	rated, ok := rctx.Params[ratedSnapshotKey].(map[string]struct{})
	if !ok {
		ratings, err := f.Ratings.FindRatings(ctx, rctx.UserID, 0)
		if err != nil {
			return false, err
		}
		rated = make(map[string]struct{}, len(ratings))
		for _, r := range ratings {
			if r != nil {
				rated[r.MovieID] = struct{}{}
			}
		}
		if rctx.Params == nil {
			rctx.Params = make(map[string]any, 1)
		}
		rctx.Params[ratedSnapshotKey] = rated
	}

	_, ok = rated[item.ID]
	return ok, nil
}
