// Package profile 构建用户口味画像：从高分评分历史聚合类型/关键词偏好。
package profile

import (
	"context"
	"sort"

	"github.com/rushteam/movierec/core"
)

// Builder 是画像构建器（Profile Builder）。
//
// 画像按请求重建、用完即弃：每次调用都重读最新评分，不缓存、无失效问题。
// 只依赖两个只读接口，便于用内存实现做单元测试。
type Builder struct {
	Ratings core.RatingStore
	Catalog core.MovieCatalog

	// LikedThreshold 是"喜欢"阈值；<= 0 时使用 core.DefaultLikedThreshold。
	LikedThreshold int
}

// NewBuilder 创建画像构建器。
func NewBuilder(ratings core.RatingStore, catalog core.MovieCatalog) *Builder {
	return &Builder{
		Ratings: ratings,
		Catalog: catalog,
	}
}

func (b *Builder) threshold() int {
	if b.LikedThreshold > 0 {
		return b.LikedThreshold
	}
	return core.DefaultLikedThreshold
}

// Build 构建用户画像。
//
// 算法：取用户评分 >= 阈值的全部评分，逐条解析到对应电影，
// 把电影的每个类型/关键词按 weight = 评分值 累加进权重表
// （同一类型跨多部喜欢的电影累加：5 部高分动作片 > 1 部）。
//
// 软失败：raw 不是合法用户 ID 时返回空画像而非报错，
// 下游据此自然降级为冷启动。悬挂引用（评分指向已删除电影）静默跳过。
// 除存储本身的错误外，本函数没有其他失败路径。
func (b *Builder) Build(ctx context.Context, raw string) (*core.UserProfile, error) {
	userID, err := core.ParseUserID(raw)
	if err != nil {
		return core.NewUserProfile(""), nil
	}
	return b.BuildFor(ctx, userID)
}

// BuildFor 为已校验的用户 ID 构建画像。
func (b *Builder) BuildFor(ctx context.Context, userID core.UserID) (*core.UserProfile, error) {
	p := core.NewUserProfile(userID)

	ratings, err := b.Ratings.FindRatings(ctx, userID, b.threshold())
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return p, nil
	}

	// 批量解析电影，减少存储往返
	ids := make([]string, 0, len(ratings))
	for _, r := range ratings {
		if r == nil {
			continue
		}
		ids = append(ids, r.MovieID)
	}
	movies, err := b.Catalog.FindMoviesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, r := range ratings {
		if r == nil {
			continue
		}
		movie, ok := movies[r.MovieID]
		if !ok || movie == nil {
			// 悬挂引用：评分指向的电影已不在目录中，跳过
			continue
		}
		p.AddLiked(movie, float64(r.Value))
	}

	return p, nil
}

// TopKeywords 返回画像中权重最高的 n 个关键词（权重降序，同权重按字典序）。
// 与 UserProfile.TopGenres 同一排序规则，供解释/调试输出使用。
func TopKeywords(p *core.UserProfile, n int) []string {
	if p == nil || n <= 0 || len(p.KeywordWeights) == 0 {
		return nil
	}
	kws := make([]string, 0, len(p.KeywordWeights))
	for k := range p.KeywordWeights {
		kws = append(kws, k)
	}
	sort.Slice(kws, func(i, j int) bool {
		wi, wj := p.KeywordWeights[kws[i]], p.KeywordWeights[kws[j]]
		if wi != wj {
			return wi > wj
		}
		return kws[i] < kws[j]
	})
	if len(kws) > n {
		kws = kws[:n]
	}
	return kws
}
