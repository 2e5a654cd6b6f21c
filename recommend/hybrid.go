// Package recommend 提供混合推荐入口：
// 有足够评分历史的用户走内容推荐，新用户降级为冷启动热门榜。
package recommend

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
	"github.com/rushteam/movierec/profile"
	"github.com/rushteam/movierec/rank"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/rerank"
)

// Type 标识本次请求实际使用的推荐路径，供调用方展示解释文案。
type Type string

const (
	// TypeContentBased 表示按用户画像的内容推荐。
	TypeContentBased Type = "content-based"

	// TypeColdStart 表示冷启动热门推荐。
	TypeColdStart Type = "cold-start"
)

// DefaultLimit 是调用方未指定时建议的结果条数。
const DefaultLimit = 20

// MinLikedCount 是内容推荐的门槛：至少 3 条"喜欢"评分。
// 1~2 个数据点构出的画像太不稳定，不如直接走冷启动。
const MinLikedCount = 3

// Hybrid 是混合推荐器（Hybrid Scorer）。
//
// 控制流：
//
//	Recommend(userID, limit)
//	  ├─ 门槛：喜欢评分数 >= MinLikedCount？
//	  ├─ 是：画像 -> 内容召回 -> 画像打分排序 -> TopN，
//	  │      结果不足 limit 时用冷启动补位（拼接在内容结果之后，不重新排序）
//	  └─ 否：冷启动（热门新片，排除已评分）
//
// 每次调用自包含、无共享可变状态，可安全并发。
// 存储错误原样向上传递；非法用户 ID 不报错，按无历史用户降级为冷启动。
type Hybrid struct {
	Ratings core.RatingStore
	Catalog core.MovieCatalog

	// Profiles 可注入自定义画像构建器（含其自己的阈值配置）；
	// 为 nil 时每次按当前的 LikedThreshold 构建，
	// 保证门槛与画像使用同一个阈值。
	Profiles *profile.Builder

	// Weights 是内容打分权重；零值时使用 rank.DefaultWeights。
	Weights rank.Weights

	// LikedThreshold 是"喜欢"阈值；<= 0 时默认 core.DefaultLikedThreshold。
	LikedThreshold int

	// TopGenreCount / OverFetch / MinYear 透传给召回源；零值用各自默认。
	TopGenreCount int
	OverFetch     int
	MinYear       int

	// Scene 写入 RecommendContext，供观测/规则使用。
	Scene string
}

// NewHybrid 创建混合推荐器。
func NewHybrid(ratings core.RatingStore, catalog core.MovieCatalog) *Hybrid {
	return &Hybrid{
		Ratings: ratings,
		Catalog: catalog,
	}
}

func (h *Hybrid) threshold() int {
	if h.LikedThreshold > 0 {
		return h.LikedThreshold
	}
	return core.DefaultLikedThreshold
}

func (h *Hybrid) builder() *profile.Builder {
	if h.Profiles != nil {
		return h.Profiles
	}
	// 门槛与画像必须共用一个阈值，否则自定义阈值下门槛为真而画像为空
	b := profile.NewBuilder(h.Ratings, h.Catalog)
	b.LikedThreshold = h.LikedThreshold
	return b
}

func (h *Hybrid) popular() *recall.PopularRecall {
	return &recall.PopularRecall{
		Catalog: h.Catalog,
		Ratings: h.Ratings,
		MinYear: h.MinYear,
	}
}

// hasEnoughHistory 是分支门槛：用户"喜欢"评分数是否达到 MinLikedCount。
// RecommendType 与 Recommend 必须使用同一判定，否则文案与实际路径会不一致。
func (h *Hybrid) hasEnoughHistory(ctx context.Context, userID core.UserID) (bool, error) {
	count, err := h.Ratings.CountRatings(ctx, userID, h.threshold())
	if err != nil {
		return false, err
	}
	return count >= MinLikedCount, nil
}

// RecommendType 返回本次会使用的推荐路径，与 Recommend 的分支判定完全一致
//（同一 ParseUserID 规则、同一门槛）。
func (h *Hybrid) RecommendType(ctx context.Context, rawUserID string) (Type, error) {
	userID, err := core.ParseUserID(rawUserID)
	if err != nil {
		return TypeColdStart, nil
	}
	enough, err := h.hasEnoughHistory(ctx, userID)
	if err != nil {
		return "", err
	}
	if enough {
		return TypeContentBased, nil
	}
	return TypeColdStart, nil
}

// Recommend 返回最多 limit 部推荐电影（有序）。
// limit <= 0 返回空列表；候选不足时返回全部可用候选，不报错。
func (h *Hybrid) Recommend(ctx context.Context, rawUserID string, limit int) ([]*core.Movie, error) {
	items, err := h.RecommendItems(ctx, rawUserID, limit)
	if err != nil {
		return nil, err
	}
	return core.Movies(items), nil
}

// RecommendItems 与 Recommend 相同，但保留 Item 上的分数与解释标签。
func (h *Hybrid) RecommendItems(ctx context.Context, rawUserID string, limit int) ([]*core.Item, error) {
	if limit <= 0 {
		return []*core.Item{}, nil
	}

	userID, err := core.ParseUserID(rawUserID)
	if err != nil {
		// 非法 ID 按无历史用户处理：直接冷启动，不向上报错
		return h.coldStart(ctx, "", limit)
	}

	enough, err := h.hasEnoughHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !enough {
		return h.coldStart(ctx, userID, limit)
	}

	return h.contentBased(ctx, userID, limit)
}

// contentBased 执行内容推荐分支：画像 -> 召回 -> 打分排序 -> 截断 -> 冷启动补位。
func (h *Hybrid) contentBased(ctx context.Context, userID core.UserID, limit int) ([]*core.Item, error) {
	p, err := h.builder().BuildFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	// 防御：门槛为真时画像不应为空，但仍兜底降级
	if p.Empty() {
		return h.coldStart(ctx, userID, limit)
	}

	rctx := &core.RecommendContext{
		UserID:  userID,
		Scene:   h.Scene,
		Limit:   limit,
		Profile: p,
	}

	pipe := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.ContentRecall{
				Catalog:       h.Catalog,
				TopGenreCount: h.TopGenreCount,
				OverFetch:     h.OverFetch,
			},
			&rank.ProfileRank{Weights: h.Weights},
			&rerank.TopNNode{N: limit},
		},
	}

	items, err := pipe.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		it.PutLabel("reco_type", utils.Label{Value: string(TypeContentBased), Source: "recommend"})
	}

	// 结果不足时用冷启动补位：拼接在内容结果之后，不与内容结果重新混排。
	// 补位额外排除已产出的 ID，两段拼接保证无重复。
	if len(items) < limit {
		emitted := make(map[string]struct{}, len(items))
		for _, it := range items {
			emitted[it.ID] = struct{}{}
		}
		padding, err := h.popular().Fetch(ctx, userID, limit-len(items), emitted)
		if err != nil {
			return nil, err
		}
		for _, it := range padding {
			it.PutLabel("reco_type", utils.Label{Value: string(TypeColdStart), Source: "recommend"})
		}
		items = append(items, padding...)
	}

	return items, nil
}

// coldStart 执行冷启动分支：热门新片，排除用户已评分的全部电影。
func (h *Hybrid) coldStart(ctx context.Context, userID core.UserID, limit int) ([]*core.Item, error) {
	items, err := h.popular().Fetch(ctx, userID, limit, nil)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		it.PutLabel("reco_type", utils.Label{Value: string(TypeColdStart), Source: "recommend"})
	}
	return items, nil
}
