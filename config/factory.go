// Package config 提供配置驱动的 Pipeline 组装：
// 把 YAML/JSON 里的 node 配置翻译成可执行的 Node 实例。
package config

import (
	"fmt"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/conv"
	"github.com/rushteam/movierec/rank"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/rerank"
)

// Deps 是构建 Node 需要注入的存储依赖。
// 召回/过滤 Node 持有接口而非全局连接，便于用内存实现做测试。
type Deps struct {
	Catalog core.MovieCatalog
	Ratings core.RatingStore
}

// DefaultFactory 返回一个包含所有内置 Node 的工厂。
func DefaultFactory(deps Deps) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	// Recall Nodes
	factory.Register("recall.content", buildContentNode(deps))
	factory.Register("recall.popular", buildPopularNode(deps))
	factory.Register("recall.fanout", buildFanoutNode(deps))

	// Filter Nodes
	factory.Register("filter", buildFilterNode(deps))

	// Rank Nodes
	factory.Register("rank.profile", buildProfileRankNode)

	// ReRank Nodes
	factory.Register("rerank.topn", buildTopNNode)

	return factory
}

func buildContentNode(deps Deps) pipeline.NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		if deps.Catalog == nil {
			return nil, fmt.Errorf("recall.content: catalog not configured")
		}
		return &recall.ContentRecall{
			Catalog:       deps.Catalog,
			TopGenreCount: conv.ConfigGetInt(cfg, "top_genres", 0),
			OverFetch:     conv.ConfigGetInt(cfg, "over_fetch", 0),
		}, nil
	}
}

func buildPopularNode(deps Deps) pipeline.NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		if deps.Catalog == nil {
			return nil, fmt.Errorf("recall.popular: catalog not configured")
		}
		return &recall.PopularRecall{
			Catalog: deps.Catalog,
			Ratings: deps.Ratings,
			MinYear: conv.ConfigGetInt(cfg, "min_year", 0),
		}, nil
	}
}

func buildFanoutNode(deps Deps) pipeline.NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		sourcesConfig, ok := cfg["sources"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("recall.fanout: sources not found or invalid")
		}

		sources := make([]recall.Source, 0, len(sourcesConfig))
		for _, sc := range sourcesConfig {
			sourceMap, ok := sc.(map[string]interface{})
			if !ok {
				continue
			}
			sourceType := conv.ConfigGet[string](sourceMap, "type", "")
			switch sourceType {
			case "content":
				sources = append(sources, &recall.ContentRecall{
					Catalog:       deps.Catalog,
					TopGenreCount: conv.ConfigGetInt(sourceMap, "top_genres", 0),
					OverFetch:     conv.ConfigGetInt(sourceMap, "over_fetch", 0),
				})
			case "popular":
				sources = append(sources, &recall.PopularRecall{
					Catalog: deps.Catalog,
					Ratings: deps.Ratings,
					MinYear: conv.ConfigGetInt(sourceMap, "min_year", 0),
				})
			default:
				return nil, fmt.Errorf("recall.fanout: unknown source type: %s", sourceType)
			}
		}

		fanout := &recall.Fanout{
			Sources:       sources,
			Dedup:         conv.ConfigGet[bool](cfg, "dedup", true),
			MergeStrategy: conv.ConfigGet[string](cfg, "merge_strategy", ""),
			MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
		}
		return fanout, nil
	}
}

func buildFilterNode(deps Deps) pipeline.NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		names := conv.SliceAnyToString(cfg["filters"])
		filters := make([]filter.Filter, 0, len(names))
		for _, name := range names {
			switch name {
			case "rated":
				if deps.Ratings == nil {
					return nil, fmt.Errorf("filter: ratings not configured for %q", name)
				}
				filters = append(filters, filter.NewRatedFilter(deps.Ratings))
			case "quality":
				filters = append(filters, &filter.QualityFilter{
					MinYear: conv.ConfigGetInt(cfg, "min_year", 0),
				})
			default:
				return nil, fmt.Errorf("filter: unknown filter: %s", name)
			}
		}
		if expr := conv.ConfigGet[string](cfg, "rule", ""); expr != "" {
			filters = append(filters, &filter.RuleFilter{Expr: expr})
		}
		return &filter.FilterNode{Filters: filters}, nil
	}
}

func buildProfileRankNode(cfg map[string]interface{}) (pipeline.Node, error) {
	w := rank.DefaultWeights()
	if v, ok := conv.ToFloat64(cfg["genre_weight"]); ok {
		w.Genre = v
	}
	if v, ok := conv.ToFloat64(cfg["keyword_weight"]); ok {
		w.Keyword = v
	}
	if v, ok := conv.ToFloat64(cfg["popularity_weight"]); ok {
		w.Popularity = v
	}
	return &rank.ProfileRank{Weights: w}, nil
}

func buildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}
