package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/dsl"
)

// RuleFilter 是基于 CEL 表达式的规则过滤器。
// Expr 返回 true 的电影被保留，false 被过滤。
//
// 示例：
//   - `movie.year >= 2000`：只保留 2000 年以后的电影
//   - `label.recall_source == "content"`：只保留内容召回的结果
//   - `item.score > 5.0 || movie.popularity > 100.0`
type RuleFilter struct {
	// Expr 是 CEL 表达式；为空时不过滤。
	Expr string
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}

	keep, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		// 表达式错误不中断链路，保留该条目并交由 FilterNode 记录
		return false, err
	}
	return !keep, nil
}
