package core

import "context"

// 存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 推荐核心对两个存储只读；写入（评分 upsert、目录导入）属于协作方
//
// 实现：
//   - store.MemoryStore（测试/开发）
//   - store.RedisStore（生产）

// RatingStore 是评分存储的读接口。
type RatingStore interface {
	// FindRatings 返回用户评分值 >= minRating 的全部评分。
	// minRating <= 0 表示不过滤，返回全部历史。
	FindRatings(ctx context.Context, userID UserID, minRating int) ([]*Rating, error)

	// CountRatings 返回用户评分值 >= minRating 的评分条数。
	CountRatings(ctx context.Context, userID UserID, minRating int) (int, error)
}

// SortOrder 是目录查询的排序方式。
type SortOrder int

const (
	// SortNone 不排序，由调用方自行按分数排序。
	SortNone SortOrder = iota

	// SortPopularity 按热度降序，热度相同按年份降序（冷启动用）。
	SortPopularity
)

// MovieQuery 是目录查询条件，各字段为 AND 关系，零值表示不启用该条件。
type MovieQuery struct {
	// ExcludeIDs 排除的电影 ID 集合（已评分/已喜欢的电影）。
	ExcludeIDs map[string]struct{}

	// AnyGenre 非空时要求电影至少带其中一个类型标签。
	AnyGenre []string

	// RequirePoster 为 true 时只返回有海报的电影。
	RequirePoster bool

	// MinYear 大于 0 时要求 Year >= MinYear（冷启动的时效下限）。
	MinYear int

	// Sort 排序方式。
	Sort SortOrder

	// Limit 大于 0 时限制返回条数。
	Limit int
}

// Excluded 返回 id 是否在排除集中。
func (q *MovieQuery) Excluded(id string) bool {
	if q == nil || q.ExcludeIDs == nil {
		return false
	}
	_, ok := q.ExcludeIDs[id]
	return ok
}

// Match 返回电影是否满足除排序/条数外的全部过滤条件。
func (q *MovieQuery) Match(m *Movie) bool {
	if m == nil {
		return false
	}
	if q.Excluded(m.ID) {
		return false
	}
	if q.RequirePoster && !m.HasPoster() {
		return false
	}
	if q.MinYear > 0 && m.Year < q.MinYear {
		return false
	}
	if len(q.AnyGenre) > 0 {
		matched := false
		for _, g := range q.AnyGenre {
			if m.HasGenre(g) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// MovieCatalog 是电影目录的读接口。
type MovieCatalog interface {
	// FindMovies 按查询条件返回电影列表。
	FindMovies(ctx context.Context, q MovieQuery) ([]*Movie, error)

	// FindMovieByID 按 ID 返回单部电影；不存在时返回 ErrMovieNotFound。
	FindMovieByID(ctx context.Context, id string) (*Movie, error)

	// FindMoviesByIDs 批量返回电影，key 为电影 ID。
	// 不存在的 ID 直接缺席于结果，不报错（悬挂引用由调用方跳过）。
	FindMoviesByIDs(ctx context.Context, ids []string) (map[string]*Movie, error)
}

// 存储错误定义（使用统一的 DomainError）
var (
	// ErrMovieNotFound 表示电影不存在
	ErrMovieNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: movie not found")

	// ErrRatingNotFound 表示评分不存在
	ErrRatingNotFound = NewDomainError(ModuleRating, ErrorCodeNotFound, "rating: not found")
)
