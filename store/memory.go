// Package store 提供 core 存储接口的基础设施实现。
//
// 注意：接口定义在 core 包（core.MovieCatalog / core.RatingStore），
// 此包只包含实现。
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/movierec/core"
)

// MemoryStore 是内存实现的目录 + 评分存储，用于测试/开发/原型。
// 同时实现 core.MovieCatalog 与 core.RatingStore；进程重启后数据丢失。
//
// 查询输出是确定性的：无排序要求时按电影 ID 升序，
// 热门排序按 热度降序 > 年份降序 > ID 升序。
type MemoryStore struct {
	mu      sync.RWMutex
	movies  map[string]*core.Movie
	ratings map[core.UserID]map[string]*core.Rating
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		movies:  make(map[string]*core.Movie),
		ratings: make(map[core.UserID]map[string]*core.Rating),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

// AddMovie 写入/覆盖一部电影（种子数据、测试夹具用）。
func (m *MemoryStore) AddMovie(movie *core.Movie) {
	if movie == nil || movie.ID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movies[movie.ID] = movie
}

// DeleteMovie 从目录删除一部电影。
// 指向它的评分保持原样：核心在画像构建时会把悬挂引用跳过。
func (m *MemoryStore) DeleteMovie(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.movies, id)
}

// SaveRating 写入评分，(userID, movieID) 维度 upsert：
// 已存在时更新分值与 UpdatedAt，保留 CreatedAt。
func (m *MemoryStore) SaveRating(userID core.UserID, movieID string, value int) {
	if userID == "" || movieID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	byUser, ok := m.ratings[userID]
	if !ok {
		byUser = make(map[string]*core.Rating)
		m.ratings[userID] = byUser
	}

	now := time.Now()
	if old, ok := byUser[movieID]; ok {
		old.Value = value
		old.UpdatedAt = now
		return
	}
	byUser[movieID] = &core.Rating{
		UserID:    userID,
		MovieID:   movieID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (m *MemoryStore) FindMovieByID(_ context.Context, id string) (*core.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	movie, ok := m.movies[id]
	if !ok {
		return nil, core.ErrMovieNotFound
	}
	return movie, nil
}

func (m *MemoryStore) FindMoviesByIDs(_ context.Context, ids []string) (map[string]*core.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*core.Movie, len(ids))
	for _, id := range ids {
		if movie, ok := m.movies[id]; ok {
			result[id] = movie
		}
	}
	return result, nil
}

func (m *MemoryStore) FindMovies(_ context.Context, q core.MovieQuery) ([]*core.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*core.Movie, 0, len(m.movies))
	for _, movie := range m.movies {
		if q.Match(movie) {
			out = append(out, movie)
		}
	}

	switch q.Sort {
	case core.SortPopularity:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Popularity != out[j].Popularity {
				return out[i].Popularity > out[j].Popularity
			}
			if out[i].Year != out[j].Year {
				return out[i].Year > out[j].Year
			}
			return out[i].ID < out[j].ID
		})
	default:
		sort.Slice(out, func(i, j int) bool {
			return out[i].ID < out[j].ID
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MemoryStore) FindRatings(_ context.Context, userID core.UserID, minRating int) ([]*core.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byUser := m.ratings[userID]
	out := make([]*core.Rating, 0, len(byUser))
	for _, r := range byUser {
		if minRating > 0 && r.Value < minRating {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MovieID < out[j].MovieID
	})
	return out, nil
}

func (m *MemoryStore) CountRatings(ctx context.Context, userID core.UserID, minRating int) (int, error) {
	ratings, err := m.FindRatings(ctx, userID, minRating)
	if err != nil {
		return 0, err
	}
	return len(ratings), nil
}

func (m *MemoryStore) Close() error { return nil }

// 确保 MemoryStore 实现了 core 的两个读接口
var _ core.MovieCatalog = (*MemoryStore)(nil)
var _ core.RatingStore = (*MemoryStore)(nil)
