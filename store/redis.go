package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/movierec/core"
)

// RedisStore 是 Redis 实现的目录 + 评分存储，生产环境常用。
//
// key 布局（前缀默认 "movierec"）：
//   - {prefix}:movies                电影哈希表：field = 电影 ID，value = 电影 JSON
//   - {prefix}:movies:popularity     热度有序集合：member = 电影 ID，score = popularity
//   - {prefix}:ratings:{userID}      用户评分哈希表：field = 电影 ID，value = 评分 JSON
//
// 目录/评分的写入由导入任务与评分接口调用 AddMovie / SaveRating；
// 推荐核心只使用读路径。
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 连接 Redis 并返回存储实例。
func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, prefix: "movierec"}, nil
}

// NewRedisStoreWithClient 复用已有客户端（连接池由调用方管理）。
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "movierec"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) moviesKey() string     { return r.prefix + ":movies" }
func (r *RedisStore) popularityKey() string { return r.prefix + ":movies:popularity" }
func (r *RedisStore) ratingsKey(userID core.UserID) string {
	return r.prefix + ":ratings:" + userID.String()
}

// AddMovie 写入/覆盖一部电影，并同步热度有序集合。
func (r *RedisStore) AddMovie(ctx context.Context, movie *core.Movie) error {
	if movie == nil || movie.ID == "" {
		return nil
	}
	data, err := json.Marshal(movie)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, r.moviesKey(), movie.ID, data)
	pipe.ZAdd(ctx, r.popularityKey(), redis.Z{Score: movie.Popularity, Member: movie.ID})
	_, err = pipe.Exec(ctx)
	return err
}

// SaveRating 写入评分，(userID, movieID) 维度 upsert，保留首次的 CreatedAt。
func (r *RedisStore) SaveRating(ctx context.Context, userID core.UserID, movieID string, value int) error {
	if userID == "" || movieID == "" {
		return nil
	}

	now := time.Now()
	rating := &core.Rating{
		UserID:    userID,
		MovieID:   movieID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if data, err := r.client.HGet(ctx, r.ratingsKey(userID), movieID).Bytes(); err == nil {
		var old core.Rating
		if json.Unmarshal(data, &old) == nil && !old.CreatedAt.IsZero() {
			rating.CreatedAt = old.CreatedAt
		}
	}

	data, err := json.Marshal(rating)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.ratingsKey(userID), movieID, data).Err()
}

func (r *RedisStore) FindMovieByID(ctx context.Context, id string) (*core.Movie, error) {
	data, err := r.client.HGet(ctx, r.moviesKey(), id).Bytes()
	if err == redis.Nil {
		return nil, core.ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	var movie core.Movie
	if err := json.Unmarshal(data, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *RedisStore) FindMoviesByIDs(ctx context.Context, ids []string) (map[string]*core.Movie, error) {
	result := make(map[string]*core.Movie, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	vals, err := r.client.HMGet(ctx, r.moviesKey(), ids...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if v == nil {
			// 不存在的 ID 缺席于结果：悬挂引用由调用方跳过
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		var movie core.Movie
		if err := json.Unmarshal([]byte(s), &movie); err != nil {
			continue
		}
		result[ids[i]] = &movie
	}
	return result, nil
}

func (r *RedisStore) FindMovies(ctx context.Context, q core.MovieQuery) ([]*core.Movie, error) {
	if q.Sort == core.SortPopularity {
		return r.findByPopularity(ctx, q)
	}

	// 无排序要求：整表读出后过滤，按 ID 升序保证输出可复现
	all, err := r.client.HGetAll(ctx, r.moviesKey()).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*core.Movie, 0, len(all))
	for _, raw := range all {
		var movie core.Movie
		if err := json.Unmarshal([]byte(raw), &movie); err != nil {
			continue
		}
		if q.Match(&movie) {
			m := movie
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// findByPopularity 沿热度有序集合降序扫描，过滤后取前 Limit 条。
// 热度相同的电影按年份降序、ID 升序二次排序。
func (r *RedisStore) findByPopularity(ctx context.Context, q core.MovieQuery) ([]*core.Movie, error) {
	ids, err := r.client.ZRevRange(ctx, r.popularityKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	movies, err := r.FindMoviesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Movie, 0, len(ids))
	for _, id := range ids {
		movie, ok := movies[id]
		if !ok {
			continue
		}
		if q.Match(movie) {
			out = append(out, movie)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Popularity != out[j].Popularity {
			return out[i].Popularity > out[j].Popularity
		}
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].ID < out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *RedisStore) FindRatings(ctx context.Context, userID core.UserID, minRating int) ([]*core.Rating, error) {
	vals, err := r.client.HGetAll(ctx, r.ratingsKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*core.Rating, 0, len(vals))
	for _, raw := range vals {
		var rating core.Rating
		if err := json.Unmarshal([]byte(raw), &rating); err != nil {
			continue
		}
		if minRating > 0 && rating.Value < minRating {
			continue
		}
		rt := rating
		out = append(out, &rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieID < out[j].MovieID })
	return out, nil
}

func (r *RedisStore) CountRatings(ctx context.Context, userID core.UserID, minRating int) (int, error) {
	ratings, err := r.FindRatings(ctx, userID, minRating)
	if err != nil {
		return 0, err
	}
	return len(ratings), nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// 确保 RedisStore 实现了 core 的两个读接口
var _ core.MovieCatalog = (*RedisStore)(nil)
var _ core.RatingStore = (*RedisStore)(nil)
