package core

import "time"

// 评分取值范围与"喜欢"阈值。
// UI 使用 1-5 星；评分 >= LikedThreshold 视为"喜欢"。
const (
	MinRatingValue = 1
	MaxRatingValue = 5

	// DefaultLikedThreshold 是默认的"喜欢"阈值（4 星及以上）。
	DefaultLikedThreshold = 4
)

// Rating 是用户对电影的一次评分。
// 不变量：每个 (UserID, MovieID) 至多一条记录，由存储层 upsert 保证，
// 推荐核心直接依赖该不变量，不做去重。
type Rating struct {
	UserID  UserID `json:"user_id"`
	MovieID string `json:"movie_id"`

	// Value 是评分值，[1,5] 整数。
	Value int `json:"rating"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Liked 返回该评分是否达到"喜欢"阈值。
func (r *Rating) Liked(threshold int) bool {
	return r != nil && r.Value >= threshold
}
