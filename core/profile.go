package core

import "sort"

// UserProfile 是按请求重建的用户口味画像。
//
// 生命周期：每次推荐请求开始时由 profile.Builder 构建，请求结束即丢弃。
// 不做跨请求缓存，因此永远与最新的评分状态一致，无失效问题。
type UserProfile struct {
	UserID UserID

	// GenreWeights 是类型偏好：genre -> 权重。
	// 权重 = 所有"喜欢"评分（>= 阈值）中带该类型的评分值之和，
	// 跨电影累加：5 部高分动作片的权重大于 1 部。
	GenreWeights map[string]float64

	// KeywordWeights 是关键词偏好，结构同 GenreWeights。
	KeywordWeights map[string]float64

	// LikedMovieIDs 是已"喜欢"的电影集合，下游用作排除集。
	// 注意它只覆盖喜欢的电影，不是用户全部评分历史。
	LikedMovieIDs map[string]struct{}
}

// NewUserProfile 创建一个空画像。
func NewUserProfile(userID UserID) *UserProfile {
	return &UserProfile{
		UserID:         userID,
		GenreWeights:   make(map[string]float64),
		KeywordWeights: make(map[string]float64),
		LikedMovieIDs:  make(map[string]struct{}),
	}
}

// Empty 返回画像是否不含任何信号（两个权重表均为空）。
func (p *UserProfile) Empty() bool {
	return p == nil || (len(p.GenreWeights) == 0 && len(p.KeywordWeights) == 0)
}

// Liked 返回电影是否在"喜欢"集合中。
func (p *UserProfile) Liked(movieID string) bool {
	if p == nil {
		return false
	}
	_, ok := p.LikedMovieIDs[movieID]
	return ok
}

// AddLiked 将一部"喜欢"的电影累加进画像。
func (p *UserProfile) AddLiked(movie *Movie, weight float64) {
	if movie == nil {
		return
	}
	p.LikedMovieIDs[movie.ID] = struct{}{}
	for _, g := range movie.Genres {
		p.GenreWeights[g] += weight
	}
	for _, k := range movie.Keywords {
		p.KeywordWeights[k] += weight
	}
}

// TopGenres 返回权重最高的 n 个类型。
// 排序规则：权重降序；权重相同按类型名字典序升序。
// 次级排序是刻意固定的：map 遍历无序，不固定则同权重时输出不可复现。
func (p *UserProfile) TopGenres(n int) []string {
	if p == nil || n <= 0 || len(p.GenreWeights) == 0 {
		return nil
	}
	genres := make([]string, 0, len(p.GenreWeights))
	for g := range p.GenreWeights {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		wi, wj := p.GenreWeights[genres[i]], p.GenreWeights[genres[j]]
		if wi != wj {
			return wi > wj
		}
		return genres[i] < genres[j]
	})
	if len(genres) > n {
		genres = genres[:n]
	}
	return genres
}
