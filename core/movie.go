package core

// Movie 是电影目录中的条目，来源于 TMDb 等外部数据源。
// 对推荐核心而言只读：目录的写入/更新由外部导入任务负责。
type Movie struct {
	ID     string `json:"id"`
	TMDBID int64  `json:"tmdb_id"`
	Title  string `json:"title"`
	Year   int    `json:"year,omitempty"`

	// Genres / Keywords 是内容特征，内容召回与打分的信号来源。
	// 目录保证已去重；顺序对打分无意义。
	Genres   []string `json:"genres"`
	Keywords []string `json:"keywords"`

	// Poster 是海报 URL；为空表示无海报。
	// 无海报的电影会被质量过滤排除在推荐结果之外。
	Poster string `json:"poster,omitempty"`

	Runtime  int    `json:"runtime,omitempty"` // 分钟
	Overview string `json:"overview,omitempty"`

	// Popularity 是外部维护的热度分（>=0，无上界）。
	// 冷启动按它排序；内容打分中只作为小的加成项。
	Popularity float64 `json:"popularity"`
}

// HasPoster 返回电影是否有海报（推荐输出的质量门槛）。
func (m *Movie) HasPoster() bool {
	return m != nil && m.Poster != ""
}

// HasGenre 返回电影是否带有指定类型标签。
func (m *Movie) HasGenre(genre string) bool {
	if m == nil {
		return false
	}
	for _, g := range m.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
