package filter

import (
	"context"
	"testing"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/utils"
	"github.com/rushteam/movierec/store"
)

const testUser = core.UserID("507f1f77bcf86cd799439011")

func newItem(m *core.Movie) *core.Item {
	return core.NewItem(m)
}

func TestRuleFilter(t *testing.T) {
	item := newItem(&core.Movie{
		ID:         "m1",
		Title:      "Edge of Steel",
		Year:       2019,
		Genres:     []string{"Action", "Drama"},
		Popularity: 88,
		Poster:     "p",
	})
	item.Score = 12.5
	item.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall.content"})

	rctx := &core.RecommendContext{UserID: testUser, Scene: "home", Limit: 20}

	tests := []struct {
		name       string
		expr       string
		wantFilter bool
		wantErr    bool
	}{
		{name: "empty expr keeps everything", expr: "", wantFilter: false},
		{name: "year check passes", expr: "movie.year >= 2015", wantFilter: false},
		{name: "year check fails", expr: "movie.year >= 2020", wantFilter: true},
		{name: "genre membership", expr: "'Action' in movie.genres", wantFilter: false},
		{name: "score threshold", expr: "item.score > 10.0", wantFilter: false},
		{name: "label shorthand", expr: "label.recall_source == 'content'", wantFilter: false},
		{name: "label mismatch filters", expr: "label.recall_source == 'popular'", wantFilter: true},
		{name: "combined", expr: "movie.year >= 2015 && item.score > 10.0", wantFilter: false},
		{name: "poster flag", expr: "movie.has_poster", wantFilter: false},
		{name: "compile error", expr: "movie.year >=", wantFilter: false, wantErr: true},
		{name: "non boolean result", expr: "movie.year", wantFilter: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &RuleFilter{Expr: tt.expr}
			got, err := f.ShouldFilter(context.Background(), rctx, item)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ShouldFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.wantFilter {
				t.Errorf("ShouldFilter(%q) = %v, want %v", tt.expr, got, tt.wantFilter)
			}
		})
	}
}

func TestQualityFilter(t *testing.T) {
	tests := []struct {
		name    string
		minYear int
		item    *core.Item
		want    bool
	}{
		{
			name: "keeps movie with poster",
			item: newItem(&core.Movie{ID: "a", Year: 2020, Poster: "p"}),
			want: false,
		},
		{
			name: "drops movie without poster",
			item: newItem(&core.Movie{ID: "b", Year: 2020}),
			want: true,
		},
		{
			name:    "drops movie older than min year",
			minYear: 2015,
			item:    newItem(&core.Movie{ID: "c", Year: 2010, Poster: "p"}),
			want:    true,
		},
		{
			name: "drops item without movie",
			item: &core.Item{ID: "d"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &QualityFilter{MinYear: tt.minYear}
			got, err := f.ShouldFilter(context.Background(), nil, tt.item)
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRatedFilter(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.SaveRating(testUser, "m1", 5)
	mem.SaveRating(testUser, "m2", 2) // 低分同样排除

	f := NewRatedFilter(mem)
	rctx := &core.RecommendContext{UserID: testUser}
	ctx := context.Background()

	for _, tt := range []struct {
		id   string
		want bool
	}{
		{"m1", true},
		{"m2", true},
		{"m3", false},
	} {
		got, err := f.ShouldFilter(ctx, rctx, newItem(&core.Movie{ID: tt.id}))
		if err != nil {
			t.Fatalf("ShouldFilter(%s) error = %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("ShouldFilter(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}

	// 匿名请求不过滤
	anon, err := f.ShouldFilter(ctx, &core.RecommendContext{}, newItem(&core.Movie{ID: "m1"}))
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if anon {
		t.Error("anonymous context must not filter")
	}
}

func TestRatedFilterReusedAcrossRequests(t *testing.T) {
	otherUser := core.UserID("507f1f77bcf86cd799439022")

	mem := store.NewMemoryStore()
	mem.SaveRating(otherUser, "m1", 4)

	// 同一个过滤器实例服务多个请求（配置驱动的 Pipeline 常驻内存）
	f := NewRatedFilter(mem)
	ctx := context.Background()

	// 第一个请求：testUser 无评分，什么都不过滤
	got, err := f.ShouldFilter(ctx, &core.RecommendContext{UserID: testUser}, newItem(&core.Movie{ID: "m1"}))
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if got {
		t.Error("user without ratings must not have movies filtered")
	}

	// 第二个请求：otherUser 评分过 m1，必须用自己的快照过滤，
	// 不能沿用上一个请求的结果
	got, err = f.ShouldFilter(ctx, &core.RecommendContext{UserID: otherUser}, newItem(&core.Movie{ID: "m1"}))
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if !got {
		t.Error("reused filter must load the current request's rated set")
	}

	// 评分变化后新请求读到最新状态（快照只在单个请求内复用）
	mem.SaveRating(otherUser, "m2", 2)
	got, err = f.ShouldFilter(ctx, &core.RecommendContext{UserID: otherUser}, newItem(&core.Movie{ID: "m2"}))
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if !got {
		t.Error("new request must see ratings written after the previous request")
	}
}

func TestFilterNode(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.SaveRating(testUser, "m1", 4)

	node := &FilterNode{Filters: []Filter{
		NewRatedFilter(mem),
		&QualityFilter{},
	}}
	rctx := &core.RecommendContext{UserID: testUser}

	items := []*core.Item{
		newItem(&core.Movie{ID: "m1", Poster: "p"}), // 已评分
		newItem(&core.Movie{ID: "m2"}),              // 无海报
		newItem(&core.Movie{ID: "m3", Poster: "p"}),
		nil,
	}

	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != "m3" {
		t.Fatalf("Process() = %v items, want only m3", len(out))
	}

	// 被过滤的条目带原因标签
	if lbl, ok := items[0].GetLabel("filtered"); !ok || lbl.Source != "filter.rated" {
		t.Errorf("m1 filtered label = %v, want source filter.rated", lbl)
	}
	if lbl, ok := items[1].GetLabel("filtered"); !ok || lbl.Source != "filter.quality" {
		t.Errorf("m2 filtered label = %v, want source filter.quality", lbl)
	}
}

func TestFilterNodeErrorKeepsItem(t *testing.T) {
	node := &FilterNode{Filters: []Filter{
		&RuleFilter{Expr: "movie.year >="}, // 编译错误
	}}

	items := []*core.Item{newItem(&core.Movie{ID: "m1", Year: 2020, Poster: "p"})}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 {
		t.Errorf("broken rule must not drop items, got %d", len(out))
	}
}
