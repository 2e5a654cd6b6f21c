package profile

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/store"
)

const testUser = core.UserID("507f1f77bcf86cd799439011")

func seedStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	mem := store.NewMemoryStore()
	mem.AddMovie(&core.Movie{ID: "m1", Title: "Edge of Steel", Genres: []string{"Action", "Drama"}, Keywords: []string{"heist"}, Poster: "p1"})
	mem.AddMovie(&core.Movie{ID: "m2", Title: "Night Runner", Genres: []string{"Action"}, Keywords: []string{"heist", "chase"}, Poster: "p2"})
	mem.AddMovie(&core.Movie{ID: "m3", Title: "Punchline", Genres: []string{"Comedy"}, Keywords: nil, Poster: "p3"})
	mem.AddMovie(&core.Movie{ID: "m4", Title: "Gray Static", Genres: []string{"Horror"}, Keywords: []string{"ghost"}, Poster: "p4"})
	return mem
}

func TestBuilderAccumulatesWeights(t *testing.T) {
	mem := seedStore(t)
	mem.SaveRating(testUser, "m1", 5)
	mem.SaveRating(testUser, "m2", 5)
	mem.SaveRating(testUser, "m3", 4)
	mem.SaveRating(testUser, "m4", 2) // 低于阈值，不进入画像

	p, err := NewBuilder(mem, mem).BuildFor(context.Background(), testUser)
	if err != nil {
		t.Fatalf("BuildFor() error = %v", err)
	}

	wantGenres := map[string]float64{"Action": 10, "Drama": 5, "Comedy": 4}
	if !reflect.DeepEqual(p.GenreWeights, wantGenres) {
		t.Errorf("GenreWeights = %v, want %v", p.GenreWeights, wantGenres)
	}
	if _, ok := p.GenreWeights["Horror"]; ok {
		t.Error("below-threshold rating must not contribute genre weight")
	}

	wantKeywords := map[string]float64{"heist": 10, "chase": 5}
	if !reflect.DeepEqual(p.KeywordWeights, wantKeywords) {
		t.Errorf("KeywordWeights = %v, want %v", p.KeywordWeights, wantKeywords)
	}

	wantLiked := map[string]struct{}{"m1": {}, "m2": {}, "m3": {}}
	if !reflect.DeepEqual(p.LikedMovieIDs, wantLiked) {
		t.Errorf("LikedMovieIDs = %v, want %v", p.LikedMovieIDs, wantLiked)
	}

	wantTop := []string{"Action", "Drama", "Comedy"}
	if got := p.TopGenres(3); !reflect.DeepEqual(got, wantTop) {
		t.Errorf("TopGenres(3) = %v, want %v", got, wantTop)
	}
}

func TestBuilderSkipsDanglingReference(t *testing.T) {
	mem := seedStore(t)
	mem.SaveRating(testUser, "m1", 5)
	mem.SaveRating(testUser, "m2", 5)
	// 评分后电影被从目录删除：评分成为悬挂引用
	mem.DeleteMovie("m2")

	p, err := NewBuilder(mem, mem).BuildFor(context.Background(), testUser)
	if err != nil {
		t.Fatalf("BuildFor() error = %v", err)
	}

	wantGenres := map[string]float64{"Action": 5, "Drama": 5}
	if !reflect.DeepEqual(p.GenreWeights, wantGenres) {
		t.Errorf("GenreWeights = %v, want %v", p.GenreWeights, wantGenres)
	}
	if p.Liked("m2") {
		t.Error("dangling rating must not add to liked set")
	}
}

func TestBuilderInvalidUserIDSoftFails(t *testing.T) {
	mem := seedStore(t)

	for _, raw := range []string{"", "not-an-object-id", "zzzf1f77bcf86cd799439011"} {
		p, err := NewBuilder(mem, mem).Build(context.Background(), raw)
		if err != nil {
			t.Fatalf("Build(%q) error = %v, want nil (soft fail)", raw, err)
		}
		if !p.Empty() {
			t.Errorf("Build(%q) = %+v, want empty profile", raw, p)
		}
		if len(p.LikedMovieIDs) != 0 {
			t.Errorf("Build(%q) liked set = %v, want empty", raw, p.LikedMovieIDs)
		}
	}
}

func TestBuilderNoRatings(t *testing.T) {
	mem := seedStore(t)

	p, err := NewBuilder(mem, mem).BuildFor(context.Background(), testUser)
	if err != nil {
		t.Fatalf("BuildFor() error = %v", err)
	}
	if !p.Empty() {
		t.Errorf("profile = %+v, want empty", p)
	}
}

func TestBuilderCustomThreshold(t *testing.T) {
	mem := seedStore(t)
	mem.SaveRating(testUser, "m1", 3)

	b := NewBuilder(mem, mem)
	b.LikedThreshold = 3

	p, err := b.BuildFor(context.Background(), testUser)
	if err != nil {
		t.Fatalf("BuildFor() error = %v", err)
	}
	want := map[string]float64{"Action": 3, "Drama": 3}
	if !reflect.DeepEqual(p.GenreWeights, want) {
		t.Errorf("GenreWeights = %v, want %v", p.GenreWeights, want)
	}
}

func TestTopKeywords(t *testing.T) {
	p := core.NewUserProfile(testUser)
	p.KeywordWeights = map[string]float64{"heist": 10, "chase": 5, "alien": 5}

	want := []string{"heist", "alien", "chase"}
	if got := TopKeywords(p, 3); !reflect.DeepEqual(got, want) {
		t.Errorf("TopKeywords = %v, want %v", got, want)
	}
}
