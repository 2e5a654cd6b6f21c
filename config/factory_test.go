package config

import (
	"context"
	"testing"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/profile"
	"github.com/rushteam/movierec/store"
)

const testUser = core.UserID("507f1f77bcf86cd799439011")

func newDeps(t *testing.T) Deps {
	t.Helper()
	mem := store.NewMemoryStore()
	movies := []*core.Movie{
		{ID: "m1", Title: "Edge of Steel", Year: 2019, Genres: []string{"Action"}, Keywords: []string{"heist"}, Poster: "p", Popularity: 88},
		{ID: "m2", Title: "Night Runner", Year: 2021, Genres: []string{"Action"}, Keywords: []string{"chase"}, Poster: "p", Popularity: 75},
		{ID: "m3", Title: "Punchline", Year: 2018, Genres: []string{"Comedy"}, Poster: "p", Popularity: 60},
		{ID: "m4", Title: "Starfall", Year: 2020, Genres: []string{"Action"}, Poster: "p", Popularity: 93},
	}
	for _, m := range movies {
		mem.AddMovie(m)
	}
	mem.SaveRating(testUser, "m1", 5)
	mem.SaveRating(testUser, "m2", 5)
	mem.SaveRating(testUser, "m3", 4)
	return Deps{Catalog: mem, Ratings: mem}
}

func TestDefaultFactoryBuildsPipeline(t *testing.T) {
	deps := newDeps(t)
	factory := DefaultFactory(deps)

	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "test_feed"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "recall.fanout", Config: map[string]interface{}{
			"dedup":          true,
			"merge_strategy": "priority",
			"sources": []interface{}{
				map[string]interface{}{"type": "content"},
				map[string]interface{}{"type": "popular", "min_year": 2015},
			},
		}},
		{Type: "filter", Config: map[string]interface{}{
			"filters": []interface{}{"rated", "quality"},
		}},
		{Type: "rank.profile", Config: nil},
		{Type: "rerank.topn", Config: map[string]interface{}{"n": 2}},
	}

	pipe, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if len(pipe.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(pipe.Nodes))
	}

	ctx := context.Background()
	prof, err := profile.NewBuilder(deps.Ratings, deps.Catalog).BuildFor(ctx, testUser)
	if err != nil {
		t.Fatalf("BuildFor() error = %v", err)
	}

	items, err := pipe.Run(ctx, &core.RecommendContext{
		UserID:  testUser,
		Limit:   2,
		Profile: prof,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// m1/m2/m3 已评分被过滤，截断后只剩 m4
	if len(items) != 1 || items[0].ID != "m4" {
		got := make([]string, 0, len(items))
		for _, it := range items {
			got = append(got, it.ID)
		}
		t.Errorf("Run() = %v, want [m4]", got)
	}
}

func TestDefaultFactoryUnknownSource(t *testing.T) {
	factory := DefaultFactory(newDeps(t))

	_, err := factory.Build("recall.fanout", map[string]interface{}{
		"sources": []interface{}{
			map[string]interface{}{"type": "collaborative"},
		},
	})
	if err == nil {
		t.Error("Build() expected error for unknown source type")
	}
}

func TestDefaultFactoryMissingDeps(t *testing.T) {
	factory := DefaultFactory(Deps{})

	if _, err := factory.Build("recall.content", nil); err == nil {
		t.Error("recall.content without catalog should fail")
	}
	if _, err := factory.Build("filter", map[string]interface{}{
		"filters": []interface{}{"rated"},
	}); err == nil {
		t.Error("rated filter without ratings should fail")
	}
}
