package vector

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"studio-assistant-be/pkg/embedding"
)

// stubEmbedder maps topic keywords onto fixed unit vectors so
// similarity is fully deterministic.
type stubEmbedder struct {
	fail bool
}

var topicVectors = map[string][]float32{
	"篮球": {1, 0, 0},
	"法律": {0, 1, 0},
	"考勤": {0, 0, 1},
}

func (s *stubEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if s.fail {
		return nil, errors.New("embedder down")
	}
	vec := []float32{0.5, 0.5, 0.5}
	for kw, v := range topicVectors {
		if strings.Contains(text, kw) {
			vec = v
			break
		}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

func newTestIndex(t *testing.T) (*Index, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	logger := log.New(os.Stdout, "", 0)
	ix := NewIndex(backend, &stubEmbedder{}, DefaultConfig(), logger)
	return ix, backend
}

func TestIndexUpsertAndSearch(t *testing.T) {
	ix, _ := newTestIndex(t)
	ctx := context.Background()

	docs := []SourceDocument{
		{Type: "notice", BusinessID: "n1", Title: "篮球赛通知", Text: "周五篮球赛在体育馆举行"},
		{Type: "course", BusinessID: "c1", Title: "法律基础", Text: "法律基础课程介绍"},
	}
	for _, d := range docs {
		if err := ix.UpsertDocument(ctx, d); err != nil {
			t.Fatalf("upsert %s/%s: %v", d.Type, d.BusinessID, err)
		}
	}

	results := ix.Search(ctx, "篮球比赛什么时候", 5)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].ID != "notice:n1:0" {
		t.Errorf("top hit = %s, want notice:n1:0", results[0].ID)
	}
	if results[0].Title != "篮球赛通知" {
		t.Errorf("title = %s", results[0].Title)
	}
	if results[0].Score <= results[len(results)-1].Score && len(results) > 1 {
		t.Error("results not ordered by score")
	}
}

func TestIndexSearchByCategoriesFiltersTypes(t *testing.T) {
	ix, _ := newTestIndex(t)
	ctx := context.Background()

	seed := []SourceDocument{
		{Type: "notice", BusinessID: "n1", Text: "篮球赛通知内容"},
		{Type: "course", BusinessID: "c1", Text: "篮球训练课程内容"},
		{Type: "task", BusinessID: "t1", Text: "篮球场地预订任务"},
	}
	for _, d := range seed {
		if err := ix.UpsertDocument(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	docs, counts := ix.SearchByCategories(ctx, "篮球", []string{"notice"}, 5)
	if len(docs) != 1 {
		t.Fatalf("result count = %d, want 1 (notice only)", len(docs))
	}
	if docs[0].Type != "notice" {
		t.Errorf("type = %s, want notice", docs[0].Type)
	}
	if counts["notice"] != 1 {
		t.Errorf("counts[notice] = %d, want 1", counts["notice"])
	}
}

func TestIndexSearchByCategoriesDeduplicates(t *testing.T) {
	ix, _ := newTestIndex(t)
	ctx := context.Background()

	// The same text stored under two types that both map onto the
	// queried categories must surface once.
	if err := ix.Upsert(ctx, "notice", "n1", "篮球赛安排"); err != nil {
		t.Fatal(err)
	}
	if err := ix.Upsert(ctx, "announcement", "a1", "篮球赛安排"); err != nil {
		t.Fatal(err)
	}

	docs, _ := ix.SearchByCategories(ctx, "篮球", []string{"notice", "notice"}, 5)
	seen := make(map[string]int)
	for _, d := range docs {
		seen[d.Content]++
	}
	for content, n := range seen {
		if n > 1 {
			t.Errorf("content %q surfaced %d times", content, n)
		}
	}
}

func TestIndexChunkedUpsertReplacesStale(t *testing.T) {
	ix, backend := newTestIndex(t)
	ctx := context.Background()

	long := strings.Repeat("篮球训练内容。", 300) // well past the course threshold
	if err := ix.UpsertDocument(ctx, SourceDocument{Type: "course", BusinessID: "c1", Text: long}); err != nil {
		t.Fatal(err)
	}
	chunkedCount := backend.Len()
	if chunkedCount < 2 {
		t.Fatalf("long document stored as %d records, want several chunks", chunkedCount)
	}

	// Re-upserting a short version must supersede every stale chunk.
	if err := ix.UpsertDocument(ctx, SourceDocument{Type: "course", BusinessID: "c1", Text: "篮球训练简介"}); err != nil {
		t.Fatal(err)
	}
	if got := backend.Len(); got != 1 {
		t.Errorf("after re-upsert backend holds %d records, want 1", got)
	}
}

func TestIndexRemove(t *testing.T) {
	ix, backend := newTestIndex(t)
	ctx := context.Background()

	if err := ix.Upsert(ctx, "notice", "n1", "篮球赛通知"); err != nil {
		t.Fatal(err)
	}
	if err := ix.Remove(ctx, "notice", "n1"); err != nil {
		t.Fatal(err)
	}
	if backend.Len() != 0 {
		t.Errorf("backend holds %d records after remove", backend.Len())
	}
}

func TestIndexSearchNeverRaises(t *testing.T) {
	backend := NewMemoryBackend()
	logger := log.New(os.Stdout, "", 0)
	ix := NewIndex(backend, &stubEmbedder{fail: true}, DefaultConfig(), logger)

	if got := ix.Search(context.Background(), "任何查询", 5); got != nil {
		t.Errorf("failed embedding should yield nil results, got %d", len(got))
	}

	docs, counts := ix.SearchByCategories(context.Background(), "任何查询", []string{"notice"}, 5)
	if len(docs) != 0 || len(counts) != 0 {
		t.Errorf("failed embedding should yield empty category results")
	}
}

func TestIndexReplaceAll(t *testing.T) {
	ix, backend := newTestIndex(t)
	ctx := context.Background()

	if err := ix.Upsert(ctx, "notice", "old", "旧的篮球通知"); err != nil {
		t.Fatal(err)
	}

	fresh := []SourceDocument{
		{Type: "course", BusinessID: "c1", Text: "法律课程", UpdatedAt: time.Now()},
		{Type: "attendance", BusinessID: "a1", Text: "考勤记录"},
	}
	if err := ix.ReplaceAll(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	if backend.Len() != 2 {
		t.Fatalf("backend holds %d records, want 2", backend.Len())
	}
	results := ix.Search(ctx, "篮球", 5)
	for _, r := range results {
		if r.ID == "notice:old:0" {
			t.Error("stale record survived ReplaceAll")
		}
	}
}
