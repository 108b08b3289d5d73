package rag

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"studio-assistant-be/pkg/ai/classifier"
	"studio-assistant-be/pkg/embedding"
	"studio-assistant-be/pkg/vector"
)

// topicEmbedder returns a fixed unit vector per topic keyword so the
// retrieval flow is deterministic end to end.
type topicEmbedder struct{}

var pipelineTopicVectors = map[string][]float32{
	"篮球": {1, 0, 0},
	"通知": {1, 0, 0}, // notices in these fixtures are about basketball
	"法律": {0, 1, 0},
	"课程": {0, 1, 0},
}

func (topicEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	vec := []float32{0.577, 0.577, 0.577}
	for kw, v := range pipelineTopicVectors {
		if strings.Contains(text, kw) {
			vec = v
			break
		}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

func newTestPipeline(t *testing.T) (*Pipeline, *vector.Index) {
	t.Helper()
	logger := log.New(os.Stdout, "", 0)
	ix := vector.NewIndex(vector.NewMemoryBackend(), topicEmbedder{}, vector.DefaultConfig(), logger)
	p := NewPipeline(classifier.New(0.1), ix, DefaultConfig(), logger)
	return p, ix
}

func seedKnowledge(t *testing.T, ix *vector.Index) {
	t.Helper()
	ctx := context.Background()
	docs := []vector.SourceDocument{
		{Type: "notice", BusinessID: "n1", Title: "篮球赛通知", Text: "篮球赛将于周五在体育馆举行，请各位成员准时参加"},
		{Type: "notice", BusinessID: "n2", Title: "篮球训练通知", Text: "篮球训练时间调整为每周三晚上七点进行"},
		{Type: "course", BusinessID: "c1", Title: "法律基础", Text: "法律基础课程将讲解合同法与劳动法的核心内容"},
	}
	for _, d := range docs {
		if err := ix.UpsertDocument(ctx, d); err != nil {
			t.Fatalf("seed %s/%s: %v", d.Type, d.BusinessID, err)
		}
	}
}

func TestRetrieveSingleStrategy(t *testing.T) {
	p, ix := newTestPipeline(t)
	seedKnowledge(t, ix)

	result := p.Retrieve(context.Background(), "最近有什么篮球通知", 5, "")
	if len(result.Matches) == 0 {
		t.Fatal("no matches")
	}
	for _, m := range result.Matches {
		if m.Category != "notice" {
			t.Errorf("match %s category = %s, want notice", m.ID, m.Category)
		}
	}
	if !strings.Contains(result.Summary, "通知公告") {
		t.Errorf("summary = %q, want a notice count", result.Summary)
	}
	if !strings.Contains(result.Summary, "共找到") {
		t.Errorf("summary = %q, want the count prefix", result.Summary)
	}
}

func TestRetrieveEmptyIndex(t *testing.T) {
	p, _ := newTestPipeline(t)

	result := p.Retrieve(context.Background(), "最近有什么篮球通知", 5, "")
	if len(result.Matches) != 0 {
		t.Errorf("matches = %d, want 0", len(result.Matches))
	}
	if result.Summary != "没有找到相关内容。" {
		t.Errorf("summary = %q", result.Summary)
	}
}

func TestRetrieveRanksMatchesDescending(t *testing.T) {
	p, ix := newTestPipeline(t)
	seedKnowledge(t, ix)

	result := p.Retrieve(context.Background(), "篮球训练安排的通知", 5, "")
	for i := 1; i < len(result.Matches); i++ {
		if result.Matches[i].FinalScore > result.Matches[i-1].FinalScore {
			t.Errorf("matches not sorted at %d", i)
		}
	}
}

func TestRetrieveIdentityScoped(t *testing.T) {
	p, ix := newTestPipeline(t)
	ctx := context.Background()

	users := []vector.SourceDocument{
		{Type: "user", BusinessID: "42", Text: "用户ID: 42\n姓名 张三 电话 13800000042 小组 后端"},
		{Type: "user", BusinessID: "43", Text: "用户ID: 43\n姓名 李四 电话 13800000043 小组 前端"},
	}
	for _, d := range users {
		if err := ix.UpsertDocument(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	result := p.Retrieve(ctx, "我的信息", 5, "42")
	if len(result.Matches) == 0 {
		t.Fatal("caller 42 should find their profile")
	}
	for _, m := range result.Matches {
		if strings.Contains(m.Content, "43") {
			t.Errorf("caller 42 received caller 43's record: %q", m.Content)
		}
	}
}

func TestRetrieveIdentityNoLeakOnMiss(t *testing.T) {
	p, ix := newTestPipeline(t)
	ctx := context.Background()

	if err := ix.UpsertDocument(ctx, vector.SourceDocument{
		Type: "user", BusinessID: "42",
		Text: "用户ID: 42\n姓名 张三 电话 13800000042",
	}); err != nil {
		t.Fatal(err)
	}

	// Caller 4 is a prefix of 42; boundary matching must reject it.
	result := p.Retrieve(ctx, "我的信息", 5, "4")
	if len(result.Matches) != 0 {
		t.Fatalf("caller 4 must not see caller 42's record: %+v", result.Matches)
	}
	if !strings.Contains(result.Summary, "未找到") {
		t.Errorf("summary = %q, want the safe not-found message", result.Summary)
	}
}

func TestRetrieveIdentityIgnoredWithoutCaller(t *testing.T) {
	p, ix := newTestPipeline(t)
	seedKnowledge(t, ix)

	// Without a caller id the identity path is unavailable; the query
	// goes through the normal flow and must not panic.
	result := p.Retrieve(context.Background(), "我的信息", 5, "")
	if result == nil {
		t.Fatal("nil result")
	}
}

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		name    string
		results []classifier.Result
		want    string
	}{
		{"no categories", nil, strategyGlobal},
		{"one category", []classifier.Result{{Category: "notice", Score: 0.8}}, strategySingle},
		{
			"two confident categories",
			[]classifier.Result{{Category: "notice", Score: 0.5}, {Category: "course", Score: 0.4}},
			strategyMulti,
		},
		{
			"two weak categories fall back to single",
			[]classifier.Result{{Category: "notice", Score: 0.2}, {Category: "course", Score: 0.15}},
			strategySingle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strategyFor(tt.results, 0.3); got != tt.want {
				t.Errorf("strategyFor = %s, want %s", got, tt.want)
			}
		})
	}
}
