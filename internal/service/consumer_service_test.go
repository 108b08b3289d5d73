package service

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"studio-assistant-be/pkg/embedding"
	"studio-assistant-be/pkg/indexsync"
	"studio-assistant-be/pkg/vector"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type staticEmbedder struct{}

func (staticEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

type staticSource struct {
	rows map[string]indexsync.SourceRow // "type/id" -> row
}

func (s *staticSource) Rows(ctx context.Context, docType string) ([]indexsync.SourceRow, error) {
	var out []indexsync.SourceRow
	for key, row := range s.rows {
		if len(key) > len(docType) && key[:len(docType)] == docType {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *staticSource) Row(ctx context.Context, docType, businessID string) (*indexsync.SourceRow, error) {
	if row, ok := s.rows[docType+"/"+businessID]; ok {
		return &row, nil
	}
	return nil, nil
}

func TestConsumerIndexesPublishedChanges(t *testing.T) {
	logger := log.New(os.Stdout, "", 0)
	backend := vector.NewMemoryBackend()
	ix := vector.NewIndex(backend, staticEmbedder{}, vector.DefaultConfig(), logger)

	source := &staticSource{rows: map[string]indexsync.SourceRow{
		"notice/n1": {BusinessID: "n1", Title: "篮球赛", Content: "周五举行篮球赛"},
	}}
	orchestrator := indexsync.NewOrchestrator(ix, source, []string{"notice"}, logger)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	const topic = "KNOWLEDGE_CHANGED"

	consumer := NewConsumerService(pubSub, topic, orchestrator)
	if err := consumer.Consume(context.Background()); err != nil {
		t.Fatal(err)
	}

	publisher := NewPublisherService(topic, pubSub, nil)
	if err := publisher.PublishChange(context.Background(), "notice", "n1"); err != nil {
		t.Fatal(err)
	}

	// The consumer processes asynchronously; wait for the record.
	deadline := time.Now().Add(2 * time.Second)
	for backend.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if backend.Len() != 1 {
		t.Fatalf("backend holds %d records, want 1", backend.Len())
	}
}

func TestConsumerRemovesDeletedRows(t *testing.T) {
	logger := log.New(os.Stdout, "", 0)
	backend := vector.NewMemoryBackend()
	ix := vector.NewIndex(backend, staticEmbedder{}, vector.DefaultConfig(), logger)

	source := &staticSource{rows: map[string]indexsync.SourceRow{
		"notice/n1": {BusinessID: "n1", Content: "周五举行篮球赛"},
	}}
	orchestrator := indexsync.NewOrchestrator(ix, source, []string{"notice"}, logger)

	if err := orchestrator.SyncOne(context.Background(), "notice", "n1"); err != nil {
		t.Fatal(err)
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	const topic = "KNOWLEDGE_CHANGED"

	consumer := NewConsumerService(pubSub, topic, orchestrator)
	if err := consumer.Consume(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Simulate a deletion in the source, then announce the change.
	delete(source.rows, "notice/n1")
	publisher := NewPublisherService(topic, pubSub, nil)
	if err := publisher.PublishChange(context.Background(), "notice", "n1"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for backend.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if backend.Len() != 0 {
		t.Fatalf("backend holds %d records after delete event, want 0", backend.Len())
	}
}
