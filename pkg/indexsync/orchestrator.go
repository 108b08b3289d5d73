package indexsync

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"studio-assistant-be/pkg/events"
	"studio-assistant-be/pkg/vector"
)

// Orchestrator batch-(re)builds vector index content from the
// source-of-truth store. Only one rebuild runs at a time; the
// clear + repopulate sequence executes inside the index's own
// rebuild critical section so searches never observe an empty index.
type Orchestrator struct {
	index  *vector.Index
	source RowSource
	types  []string
	logger *log.Logger

	mu sync.Mutex
}

func NewOrchestrator(index *vector.Index, source RowSource, types []string, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		index:  index,
		source: source,
		types:  types,
		logger: logger,
	}
}

// SyncType re-indexes every row of one document type incrementally.
func (o *Orchestrator) SyncType(ctx context.Context, docType string) (int, error) {
	rows, err := o.source.Rows(ctx, docType)
	if err != nil {
		return 0, fmt.Errorf("load %s rows: %w", docType, err)
	}

	synced := 0
	for _, row := range rows {
		if err := o.index.UpsertDocument(ctx, toSourceDocument(docType, row)); err != nil {
			o.logger.Printf("[SYNC] Upsert failed for %s/%s: %v", docType, row.BusinessID, err)
			continue
		}
		synced++
	}
	o.logger.Printf("[SYNC] Type %s: %d/%d rows indexed", docType, synced, len(rows))
	return synced, nil
}

// SyncOne re-indexes a single row, used by the change-event consumer.
// A row that no longer exists in the source is removed from the index,
// so delete events use the same path as updates.
func (o *Orchestrator) SyncOne(ctx context.Context, docType, businessID string) error {
	row, err := o.source.Row(ctx, docType, businessID)
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", docType, businessID, err)
	}
	if row == nil {
		o.logger.Printf("[SYNC] Source row %s/%s gone, removing from index", docType, businessID)
		return o.index.Remove(ctx, docType, businessID)
	}
	return o.index.UpsertDocument(ctx, toSourceDocument(docType, *row))
}

// HandleKnowledgeEvent adapts change events arriving from the bus onto
// SyncOne, so sibling services announcing a row change trigger a local
// re-index. Events of other types, or with an incomplete payload, are
// acknowledged without work rather than redelivered forever.
func (o *Orchestrator) HandleKnowledgeEvent(ctx context.Context, event events.Event) error {
	if event.EventType() != events.TypeKnowledgeChanged {
		return nil
	}
	payload := event.Payload()
	docType, _ := payload["type"].(string)
	businessID, _ := payload["business_id"].(string)
	if docType == "" || businessID == "" {
		o.logger.Printf("[SYNC] Dropping change event with incomplete payload: %v", payload)
		return nil
	}
	return o.SyncOne(ctx, docType, businessID)
}

// RebuildAll clears the index and repopulates it from every configured
// type in one critical section.
func (o *Orchestrator) RebuildAll(ctx context.Context) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var docs []vector.SourceDocument
	for _, docType := range o.types {
		rows, err := o.source.Rows(ctx, docType)
		if err != nil {
			return 0, fmt.Errorf("load %s rows: %w", docType, err)
		}
		for _, row := range rows {
			docs = append(docs, toSourceDocument(docType, row))
		}
	}

	if err := o.index.ReplaceAll(ctx, docs); err != nil {
		return 0, err
	}
	o.logger.Printf("[SYNC] Full rebuild complete: %d source documents", len(docs))
	return len(docs), nil
}

// toSourceDocument composes the indexable text for a row. User-like
// rows carry their business id in the text so identity-scoped
// retrieval can verify ownership.
func toSourceDocument(docType string, row SourceRow) vector.SourceDocument {
	var sb strings.Builder
	if row.Title != "" {
		sb.WriteString("标题: ")
		sb.WriteString(row.Title)
		sb.WriteString("\n")
	}
	if isUserType(docType) {
		sb.WriteString("用户ID: ")
		sb.WriteString(row.BusinessID)
		sb.WriteString("\n")
	}
	sb.WriteString(row.Content)

	return vector.SourceDocument{
		Type:       docType,
		BusinessID: row.BusinessID,
		Title:      row.Title,
		Text:       sb.String(),
		UpdatedAt:  row.UpdatedAt,
	}
}

func isUserType(docType string) bool {
	switch docType {
	case "user", "student", "member":
		return true
	}
	return false
}
