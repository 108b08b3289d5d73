package vector

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"studio-assistant-be/pkg/chunking"
	"studio-assistant-be/pkg/embedding"
	"studio-assistant-be/pkg/store"
)

// categoryTypes maps a query category onto the underlying document
// types it accepts.
var categoryTypes = map[string][]string{
	"user":              {"user", "student", "member"},
	"course":            {"course", "material", "schedule"},
	"task":              {"task", "todo"},
	"attendance":        {"attendance", "leave"},
	"notice":            {"notice", "announcement"},
	"studio_management": {"studio", "department", "position"},
	"technical":         {"material", "document"},
}

// TypesForCategory exposes the category -> document type mapping.
// Unknown categories map onto themselves.
func TypesForCategory(category string) []string {
	if types, ok := categoryTypes[category]; ok {
		return types
	}
	return []string{category}
}

// SourceDocument is one source-of-truth row to be indexed.
type SourceDocument struct {
	Type       string
	BusinessID string
	Title      string
	Text       string
	UpdatedAt  time.Time
}

// Config holds index tuning options.
type Config struct {
	OverFetch    int           // candidate multiplier per requested result
	EmbedTimeout time.Duration // budget per external embedding call
}

func DefaultConfig() Config {
	return Config{
		OverFetch:    3,
		EmbedTimeout: 15 * time.Second,
	}
}

// Index stores embedded document chunks and answers similarity
// queries, optionally narrowed to categories. Reads and writes may run
// concurrently; ReplaceAll is the single-writer rebuild critical
// section.
type Index struct {
	backend  Backend
	embedder embedding.EmbeddingProvider
	cfg      Config
	logger   *log.Logger

	mu sync.RWMutex // searches take R, rebuild takes W
}

func NewIndex(backend Backend, embedder embedding.EmbeddingProvider, cfg Config, logger *log.Logger) *Index {
	if cfg.OverFetch <= 1 {
		cfg.OverFetch = 3
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 15 * time.Second
	}
	return &Index{
		backend:  backend,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Upsert (re)indexes one document. Long documents are chunked per the
// type's policy; any previously stored records for the same business
// key are superseded.
func (ix *Index) Upsert(ctx context.Context, docType, businessID, text string) error {
	return ix.UpsertDocument(ctx, SourceDocument{
		Type:       docType,
		BusinessID: businessID,
		Text:       text,
	})
}

// UpsertDocument is Upsert with title and timestamp metadata attached.
func (ix *Index) UpsertDocument(ctx context.Context, doc SourceDocument) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.upsertLocked(ctx, doc)
}

// Remove drops every chunk stored for a source row.
func (ix *Index) Remove(ctx context.Context, docType, businessID string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.backend.DeleteByBusinessKey(ctx, docType, businessID)
}

func (ix *Index) upsertLocked(ctx context.Context, doc SourceDocument) error {
	policy := chunking.PolicyFor(doc.Type)
	prepared := PreprocessDocument(doc.Type, doc.Text)

	var chunks []chunking.Chunk
	chunked := utf8.RuneCountInString(prepared) > policy.Threshold
	if chunked {
		chunks = chunking.Split(prepared, policy.ChunkSize, policy.Overlap, policy.Mode)
	} else {
		chunks = []chunking.Chunk{{Text: prepared, Start: 0, End: utf8.RuneCountInString(prepared), Index: 0, Total: 1}}
	}

	records := make([]Record, 0, len(chunks))
	for _, chunk := range chunks {
		embedCtx, cancel := context.WithTimeout(ctx, ix.cfg.EmbedTimeout)
		res, err := ix.embedder.Generate(embedCtx, chunk.Text, embedding.TaskDocument)
		cancel()
		if err != nil {
			return fmt.Errorf("embed chunk %d of %s/%s: %w", chunk.Index, doc.Type, doc.BusinessID, err)
		}

		meta := map[string]interface{}{
			MetaType:        doc.Type,
			MetaBusinessID:  doc.BusinessID,
			MetaIsChunked:   chunked,
			MetaChunkIndex:  chunk.Index,
			MetaTotalChunks: chunk.Total,
		}
		if doc.Title != "" {
			meta[MetaTitle] = doc.Title
		}
		if !doc.UpdatedAt.IsZero() {
			meta[MetaUpdatedAt] = doc.UpdatedAt.Format(time.RFC3339)
		}

		records = append(records, Record{
			ID:       fmt.Sprintf("%s:%s:%d", doc.Type, doc.BusinessID, chunk.Index),
			Document: chunk.Text,
			Metadata: meta,
			Vector:   res.Embedding.Values,
		})
	}

	// Supersede old entries for this business key before inserting
	if err := ix.backend.DeleteByBusinessKey(ctx, doc.Type, doc.BusinessID); err != nil {
		return fmt.Errorf("delete stale records for %s/%s: %w", doc.Type, doc.BusinessID, err)
	}
	if err := ix.backend.UpsertBatch(ctx, records); err != nil {
		return fmt.Errorf("store %d records for %s/%s: %w", len(records), doc.Type, doc.BusinessID, err)
	}

	ix.logger.Printf("[INDEX] Upserted %s/%s: %d records (chunked=%v)", doc.Type, doc.BusinessID, len(records), chunked)
	return nil
}

// Search embeds the query and returns up to maxResults matches sorted
// by descending similarity. It never raises: on any embedding or
// backend failure it logs and returns an empty result.
func (ix *Index) Search(ctx context.Context, queryText string, maxResults int) []store.Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if maxResults <= 0 {
		maxResults = 5
	}

	vec, err := ix.embedQuery(ctx, queryText)
	if err != nil {
		ix.logger.Printf("[ERROR] Query embedding failed: %v", err)
		return nil
	}
	return ix.searchLocked(ctx, vec, maxResults)
}

// searchLocked runs an unfiltered search; callers hold at least the
// read lock.
func (ix *Index) searchLocked(ctx context.Context, vec []float32, maxResults int) []store.Document {
	matches, err := ix.backend.Search(ctx, vec, maxResults*ix.cfg.OverFetch, 0)
	if err != nil {
		ix.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil
	}
	docs := toDocuments(matches)
	if len(docs) > maxResults {
		docs = docs[:maxResults]
	}
	return docs
}

// SearchByCategories runs one similarity search per category, keeps
// only matches whose stored type maps onto that category, then merges,
// deduplicates by text identity (highest score wins), sorts and
// truncates. The second return value counts matches per category.
// On total failure it falls back to an unfiltered Search.
func (ix *Index) SearchByCategories(ctx context.Context, queryText string, categories []string, maxResults int) ([]store.Document, map[string]int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if maxResults <= 0 {
		maxResults = 5
	}
	counts := make(map[string]int, len(categories))

	vec, err := ix.embedQuery(ctx, queryText)
	if err != nil {
		ix.logger.Printf("[ERROR] Query embedding failed: %v", err)
		return nil, counts
	}

	best := make(map[string]store.Document) // text identity -> best-scored doc
	failures := 0
	for _, category := range categories {
		matches, err := ix.backend.SearchByTypes(ctx, vec, TypesForCategory(category), maxResults*ix.cfg.OverFetch, 0)
		if err != nil {
			ix.logger.Printf("[WARN] Category search failed for %q: %v", category, err)
			failures++
			continue
		}
		counts[category] = len(matches)
		for _, doc := range toDocuments(matches) {
			if prev, ok := best[doc.Content]; !ok || doc.Score > prev.Score {
				best[doc.Content] = doc
			}
		}
	}

	if failures == len(categories) && len(categories) > 0 {
		ix.logger.Printf("[WARN] All category searches failed, falling back to global search")
		return ix.searchLocked(ctx, vec, maxResults), counts
	}

	docs := make([]store.Document, 0, len(best))
	for _, doc := range best {
		docs = append(docs, doc)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].ID < docs[j].ID
	})
	if len(docs) > maxResults {
		docs = docs[:maxResults]
	}
	return docs, counts
}

// Clear removes all indexed content.
func (ix *Index) Clear(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.backend.Clear(ctx)
}

// ReplaceAll atomically rebuilds the index content: searches block
// until the clear + repopulate sequence completes, so no reader
// observes a transiently empty index.
func (ix *Index) ReplaceAll(ctx context.Context, docs []SourceDocument) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.backend.Clear(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	for _, doc := range docs {
		if err := ix.upsertLocked(ctx, doc); err != nil {
			return err
		}
	}
	ix.logger.Printf("[INDEX] Rebuilt with %d source documents", len(docs))
	return nil
}

func (ix *Index) embedQuery(ctx context.Context, queryText string) ([]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, ix.cfg.EmbedTimeout)
	defer cancel()
	res, err := ix.embedder.Generate(embedCtx, queryText, embedding.TaskQuery)
	if err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

func toDocuments(matches []Match) []store.Document {
	docs := make([]store.Document, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, store.Document{
			ID:       m.ID,
			Type:     metaString(m.Metadata, MetaType),
			Title:    metaString(m.Metadata, MetaTitle),
			Content:  m.Document,
			Score:    m.Similarity,
			Metadata: m.Metadata,
		})
	}
	return docs
}
