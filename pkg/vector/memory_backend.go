package vector

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryBackend is an exact-scan in-memory Backend for development and
// tests. Clear swaps in a fresh store rather than deleting in place.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]Record)}
}

func (b *MemoryBackend) UpsertBatch(ctx context.Context, records []Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range records {
		b.records[r.ID] = r
	}
	return nil
}

func (b *MemoryBackend) DeleteByBusinessKey(ctx context.Context, docType, businessID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, r := range b.records {
		if metaString(r.Metadata, MetaType) == docType && metaString(r.Metadata, MetaBusinessID) == businessID {
			delete(b.records, id)
		}
	}
	return nil
}

func (b *MemoryBackend) Search(ctx context.Context, vec []float32, limit int, minScore float64) ([]Match, error) {
	return b.searchFiltered(vec, limit, minScore, nil)
}

func (b *MemoryBackend) SearchByTypes(ctx context.Context, vec []float32, types []string, limit int, minScore float64) ([]Match, error) {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return b.searchFiltered(vec, limit, minScore, allowed)
}

func (b *MemoryBackend) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = make(map[string]Record)
	return nil
}

// Len reports the number of stored records.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

func (b *MemoryBackend) searchFiltered(vec []float32, limit int, minScore float64, allowed map[string]bool) ([]Match, error) {
	if limit <= 0 {
		limit = 5
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	var matches []Match
	for _, r := range b.records {
		if allowed != nil && !allowed[metaString(r.Metadata, MetaType)] {
			continue
		}
		sim := cosineSimilarity(vec, r.Vector)
		if sim < minScore {
			continue
		}
		matches = append(matches, Match{Record: r, Similarity: sim})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func metaString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
