package vector

import "context"

// Metadata keys stored on every indexed record
const (
	MetaType        = "type"
	MetaBusinessID  = "business_id"
	MetaIsChunked   = "is_chunked"
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"
	MetaTitle       = "title"
	MetaUpdatedAt   = "updated_at"
)

// Record is one stored entry: a chunk (or whole document) with its
// embedding and metadata.
type Record struct {
	ID       string
	Document string
	Metadata map[string]interface{}
	Vector   []float32
}

// Match is a record returned from a similarity search.
type Match struct {
	Record
	Similarity float64
}

// Backend is the nearest-neighbor storage primitive. Implementations
// must support Clear explicitly; a backend without a native clear
// operation substitutes a fresh empty store.
type Backend interface {
	UpsertBatch(ctx context.Context, records []Record) error
	DeleteByBusinessKey(ctx context.Context, docType, businessID string) error
	Search(ctx context.Context, vec []float32, limit int, minScore float64) ([]Match, error)
	SearchByTypes(ctx context.Context, vec []float32, types []string, limit int, minScore float64) ([]Match, error)
	Clear(ctx context.Context) error
}
