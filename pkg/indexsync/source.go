package indexsync

import (
	"context"
	"time"
)

// SourceRow is one row from the source-of-truth store, reduced to what
// the index needs.
type SourceRow struct {
	BusinessID string
	Title      string
	Content    string
	UpdatedAt  time.Time
}

// RowSource supplies source rows per document type. Implementations
// live outside this core (typically a database-backed adapter).
type RowSource interface {
	Rows(ctx context.Context, docType string) ([]SourceRow, error)
	Row(ctx context.Context, docType, businessID string) (*SourceRow, error)
}
