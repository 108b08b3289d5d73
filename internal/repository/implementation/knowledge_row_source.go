package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio-assistant-be/pkg/indexsync"

	"gorm.io/gorm"
)

// defaultSourceTables maps each indexable document type onto the app
// table that owns it. Every table exposes id, title, content and
// updated_at through the selects below.
var defaultSourceTables = map[string]sourceTable{
	"user":         {table: "users", title: "name", content: "profile"},
	"student":      {table: "students", title: "name", content: "profile"},
	"member":       {table: "members", title: "name", content: "profile"},
	"course":       {table: "courses", title: "title", content: "description"},
	"material":     {table: "materials", title: "title", content: "body"},
	"schedule":     {table: "schedules", title: "title", content: "detail"},
	"task":         {table: "tasks", title: "title", content: "detail"},
	"todo":         {table: "todos", title: "title", content: "detail"},
	"attendance":   {table: "attendance_records", title: "title", content: "detail"},
	"leave":        {table: "leave_requests", title: "title", content: "reason"},
	"notice":       {table: "notices", title: "title", content: "body"},
	"announcement": {table: "announcements", title: "title", content: "body"},
	"studio":       {table: "studios", title: "name", content: "description"},
	"department":   {table: "departments", title: "name", content: "description"},
	"position":     {table: "positions", title: "name", content: "description"},
}

type sourceTable struct {
	table   string
	title   string
	content string
}

// KnowledgeRowSource reads source-of-truth rows for the index from the
// application database.
type KnowledgeRowSource struct {
	db     *gorm.DB
	tables map[string]sourceTable
}

func NewKnowledgeRowSource(db *gorm.DB) *KnowledgeRowSource {
	return &KnowledgeRowSource{
		db:     db,
		tables: defaultSourceTables,
	}
}

// Types lists every document type this source can produce rows for.
func (s *KnowledgeRowSource) Types() []string {
	types := make([]string, 0, len(s.tables))
	for t := range s.tables {
		types = append(types, t)
	}
	return types
}

type sourceRowScan struct {
	Id        string
	Title     string
	Content   string
	UpdatedAt time.Time
}

func (s *KnowledgeRowSource) Rows(ctx context.Context, docType string) ([]indexsync.SourceRow, error) {
	tbl, ok := s.tables[docType]
	if !ok {
		return nil, fmt.Errorf("unknown document type: %s", docType)
	}

	var scans []sourceRowScan
	err := s.db.WithContext(ctx).
		Table(tbl.table).
		Select(fmt.Sprintf("id, %s as title, %s as content, updated_at", tbl.title, tbl.content)).
		Scan(&scans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", docType, err)
	}

	rows := make([]indexsync.SourceRow, len(scans))
	for i, sc := range scans {
		rows[i] = toSourceRow(sc)
	}
	return rows, nil
}

func (s *KnowledgeRowSource) Row(ctx context.Context, docType, businessID string) (*indexsync.SourceRow, error) {
	tbl, ok := s.tables[docType]
	if !ok {
		return nil, fmt.Errorf("unknown document type: %s", docType)
	}

	var scan sourceRowScan
	err := s.db.WithContext(ctx).
		Table(tbl.table).
		Select(fmt.Sprintf("id, %s as title, %s as content, updated_at", tbl.title, tbl.content)).
		Where("id = ?", businessID).
		Take(&scan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s/%s: %w", docType, businessID, err)
	}

	row := toSourceRow(scan)
	return &row, nil
}

func toSourceRow(sc sourceRowScan) indexsync.SourceRow {
	return indexsync.SourceRow{
		BusinessID: sc.Id,
		Title:      sc.Title,
		Content:    sc.Content,
		UpdatedAt:  sc.UpdatedAt,
	}
}
