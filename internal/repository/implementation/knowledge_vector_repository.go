package implementation

import (
	"context"
	"fmt"

	"studio-assistant-be/internal/mapper"
	"studio-assistant-be/internal/model"
	"studio-assistant-be/pkg/vector"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KnowledgeVectorRepository is the Postgres/pgvector implementation of
// vector.Backend. Cosine distance in pgvector is 1 - cosine_similarity,
// so similarity is computed as 1 - (embedding <=> query_vector).
type KnowledgeVectorRepository struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeEmbeddingMapper
}

func NewKnowledgeVectorRepository(db *gorm.DB) vector.Backend {
	return &KnowledgeVectorRepository{
		db:     db,
		mapper: mapper.NewKnowledgeEmbeddingMapper(),
	}
}

func (r *KnowledgeVectorRepository) UpsertBatch(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	models := r.mapper.ToModels(records)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(models).Error
}

func (r *KnowledgeVectorRepository) DeleteByBusinessKey(ctx context.Context, docType, businessID string) error {
	return r.db.WithContext(ctx).
		Where("doc_type = ? AND business_id = ?", docType, businessID).
		Delete(&model.KnowledgeEmbedding{}).Error
}

func (r *KnowledgeVectorRepository) Search(ctx context.Context, vec []float32, limit int, minScore float64) ([]vector.Match, error) {
	return r.search(ctx, vec, nil, limit, minScore)
}

func (r *KnowledgeVectorRepository) SearchByTypes(ctx context.Context, vec []float32, types []string, limit int, minScore float64) ([]vector.Match, error) {
	return r.search(ctx, vec, types, limit, minScore)
}

func (r *KnowledgeVectorRepository) search(ctx context.Context, vec []float32, types []string, limit int, minScore float64) ([]vector.Match, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.KnowledgeEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vec)

	query := r.db.WithContext(ctx).
		Table("knowledge_embeddings").
		Select("knowledge_embeddings.*, 1 - (embedding <=> ?) as similarity", queryVector)

	if len(types) > 0 {
		query = query.Where("doc_type IN ?", types)
	}
	if minScore > 0 {
		query = query.Where("1 - (embedding <=> ?) >= ?", queryVector, minScore)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	matches := make([]vector.Match, len(results))
	for i, res := range results {
		matches[i] = vector.Match{
			Record:     r.mapper.ToRecord(&res.KnowledgeEmbedding),
			Similarity: res.Similarity,
		}
	}
	return matches, nil
}

func (r *KnowledgeVectorRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec("TRUNCATE TABLE knowledge_embeddings").Error
}
