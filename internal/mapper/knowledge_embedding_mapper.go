package mapper

import (
	"time"

	"studio-assistant-be/internal/model"
	"studio-assistant-be/pkg/vector"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeEmbeddingMapper struct{}

func NewKnowledgeEmbeddingMapper() *KnowledgeEmbeddingMapper {
	return &KnowledgeEmbeddingMapper{}
}

func (m *KnowledgeEmbeddingMapper) ToRecord(e *model.KnowledgeEmbedding) vector.Record {
	metadata := make(map[string]interface{}, len(e.Metadata)+2)
	for k, v := range e.Metadata {
		metadata[k] = v
	}
	// Indexed columns win over whatever the JSON blob carries.
	metadata[vector.MetaType] = e.DocType
	metadata[vector.MetaBusinessID] = e.BusinessId

	return vector.Record{
		ID:       e.Id,
		Document: e.Document,
		Metadata: metadata,
		Vector:   e.Embedding.Slice(),
	}
}

func (m *KnowledgeEmbeddingMapper) ToModel(r vector.Record) *model.KnowledgeEmbedding {
	docType, _ := r.Metadata[vector.MetaType].(string)
	businessId, _ := r.Metadata[vector.MetaBusinessID].(string)

	metadata := make(datatypes.JSONMap, len(r.Metadata))
	for k, v := range r.Metadata {
		metadata[k] = v
	}

	return &model.KnowledgeEmbedding{
		Id:         r.ID,
		Document:   r.Document,
		Embedding:  pgvector.NewVector(r.Vector),
		DocType:    docType,
		BusinessId: businessId,
		Metadata:   metadata,
		UpdatedAt:  time.Now(),
	}
}

func (m *KnowledgeEmbeddingMapper) ToModels(records []vector.Record) []*model.KnowledgeEmbedding {
	models := make([]*model.KnowledgeEmbedding, len(records))
	for i, r := range records {
		models[i] = m.ToModel(r)
	}
	return models
}
