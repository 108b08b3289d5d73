package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeEmbedding struct {
	Id         string            `gorm:"type:text;primaryKey"` // type:businessId:chunkIndex
	Document   string            `gorm:"type:text"`
	Embedding  pgvector.Vector   `gorm:"type:vector(768)"` // text-embedding-004 / nomic-embed-text dimensions
	DocType    string            `gorm:"type:text;not null;index"`
	BusinessId string            `gorm:"type:text;not null;index"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime"`
}

func (KnowledgeEmbedding) TableName() string {
	return "knowledge_embeddings"
}
