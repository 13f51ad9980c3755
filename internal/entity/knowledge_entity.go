package entity

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Document is one ingested knowledge-base source (a page, a PDF, a doc).
type Document struct {
	Id        int64  `gorm:"primaryKey;autoIncrement"`
	Title     string `gorm:"not null"`
	SourceURI string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (Document) TableName() string { return "documents" }

// Chunk is one embeddable slice of a document. Embedding dimension follows
// text-embedding-3-small / nomic-embed-text style models (768).
type Chunk struct {
	Id         int64 `gorm:"primaryKey;autoIncrement"`
	DocumentId int64 `gorm:"index;not null"`
	ChunkNo    int   `gorm:"not null"`
	Content    string
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt  time.Time
}

func (Chunk) TableName() string { return "chunks" }
