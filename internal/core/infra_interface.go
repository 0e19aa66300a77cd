package core

import (
	"context"
	"io"

	"github.com/markdave123-py/localrag/internal/models"
)

// SearchFilter narrows a similarity search. Zero values mean "no restriction".
type SearchFilter struct {
	DocID string
	Kind  string
}

// ChunkStore abstracts the vector store so higher layers never depend on a
// specific backend. Upserts are keyed on Chunk.Key: duplicate keys overwrite,
// they never error.
type ChunkStore interface {
	UpsertChunks(ctx context.Context, chunks []models.Chunk) error
	Search(ctx context.Context, queryVec []float32, filter SearchFilter, limit int) ([]models.SearchResult, error)
	ListDocuments(ctx context.Context) ([]models.DocumentRef, error)
	Close() error
}

// ObjectStore holds the raw uploaded files, keyed "{doc_id}.pdf" /
// "{doc_id}.txt". Abstract so local disk can be swapped for S3.
type ObjectStore interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
