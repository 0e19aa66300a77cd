package ingestion_engine

import (
	"context"
	"fmt"

	"github.com/markdave123-py/localrag/internal/core"
	"github.com/markdave123-py/localrag/internal/models"
)

// ChunkKey derives the deterministic store key for a content chunk:
// "{doc_id}:{page}:{idx}" for PDF chunks, "{doc_id}:{idx}" for text chunks.
func ChunkKey(docID string, page *int, idx int) string {
	if page != nil {
		return fmt.Sprintf("%s:%d:%d", docID, *page, idx)
	}
	return fmt.Sprintf("%s:%d", docID, idx)
}

// SummaryKey is the single fixed key of a document's summary pseudo-chunk.
func SummaryKey(docID string) string {
	return docID + ":summary"
}

// ChunkWriter embeds chunk texts and upserts them into the store with
// deterministic keys. Duplicate keys overwrite, so retries are safe.
type ChunkWriter struct {
	store    core.ChunkStore
	embedder core.EmbeddingProvider
}

func NewChunkWriter(store core.ChunkStore, embedder core.EmbeddingProvider) *ChunkWriter {
	return &ChunkWriter{store: store, embedder: embedder}
}

// UpsertBatch writes one batch of content chunks. baseIndex is the
// chunk_index of the first text; page tags PDF-origin chunks and is nil for
// plain text. Returns the number of chunks written; an empty batch is a no-op.
func (w *ChunkWriter) UpsertBatch(ctx context.Context, docID, filename string, page *int, baseIndex int, texts []string) (int, error) {
	if len(texts) == 0 {
		return 0, nil
	}

	vecs, err := w.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed batch: %w", err)
	}
	if len(vecs) != len(texts) {
		return 0, fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(texts))
	}

	chunks := make([]models.Chunk, len(texts))
	for i, t := range texts {
		idx := baseIndex + i
		chunks[i] = models.Chunk{
			Key:        ChunkKey(docID, page, idx),
			DocID:      docID,
			Filename:   filename,
			Page:       page,
			ChunkIndex: idx,
			Kind:       models.KindContent,
			Text:       t,
			Embedding:  vecs[i],
		}
	}

	if err := w.store.UpsertChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("upsert chunks: %w", err)
	}
	return len(chunks), nil
}

// UpsertSummary overwrites the document's summary pseudo-chunk.
func (w *ChunkWriter) UpsertSummary(ctx context.Context, docID, filename, summary string) error {
	vecs, err := w.embedder.EmbedTexts(ctx, []string{summary})
	if err != nil {
		return fmt.Errorf("embed summary: %w", err)
	}
	if len(vecs) != 1 {
		return fmt.Errorf("embed size mismatch: got %d want 1", len(vecs))
	}

	chunk := models.Chunk{
		Key:       SummaryKey(docID),
		DocID:     docID,
		Filename:  filename,
		Kind:      models.KindSummary,
		Text:      summary,
		Embedding: vecs[0],
	}
	if err := w.store.UpsertChunks(ctx, []models.Chunk{chunk}); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}
