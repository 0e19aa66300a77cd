package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/localrag/internal/config"
	"github.com/markdave123-py/localrag/internal/core"
	"github.com/markdave123-py/localrag/internal/models"
)

// DatabaseClient implements core.ChunkStore on Postgres + pgvector.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.ChunkStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, cfg.EmbedDim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// UpsertChunks writes a batch keyed on chunk id. Existing keys are
// overwritten, so re-ingesting a document replaces its chunks in place.
func (c *DatabaseClient) UpsertChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO chunks
			(id, doc_id, filename, page, chunk_index, kind, body, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (id) DO UPDATE SET
			doc_id      = EXCLUDED.doc_id,
			filename    = EXCLUDED.filename,
			page        = EXCLUDED.page,
			chunk_index = EXCLUDED.chunk_index,
			kind        = EXCLUDED.kind,
			body        = EXCLUDED.body,
			embedding   = EXCLUDED.embedding,
			updated_at  = now()
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)

		if _, err := stmt.ExecContext(ctx,
			ch.Key, ch.DocID, ch.Filename, ch.Page, ch.ChunkIndex, ch.Kind, ch.Text, vec,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert chunk %s: %w", ch.Key, err)
		}
	}
	return tx.Commit()
}

// Search finds the limit closest chunks by cosine distance, optionally
// restricted to one document and/or one kind. Scores are distances: lower is
// more similar.
func (c *DatabaseClient) Search(ctx context.Context, queryVec []float32, filter core.SearchFilter, limit int) ([]models.SearchResult, error) {
	vec := pgvector.NewVector(queryVec)

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, doc_id, filename, page, chunk_index, kind, body, embedding <=> $1 AS score
		FROM chunks
	`)
	args := []any{vec}
	var conds []string
	if filter.DocID != "" {
		args = append(args, filter.DocID)
		conds = append(conds, fmt.Sprintf("doc_id = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY score ASC LIMIT $%d", len(args)))

	rows, err := c.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SearchResult
	for rows.Next() {
		var (
			ch    models.Chunk
			score float64
		)
		if err := rows.Scan(&ch.Key, &ch.DocID, &ch.Filename, &ch.Page, &ch.ChunkIndex, &ch.Kind, &ch.Text, &score); err != nil {
			return nil, err
		}
		out = append(out, models.SearchResult{Chunk: ch, Score: score})
	}
	return out, rows.Err()
}

// ListDocuments returns one entry per doc_id present in the store.
func (c *DatabaseClient) ListDocuments(ctx context.Context) ([]models.DocumentRef, error) {
	const q = `
		SELECT DISTINCT ON (doc_id) doc_id, filename
		FROM chunks
		ORDER BY doc_id
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DocumentRef
	for rows.Next() {
		var d models.DocumentRef
		if err := rows.Scan(&d.DocID, &d.Filename); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

var _ core.ChunkStore = (*DatabaseClient)(nil)
