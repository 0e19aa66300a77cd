package app

import (
	"context"
	"fmt"
	"log"

	"github.com/markdave123-py/localrag/internal/config"
	"github.com/markdave123-py/localrag/internal/core"
	db "github.com/markdave123-py/localrag/internal/core/database"
	"github.com/markdave123-py/localrag/internal/core/ingestion_engine"
	"github.com/markdave123-py/localrag/internal/core/jobs"
	"github.com/markdave123-py/localrag/internal/core/llm"
	objectclient "github.com/markdave123-py/localrag/internal/core/object-client"
	"github.com/markdave123-py/localrag/internal/services"
)

type App struct {
	Store     core.ChunkStore
	Objects   core.ObjectStore
	Embedder  *llm.GeminiEmbedder
	Generator *llm.GeminiLLM
	Server    *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := db.NewDatabaseClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Chunk store initialized and ready.")

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	generator, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm, %w", err)
	}

	writer := ingestion_engine.NewChunkWriter(store, embedder)
	summarizer := ingestion_engine.NewSummarizer(generator, writer)
	ingestor := ingestion_engine.NewIngestor(writer, summarizer, ingestion_engine.IngestConfig{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		BatchChars:   cfg.BatchChars,
		SummaryChars: cfg.SummaryChars,
	})

	jobMgr := jobs.NewManager()
	ingestSvc := services.NewIngestService(objects, store, ingestor, ingestion_engine.LedongthucOpener{}, jobMgr)
	querySvc := services.NewQueryService(store, embedder, generator, cfg.TopK, cfg.MaxContextChunks, cfg.ScoreThreshold)

	server := NewServer(cfg, ingestSvc, querySvc, jobMgr)

	return &App{
		Store:     store,
		Objects:   objects,
		Embedder:  embedder,
		Generator: generator,
		Server:    server,
	}, nil
}

func newObjectStore(ctx context.Context, cfg *config.Config) (core.ObjectStore, error) {
	if cfg.Storage == "s3" {
		return objectclient.NewS3Store(ctx, cfg)
	}
	return objectclient.NewLocalStore(cfg.UploadDir)
}

func (a *App) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.Generator != nil {
		_ = a.Generator.Close()
	}
}
