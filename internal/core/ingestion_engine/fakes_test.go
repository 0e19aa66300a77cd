package ingestion_engine

import (
	"context"
	"sync"

	"github.com/markdave123-py/localrag/internal/core"
	"github.com/markdave123-py/localrag/internal/models"
)

// fakeStore records every upsert keyed like the real store would.
type fakeStore struct {
	mu     sync.Mutex
	chunks map[string]models.Chunk
	order  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{chunks: make(map[string]models.Chunk)}
}

func (s *fakeStore) UpsertChunks(ctx context.Context, chunks []models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if _, seen := s.chunks[c.Key]; !seen {
			s.order = append(s.order, c.Key)
		}
		s.chunks[c.Key] = c
	}
	return nil
}

func (s *fakeStore) Search(ctx context.Context, queryVec []float32, filter core.SearchFilter, limit int) ([]models.SearchResult, error) {
	return nil, nil
}

func (s *fakeStore) ListDocuments(ctx context.Context) ([]models.DocumentRef, error) {
	return nil, nil
}

func (s *fakeStore) Close() error { return nil }

// contentTexts returns the committed content chunks of a document in
// chunk-index order, ignoring the summary pseudo-chunk.
func (s *fakeStore) contentTexts(docID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var got []models.Chunk
	for _, c := range s.chunks {
		if c.DocID == docID && c.Kind == models.KindContent {
			got = append(got, c)
		}
	}
	out := make([]string, len(got))
	for _, c := range got {
		out[c.ChunkIndex] = c.Text
	}
	return out
}

func (s *fakeStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1, 0}
	}
	return out, nil
}

// fakeLLM records the prompts it saw and answers with a fixed summary.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
}

func (f *fakeLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, userPrompt)
	return "A short generated summary.", nil
}

func (f *fakeLLM) GenerateStream(ctx context.Context, systemPrompt, userPrompt string) (core.TokenStream, error) {
	return nil, nil
}

// fakePages is a canned PageSource.
type fakePages struct {
	pages []string
}

func (p *fakePages) NumPages() int { return len(p.pages) }

func (p *fakePages) PageText(page int) (string, error) {
	return p.pages[page-1], nil
}

func (p *fakePages) Close() error { return nil }

func testIngestor(store *fakeStore, llm *fakeLLM, cfg IngestConfig) *Ingestor {
	writer := NewChunkWriter(store, fakeEmbedder{})
	return NewIngestor(writer, NewSummarizer(llm, writer), cfg)
}
