package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/markdave123-py/localrag/internal/core"
	"github.com/markdave123-py/localrag/internal/models"
)

const fallbackAnswer = "The document does not contain this information."

const answerSystem = "You are an assistant answering strictly from the supplied document context."

const previewRunes = 240

// QueryService is the retrieval and ranking engine: it turns a similarity
// search into a bounded, confidence-scored context set and asks the LLM to
// answer from it, either whole or as a token stream.
type QueryService struct {
	store    core.ChunkStore
	embedder core.EmbeddingProvider
	llm      core.LLMProvider

	topK      int
	maxChunks int
	threshold float64
}

func NewQueryService(store core.ChunkStore, embedder core.EmbeddingProvider, llm core.LLMProvider, topK, maxChunks int, threshold float64) *QueryService {
	return &QueryService{
		store:     store,
		embedder:  embedder,
		llm:       llm,
		topK:      topK,
		maxChunks: maxChunks,
		threshold: threshold,
	}
}

// Query answers in one piece. The context set blends the single best
// document summary with up to maxChunks content chunks under the score
// threshold; when nothing qualifies the fixed fallback is returned without
// touching the LLM.
func (s *QueryService) Query(ctx context.Context, q, docID string) (*models.QueryResponse, error) {
	qvec, err := s.embedQuery(ctx, q)
	if err != nil {
		return nil, err
	}

	summary, err := s.store.Search(ctx, qvec, core.SearchFilter{DocID: docID, Kind: models.KindSummary}, 1)
	if err != nil {
		return nil, fmt.Errorf("summary search: %w", err)
	}

	wide, err := s.store.Search(ctx, qvec, core.SearchFilter{DocID: docID}, s.topK)
	if err != nil {
		return nil, fmt.Errorf("chunk search: %w", err)
	}

	results := append(summary, s.filterChunks(wide)...)
	if len(results) == 0 {
		return &models.QueryResponse{
			Answer:     fallbackAnswer,
			Confidence: 0.0,
			Sources:    []models.Source{},
		}, nil
	}

	answer, err := s.llm.Generate(ctx, answerSystem, buildPrompt(results, q))
	if err != nil {
		return nil, err
	}

	best := results[0].Score
	sources := make([]models.Source, 0, len(results))
	for _, r := range results {
		if r.Score < best {
			best = r.Score
		}
		sources = append(sources, models.Source{
			Filename: r.Chunk.Filename,
			DocID:    r.Chunk.DocID,
			Page:     r.Chunk.Page,
			Score:    r.Score,
			Preview:  preview(r.Chunk.Text),
		})
	}

	return &models.QueryResponse{
		Answer:     answer,
		Confidence: confidenceFromScore(best),
		Sources:    sources,
	}, nil
}

// QueryStream answers incrementally. Streaming answers are grounded only in
// chunk matches, not the document summary; the two endpoints can disagree on
// borderline queries and that asymmetry is intentional. Cancelling ctx stops
// generation.
func (s *QueryService) QueryStream(ctx context.Context, q, docID string) (core.TokenStream, error) {
	qvec, err := s.embedQuery(ctx, q)
	if err != nil {
		return nil, err
	}

	wide, err := s.store.Search(ctx, qvec, core.SearchFilter{DocID: docID}, s.topK)
	if err != nil {
		return nil, fmt.Errorf("chunk search: %w", err)
	}

	results := s.filterChunks(wide)
	if len(results) == 0 {
		return &oneShotStream{text: fallbackAnswer}, nil
	}

	return s.llm.GenerateStream(ctx, answerSystem, buildPrompt(results, q))
}

func (s *QueryService) embedQuery(ctx context.Context, q string) ([]float32, error) {
	vecs, err := s.embedder.EmbedTexts(ctx, []string{q})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding returned no vector")
	}
	return vecs[0], nil
}

// filterChunks keeps at most maxChunks results under the acceptance
// threshold, skipping summary pseudo-chunks. Input order (ascending score)
// is preserved.
func (s *QueryService) filterChunks(raw []models.SearchResult) []models.SearchResult {
	var kept []models.SearchResult
	for _, r := range raw {
		if r.Score > s.threshold || r.Chunk.Kind == models.KindSummary {
			continue
		}
		kept = append(kept, r)
		if len(kept) == s.maxChunks {
			break
		}
	}
	return kept
}

func buildPrompt(results []models.SearchResult, q string) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Chunk.Text)
	}

	return fmt.Sprintf(`Answer ONLY using the context below.

Context:
%s

Question:
%s

Answer:`, strings.Join(texts, "\n\n"), q)
}

// confidenceFromScore maps a distance to (0,1]: 1 at distance 0, falling
// toward 0 as the match gets worse.
func confidenceFromScore(score float64) float64 {
	return 1 / (1 + score)
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewRunes {
		runes = runes[:previewRunes]
	}
	return string(runes)
}

// oneShotStream delivers a fixed message as a single fragment.
type oneShotStream struct {
	text string
	done bool
}

func (o *oneShotStream) Recv() (string, error) {
	if o.done {
		return "", io.EOF
	}
	o.done = true
	return o.text, nil
}
