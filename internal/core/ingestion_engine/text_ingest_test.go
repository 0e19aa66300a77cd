package ingestion_engine

import (
	"context"
	"strings"
	"testing"

	"github.com/markdave123-py/localrag/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bigText(n int) string {
	var b strings.Builder
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	for i := 0; b.Len() < n; i++ {
		b.WriteString(words[i%len(words)])
		b.WriteString(" ")
	}
	return b.String()[:n]
}

func TestIngestTextMatchesOnePassSplit(t *testing.T) {
	cfg := IngestConfig{ChunkSize: 900, ChunkOverlap: 200, BatchChars: 120_000, SummaryChars: 4000}
	text := bigText(300_000)

	store := newFakeStore()
	ing := testIngestor(store, &fakeLLM{}, cfg)

	total, err := ing.IngestText(context.Background(), strings.NewReader(text), "doc-1", "big.txt")
	require.NoError(t, err)

	want := Splitter{Size: 900, Overlap: 200}.Split(text)
	got := store.contentTexts("doc-1")

	require.Equal(t, len(want), total)
	assert.Equal(t, want, got)
}

func TestIngestTextBoundariesIndependentOfReadSize(t *testing.T) {
	text := bigText(50_000)
	want := Splitter{Size: 900, Overlap: 200}.Split(text)

	for _, batch := range []int{777, 5_000, 120_000} {
		cfg := IngestConfig{ChunkSize: 900, ChunkOverlap: 200, BatchChars: batch, SummaryChars: 4000}
		store := newFakeStore()
		ing := testIngestor(store, &fakeLLM{}, cfg)

		_, err := ing.IngestText(context.Background(), strings.NewReader(text), "doc-1", "big.txt")
		require.NoError(t, err)
		assert.Equal(t, want, store.contentTexts("doc-1"), "batch=%d", batch)
	}
}

func TestIngestTextIdempotentKeys(t *testing.T) {
	cfg := IngestConfig{ChunkSize: 900, ChunkOverlap: 200, BatchChars: 10_000, SummaryChars: 4000}
	text := bigText(40_000)

	store := newFakeStore()
	ing := testIngestor(store, &fakeLLM{}, cfg)

	_, err := ing.IngestText(context.Background(), strings.NewReader(text), "doc-1", "doc.txt")
	require.NoError(t, err)
	firstKeys := store.keys()

	_, err = ing.IngestText(context.Background(), strings.NewReader(text), "doc-1", "doc.txt")
	require.NoError(t, err)

	// Re-ingestion overwrites: same keys, same count.
	assert.Equal(t, firstKeys, store.keys())
}

func TestIngestTextKeysAndSummary(t *testing.T) {
	cfg := IngestConfig{ChunkSize: 100, ChunkOverlap: 20, BatchChars: 1000, SummaryChars: 4000}
	text := bigText(450)

	store := newFakeStore()
	llm := &fakeLLM{}
	ing := testIngestor(store, llm, cfg)

	total, err := ing.IngestText(context.Background(), strings.NewReader(text), "doc-9", "notes.txt")
	require.NoError(t, err)
	require.Greater(t, total, 1)

	store.mu.Lock()
	defer store.mu.Unlock()

	for i := 0; i < total; i++ {
		key := ChunkKey("doc-9", nil, i)
		c, ok := store.chunks[key]
		require.True(t, ok, "missing key %s", key)
		assert.Nil(t, c.Page)
		assert.Equal(t, i, c.ChunkIndex)
	}

	sum, ok := store.chunks[SummaryKey("doc-9")]
	require.True(t, ok, "summary chunk missing")
	assert.Equal(t, models.KindSummary, sum.Kind)
	assert.Equal(t, "A short generated summary.", sum.Text)
	require.Len(t, llm.prompts, 1)
}

func TestIngestTextEmptyInput(t *testing.T) {
	cfg := IngestConfig{ChunkSize: 900, ChunkOverlap: 200, BatchChars: 1000, SummaryChars: 4000}

	store := newFakeStore()
	llm := &fakeLLM{}
	ing := testIngestor(store, llm, cfg)

	total, err := ing.IngestText(context.Background(), strings.NewReader("   \n  "), "doc-0", "empty.txt")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, store.keys())
	// Whitespace-only input must not trigger a summary either.
	assert.Empty(t, llm.prompts)
}
