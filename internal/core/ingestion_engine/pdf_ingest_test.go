package ingestion_engine

import (
	"context"
	"strings"
	"testing"

	"github.com/markdave123-py/localrag/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressRecord struct {
	page, totalPages, chunks int
}

func TestIngestPDFThreePagesOneBlank(t *testing.T) {
	cfg := IngestConfig{ChunkSize: 900, ChunkOverlap: 200, BatchChars: 120_000, SummaryChars: 4000}
	src := &fakePages{pages: []string{
		"Introduction to the subject. " + strings.Repeat("first page text ", 10),
		"More detail on the subject. " + strings.Repeat("second page text ", 10),
		"   ",
	}}

	store := newFakeStore()
	llm := &fakeLLM{}
	ing := testIngestor(store, llm, cfg)

	var seen []progressRecord
	obs := ProgressFunc(func(page, totalPages, chunks int) {
		seen = append(seen, progressRecord{page, totalPages, chunks})
	})

	total, err := ing.IngestPDF(context.Background(), src, "doc-7", "paper.pdf", obs)
	require.NoError(t, err)
	require.Equal(t, 2, total, "only the two non-blank pages contribute chunks")

	// Progress fires once per page, blank pages included.
	require.Len(t, seen, 3)
	assert.Equal(t, progressRecord{1, 3, 1}, seen[0])
	assert.Equal(t, progressRecord{2, 3, 2}, seen[1])
	assert.Equal(t, progressRecord{3, 3, 2}, seen[2])

	store.mu.Lock()
	defer store.mu.Unlock()

	c1, ok := store.chunks["doc-7:1:0"]
	require.True(t, ok)
	require.NotNil(t, c1.Page)
	assert.Equal(t, 1, *c1.Page)
	assert.Equal(t, 0, c1.ChunkIndex)

	_, ok = store.chunks["doc-7:2:0"]
	require.True(t, ok)

	// Summary is driven by the first two pages only.
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Introduction to the subject.")
	assert.Contains(t, llm.prompts[0], "More detail on the subject.")

	_, ok = store.chunks[SummaryKey("doc-7")]
	assert.True(t, ok)
}

func TestIngestPDFChunksNeverSpanPages(t *testing.T) {
	cfg := IngestConfig{ChunkSize: 100, ChunkOverlap: 20, BatchChars: 120_000, SummaryChars: 4000}
	pageOne := strings.Repeat("one ", 80)
	pageTwo := strings.Repeat("two ", 80)
	src := &fakePages{pages: []string{pageOne, pageTwo}}

	store := newFakeStore()
	ing := testIngestor(store, &fakeLLM{}, cfg)

	_, err := ing.IngestPDF(context.Background(), src, "doc-8", "two.pdf", nil)
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()

	for _, c := range store.chunks {
		if c.Kind != models.KindContent {
			continue
		}
		require.NotNil(t, c.Page)
		switch *c.Page {
		case 1:
			assert.NotContains(t, c.Text, "two")
		case 2:
			assert.NotContains(t, c.Text, "one ")
		}
	}
}

func TestIngestPDFRetryReproducesKeys(t *testing.T) {
	cfg := IngestConfig{ChunkSize: 120, ChunkOverlap: 20, BatchChars: 120_000, SummaryChars: 4000}
	src := &fakePages{pages: []string{
		strings.Repeat("stable page content ", 30),
		strings.Repeat("more page content ", 30),
	}}

	store := newFakeStore()
	ing := testIngestor(store, &fakeLLM{}, cfg)

	_, err := ing.IngestPDF(context.Background(), src, "doc-5", "r.pdf", nil)
	require.NoError(t, err)
	firstKeys := store.keys()

	_, err = ing.IngestPDF(context.Background(), src, "doc-5", "r.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, firstKeys, store.keys())
}

func TestSummarizeSkipsBlankInput(t *testing.T) {
	store := newFakeStore()
	llm := &fakeLLM{}
	writer := NewChunkWriter(store, fakeEmbedder{})
	s := NewSummarizer(llm, writer)

	require.NoError(t, s.Summarize(context.Background(), "doc-2", "f.txt", "  \n\t "))
	assert.Empty(t, llm.prompts)
	assert.Empty(t, store.keys())
}
