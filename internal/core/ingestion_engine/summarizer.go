package ingestion_engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/markdave123-py/localrag/internal/core"
)

const summaryPrompt = `Summarize this document in 4-6 sentences.
Explain what it is about and its purpose.

%s

Summary:`

// Summarizer asks the LLM for a short document summary and stores it as the
// document's single summary pseudo-chunk. The generated wording varies run to
// run, but the store key never does.
type Summarizer struct {
	llm    core.LLMProvider
	writer *ChunkWriter
}

func NewSummarizer(llm core.LLMProvider, writer *ChunkWriter) *Summarizer {
	return &Summarizer{llm: llm, writer: writer}
}

// Summarize is a no-op when the source prefix is empty or whitespace.
func (s *Summarizer) Summarize(ctx context.Context, docID, filename, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	summary, err := s.llm.Generate(ctx, "", fmt.Sprintf(summaryPrompt, text))
	if err != nil {
		return fmt.Errorf("summarize %s: %w", docID, err)
	}
	return s.writer.UpsertSummary(ctx, docID, filename, summary)
}
