package llm

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/markdave123-py/localrag/internal/core"
)

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) model(systemPrompt string) *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}
	return m
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m := g.model(systemPrompt)

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", &core.UpstreamError{Service: "gemini generate", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// GenerateStream starts a streaming generation. The returned stream yields
// fragments in generation order and stops when ctx is cancelled.
func (g *GeminiLLM) GenerateStream(ctx context.Context, systemPrompt, userPrompt string) (core.TokenStream, error) {
	m := g.model(systemPrompt)
	it := m.GenerateContentStream(ctx, genai.Text(userPrompt))
	return &geminiStream{it: it}, nil
}

type geminiStream struct {
	it *genai.GenerateContentResponseIterator
}

func (s *geminiStream) Recv() (string, error) {
	for {
		resp, err := s.it.Next()
		if err == iterator.Done {
			return "", io.EOF
		}
		if err != nil {
			return "", &core.UpstreamError{Service: "gemini stream", Err: err}
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range resp.Candidates[0].Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() == 0 {
			continue
		}
		return b.String(), nil
	}
}

var _ core.LLMProvider = (*GeminiLLM)(nil)
