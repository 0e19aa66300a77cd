package core

import "context"

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TokenStream is a finite, pull-based sequence of generated text fragments.
// Recv returns io.EOF once the model signals completion; cancelling the
// context passed to GenerateStream stops generation promptly.
type TokenStream interface {
	Recv() (string, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
	GenerateStream(ctx context.Context, systemPrompt string, userPrompt string) (TokenStream, error)
}
